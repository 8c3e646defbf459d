package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/tasknest/backend/domain"
)

const testSecret = "test-secret"

type fakeSessionValidator struct {
	valid map[string]bool
}

func (f *fakeSessionValidator) ValidateSession(_ context.Context, sessionID string) (*domain.Session, error) {
	if f.valid[sessionID] {
		return &domain.Session{ID: sessionID}, nil
	}
	return nil, domain.ErrSessionNotFound
}

func signToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": "user-a",
		"sid":     "session-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

func runMiddleware(token string, sessions SessionValidator) (*fasthttp.RequestCtx, bool) {
	var reached bool
	handler := JWTAuth(testSecret, sessions, nil)(func(ctx *fasthttp.RequestCtx) {
		reached = true
	})

	ctx := &fasthttp.RequestCtx{}
	if token != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
	}
	handler(ctx)
	return ctx, reached
}

func allowSessions(ids ...string) *fakeSessionValidator {
	valid := make(map[string]bool, len(ids))
	for _, id := range ids {
		valid[id] = true
	}
	return &fakeSessionValidator{valid: valid}
}

func TestJWTAuthStampsPrincipalAndSession(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, validClaims())

	ctx, reached := runMiddleware(token, allowSessions("session-1"))
	assert.True(t, reached)
	assert.Equal(t, "user-a", string(ctx.Request.Header.Peek("X-User-ID")))
	assert.Equal(t, "session-1", string(ctx.Request.Header.Peek("X-Session-ID")))
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	ctx, reached := runMiddleware("", allowSessions("session-1"))
	assert.False(t, reached)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	token := signToken(t, jwt.SigningMethodHS256, claims)

	ctx, reached := runMiddleware(token, allowSessions("session-1"))
	assert.False(t, reached)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestJWTAuthRejectsMissingUserClaim(t *testing.T) {
	claims := validClaims()
	delete(claims, "user_id")
	token := signToken(t, jwt.SigningMethodHS256, claims)

	_, reached := runMiddleware(token, allowSessions("session-1"))
	assert.False(t, reached)
}

func TestJWTAuthRejectsMissingSessionClaim(t *testing.T) {
	claims := validClaims()
	delete(claims, "sid")
	token := signToken(t, jwt.SigningMethodHS256, claims)

	ctx, reached := runMiddleware(token, allowSessions("session-1"))
	assert.False(t, reached)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestJWTAuthRejectsRevokedSession(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, validClaims())
	sessions := allowSessions("session-1")

	_, reached := runMiddleware(token, sessions)
	require.True(t, reached, "live session must pass")

	// Revoke the session; the still-valid token must stop working.
	sessions.valid["session-1"] = false

	ctx, reached := runMiddleware(token, sessions)
	assert.False(t, reached)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Empty(t, string(ctx.Request.Header.Peek("X-User-ID")))
}

func TestJWTAuthFailsClosedWithoutValidator(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, validClaims())

	ctx, reached := runMiddleware(token, nil)
	assert.False(t, reached)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestJWTAuthDropsSpoofedHeaders(t *testing.T) {
	handler := JWTAuth(testSecret, allowSessions(), nil)(func(ctx *fasthttp.RequestCtx) {})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("X-User-ID", "someone-else")
	ctx.Request.Header.Set("X-Session-ID", "forged-session")
	handler(ctx)

	assert.Empty(t, string(ctx.Request.Header.Peek("X-User-ID")))
	assert.Empty(t, string(ctx.Request.Header.Peek("X-Session-ID")))
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}
