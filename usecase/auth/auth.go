package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

// Config carries token issuance settings.
type Config struct {
	Secret     string
	Issuer     string
	SessionTTL time.Duration
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	cfg      Config
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, cfg Config, logger *zap.Logger) *UseCase {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

func (uc *UseCase) Signup(ctx context.Context, name, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidPayload
	}

	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	return uc.users.Create(ctx, user)
}

// Login verifies the credentials, stores a session and issues a signed token
// embedding the session id so the middleware can revoke it.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrUnauthorized
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrUnauthorized
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		UID:       user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(uc.cfg.SessionTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, "", err
	}

	token, err := uc.signToken(user.ID, session)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (uc *UseCase) GetUser(ctx context.Context, uid string) (*domain.User, error) {
	return uc.users.GetByID(ctx, uid)
}

// ValidateSession resolves the session behind a token. Expired sessions are
// purged on sight so a later lookup cannot resurrect them.
func (uc *UseCase) ValidateSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrInvalidPayload
	}
	return uc.sessions.Delete(ctx, sessionID)
}

func (uc *UseCase) signToken(uid string, session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id": uid,
		"sid":     session.ID,
		"iss":     uc.cfg.Issuer,
		"iat":     session.CreatedAt.Unix(),
		"exp":     session.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(uc.cfg.Secret))
}
