package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/pkg/httpcontext"
	ringsUC "github.com/tasknest/backend/usecase/rings"
)

type RingsHandler struct {
	baseHandler
	uc *ringsUC.UseCase
}

func NewRingsHandler(uc *ringsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *RingsHandler {
	return &RingsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Temporal context rings
// @Tags context
// @Router /api/v1/context/rings [get]
//
// The rings are a best-effort signal for the suggestion consumer: a failed
// computation degrades to empty rings rather than an error response.
func (h *RingsHandler) GetRings(ctx *fasthttp.RequestCtx) {
	uid := h.userID(ctx)
	if uid == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	rings, err := h.uc.ComputeRings(stdCtx, uid, time.Now())
	if err != nil {
		h.logger.Warn("serving empty rings after computation failure", zap.String("uid", uid), zap.Error(err))
		rings = domain.EmptyRings()
	}
	h.respondSuccess(ctx, http.StatusOK, rings)
}
