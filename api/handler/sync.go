package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasknest/backend/api/transport"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/pkg/httpcontext"
	syncUC "github.com/tasknest/backend/usecase/sync"
)

type SyncHandler struct {
	baseHandler
	uc *syncUC.UseCase
}

func NewSyncHandler(uc *syncUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Reconcile locally updated tasks
// @Tags sync
// @Router /api/v1/sync/tasks [post]
func (h *SyncHandler) UpsertBatch(ctx *fasthttp.RequestCtx) {
	uid := h.userID(ctx)
	if uid == "" {
		return
	}

	var reqs []transport.SyncTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &reqs); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	items := make([]domain.SyncItem, 0, len(reqs))
	for _, req := range reqs {
		item, err := req.ToItem()
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		items = append(items, item)
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	applied, err := h.uc.ApplyUpserts(stdCtx, uid, items)
	if err != nil {
		// Items applied before the failure stay committed; surface both.
		status, code := mapError(err)
		h.respondJSON(ctx, status, transport.NewError(code, err.Error(), map[string]interface{}{
			"applied": applied,
		}))
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, applied)
}

// @Summary Reconcile locally deleted tasks
// @Tags sync
// @Router /api/v1/sync/tasks [delete]
func (h *SyncHandler) DeleteBatch(ctx *fasthttp.RequestCtx) {
	uid := h.userID(ctx)
	if uid == "" {
		return
	}

	var reqs []transport.SyncDeleteRequest
	if err := json.Unmarshal(ctx.PostBody(), &reqs); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	ids := make([]string, 0, len(reqs))
	for _, req := range reqs {
		ids = append(ids, req.ID)
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	deleted, err := h.uc.ApplyDeletes(stdCtx, uid, ids)
	if err != nil {
		status, code := mapError(err)
		h.respondJSON(ctx, status, transport.NewError(code, err.Error(), map[string]interface{}{
			"deleted": deleted,
		}))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, deleted)
}
