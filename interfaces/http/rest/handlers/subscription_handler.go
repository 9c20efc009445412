package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"codekata-backend/application/services"
	"codekata-backend/pkg/common"
	"codekata-backend/pkg/utils"
)

// SubscriptionHandler handles the challenge mailing list.
type SubscriptionHandler struct {
	subscriptions services.SubscriptionService
	logger        *zap.Logger
}

// NewSubscriptionHandler creates a new subscription handler.
func NewSubscriptionHandler(subscriptions services.SubscriptionService, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// Subscribe handles POST /api/v1/subscriptions.
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req services.SubscribeRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	sub, err := h.subscriptions.Subscribe(r.Context(), req)
	if err != nil {
		h.logger.Warn("subscribe failed", zap.String("email", req.Email), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, sub)
}

// GetSubscription handles GET /api/v1/subscriptions/{subscriptionID}.
func (h *SubscriptionHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subscriptions.GetSubscription(r.Context(), chi.URLParam(r, "subscriptionID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, sub)
}

// UpdateSubscription handles PUT /api/v1/subscriptions/{subscriptionID}.
func (h *SubscriptionHandler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateSubscriptionRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	sub, err := h.subscriptions.UpdateSubscription(r.Context(), chi.URLParam(r, "subscriptionID"), req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, sub)
}

// CancelSubscription handles DELETE /api/v1/subscriptions/{subscriptionID}.
// Cancelling twice succeeds.
func (h *SubscriptionHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	if err := h.subscriptions.CancelSubscription(r.Context(), chi.URLParam(r, "subscriptionID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSubscriptions handles GET /api/v1/subscriptions.
func (h *SubscriptionHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriptions.ListSubscriptions(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	params := common.ExtractPaginationParams(r)
	page := common.Paginate(subs, params)
	meta := &common.MetaInfo{
		RequestID:  common.ExtractRequestID(r),
		Timestamp:  utils.NowRFC3339(),
		Pagination: common.BuildPaginationMeta(params.Page, params.PageSize, len(subs)),
	}
	common.RespondWithMeta(w, http.StatusOK, page, meta)
}
