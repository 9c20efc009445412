package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"codekata-backend/application/services"
	"codekata-backend/domain/review"
	"codekata-backend/infrastructure/observability"
	"codekata-backend/pkg/auth"
	"codekata-backend/pkg/common"
	"codekata-backend/pkg/utils"
)

// SuggestionHandler handles the normalization review workflow.
type SuggestionHandler struct {
	normalization services.NormalizationService
	metrics       *observability.Collector
	logger        *zap.Logger
}

// NewSuggestionHandler creates a new suggestion handler.
func NewSuggestionHandler(normalization services.NormalizationService, metrics *observability.Collector, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		normalization: normalization,
		metrics:       metrics,
		logger:        logger,
	}
}

// ListSuggestions handles GET /api/v1/suggestions.
func (h *SuggestionHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	status := review.Status(r.URL.Query().Get("status"))
	suggestions, err := h.normalization.ListSuggestions(r.Context(), status)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	params := common.ExtractPaginationParams(r)
	page := common.Paginate(suggestions, params)
	meta := &common.MetaInfo{
		RequestID:  common.ExtractRequestID(r),
		Timestamp:  utils.NowRFC3339(),
		Pagination: common.BuildPaginationMeta(params.Page, params.PageSize, len(suggestions)),
	}
	common.RespondWithMeta(w, http.StatusOK, page, meta)
}

// GetSuggestion handles GET /api/v1/suggestions/{suggestionID}.
func (h *SuggestionHandler) GetSuggestion(w http.ResponseWriter, r *http.Request) {
	suggestion, err := h.normalization.GetSuggestion(r.Context(), chi.URLParam(r, "suggestionID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, suggestion)
}

// AcceptSuggestion handles POST /api/v1/suggestions/{suggestionID}/accept.
// The created tag comes back so the review screen can link to it.
func (h *SuggestionHandler) AcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "suggestionID")
	record, err := h.normalization.AcceptSuggestion(r.Context(), id, reviewerFrom(r))
	if err != nil {
		h.logger.Warn("suggestion accept failed", zap.String("suggestionId", id), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	h.metrics.SuggestionsReviewed.WithLabelValues("accepted").Inc()
	common.RespondJSON(w, http.StatusOK, record)
}

// RejectSuggestion handles POST /api/v1/suggestions/{suggestionID}/reject.
func (h *SuggestionHandler) RejectSuggestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "suggestionID")
	if err := h.normalization.RejectSuggestion(r.Context(), id, reviewerFrom(r)); err != nil {
		h.logger.Warn("suggestion reject failed", zap.String("suggestionId", id), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	h.metrics.SuggestionsReviewed.WithLabelValues("rejected").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// reviewerFrom identifies the reviewer for the audit trail: the session
// email, or the user ID for tokens without one.
func reviewerFrom(r *http.Request) string {
	session, err := auth.GetSessionFromContext(r.Context())
	if err != nil {
		return ""
	}
	if session.Email != "" {
		return session.Email
	}
	return session.UserID
}
