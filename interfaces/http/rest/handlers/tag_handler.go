// Package handlers contains the REST handlers. Each handler decodes and
// validates its request at the boundary, delegates to an application
// service, and writes the shared response envelope.
package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"codekata-backend/application/services"
	"codekata-backend/domain/tag"
	"codekata-backend/infrastructure/observability"
	"codekata-backend/pkg/common"
	appErrors "codekata-backend/pkg/errors"
	"codekata-backend/pkg/utils"
)

// TagHandler handles tag catalog and hierarchy requests.
type TagHandler struct {
	taxonomy services.TaxonomyService
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewTagHandler creates a new tag handler.
func NewTagHandler(taxonomy services.TaxonomyService, metrics *observability.Collector, logger *zap.Logger) *TagHandler {
	return &TagHandler{
		taxonomy: taxonomy,
		metrics:  metrics,
		logger:   logger,
	}
}

// RelationshipRequest names a parent/child edge by tag IDs.
type RelationshipRequest struct {
	ParentID string `json:"parent_id" validate:"required"`
	ChildID  string `json:"child_id" validate:"required"`
}

// ValidationVerdict is the dry-run outcome for a proposed edge.
type ValidationVerdict struct {
	Valid   bool   `json:"valid"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ListTags handles GET /api/v1/tags.
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	records, err := h.taxonomy.ListTags(r.Context())
	if err != nil {
		h.logger.Error("list tags failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	var filterType tag.Type
	if raw := r.URL.Query().Get("type"); raw != "" {
		filterType = tag.Type(strings.ToLower(strings.TrimSpace(raw)))
		if !filterType.IsValid() {
			common.RespondAppError(w, appErrors.NewValidationError("unknown tag type: "+raw))
			return
		}
	}
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	filtered := make([]*tag.Tag, 0, len(records))
	for _, record := range records {
		if filterType != "" && record.Type != filterType {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(record.Name), query) {
			continue
		}
		filtered = append(filtered, record)
	}

	params := common.ExtractPaginationParams(r)
	page := common.Paginate(filtered, params)
	meta := &common.MetaInfo{
		RequestID:  common.ExtractRequestID(r),
		Timestamp:  utils.NowRFC3339(),
		Pagination: common.BuildPaginationMeta(params.Page, params.PageSize, len(filtered)),
	}
	common.RespondWithMeta(w, http.StatusOK, page, meta)
}

// CreateTag handles POST /api/v1/tags.
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTagRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	record, err := h.taxonomy.CreateTag(r.Context(), req)
	if err != nil {
		h.logger.Warn("create tag rejected", zap.String("name", req.Name), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, record)
}

// GetTag handles GET /api/v1/tags/{tagID}.
func (h *TagHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	record, err := h.taxonomy.GetTag(r.Context(), chi.URLParam(r, "tagID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, record)
}

// UpdateTag handles PUT /api/v1/tags/{tagID}.
func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateTagRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	record, err := h.taxonomy.UpdateTag(r.Context(), chi.URLParam(r, "tagID"), req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, record)
}

// DeleteTag handles DELETE /api/v1/tags/{tagID}.
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.taxonomy.DeleteTag(r.Context(), chi.URLParam(r, "tagID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHierarchy handles GET /api/v1/tags/hierarchy.
func (h *TagHandler) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	view, err := h.taxonomy.GetHierarchy(r.Context())
	if err != nil {
		h.logger.Error("hierarchy snapshot failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, view)
}

// SuggestSimilar handles GET /api/v1/tags/similar.
func (h *TagHandler) SuggestSimilar(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	matches, err := h.taxonomy.SuggestSimilar(r.Context(), name)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, matches)
}

// AddRelationship handles POST /api/v1/tags/relationships.
func (h *TagHandler) AddRelationship(w http.ResponseWriter, r *http.Request) {
	var req RelationshipRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.taxonomy.AddRelationship(r.Context(), req.ParentID, req.ChildID); err != nil {
		h.recordRejection(err)
		h.logger.Warn("relationship rejected",
			zap.String("parentId", req.ParentID),
			zap.String("childId", req.ChildID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	h.metrics.RelationshipsAdded.Inc()
	common.RespondJSON(w, http.StatusCreated, req)
}

// RemoveRelationship handles DELETE /api/v1/tags/relationships. Removing
// an edge that is not there succeeds, so retries are safe.
func (h *TagHandler) RemoveRelationship(w http.ResponseWriter, r *http.Request) {
	var req RelationshipRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.taxonomy.RemoveRelationship(r.Context(), req.ParentID, req.ChildID); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateRelationship handles POST /api/v1/tags/relationships/validate.
// A rejected edge is a verdict, not an error: the response is 200 with the
// reason, so the admin screen can show it before submission.
func (h *TagHandler) ValidateRelationship(w http.ResponseWriter, r *http.Request) {
	var req RelationshipRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	err := h.taxonomy.ValidateRelationship(r.Context(), req.ParentID, req.ChildID)
	if err == nil {
		common.RespondJSON(w, http.StatusOK, ValidationVerdict{Valid: true})
		return
	}
	if appErr := appErrors.GetAppError(err); appErr != nil && (appErrors.IsHierarchyViolation(err) || appErrors.IsNotFound(err)) {
		code := appErr.Code
		if code == "" {
			code = string(appErr.Type)
		}
		common.RespondJSON(w, http.StatusOK, ValidationVerdict{
			Valid:   false,
			Code:    code,
			Message: appErr.Message,
		})
		return
	}
	common.RespondAppError(w, err)
}

// recordRejection feeds the rejection counters. Cycles get their own
// counter on top of the per-reason one.
func (h *TagHandler) recordRejection(err error) {
	appErr := appErrors.GetAppError(err)
	if appErr == nil || !appErrors.IsHierarchyViolation(err) {
		return
	}
	h.metrics.RelationshipRejections.WithLabelValues(strings.ToLower(appErr.Code)).Inc()
	if appErr.Type == appErrors.ErrorTypeDirectCycle || appErr.Type == appErrors.ErrorTypeTransitiveCycle {
		h.metrics.CyclesDetected.Inc()
	}
}
