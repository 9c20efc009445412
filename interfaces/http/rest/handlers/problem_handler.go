package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"codekata-backend/application/services"
	"codekata-backend/pkg/auth"
	"codekata-backend/pkg/common"
	appErrors "codekata-backend/pkg/errors"
	"codekata-backend/pkg/utils"
)

// ProblemHandler handles the challenge catalog.
type ProblemHandler struct {
	problems services.ProblemService
	logger   *zap.Logger
}

// NewProblemHandler creates a new problem handler.
func NewProblemHandler(problems services.ProblemService, logger *zap.Logger) *ProblemHandler {
	return &ProblemHandler{
		problems: problems,
		logger:   logger,
	}
}

// TagProblemRequest names the tag to attach.
type TagProblemRequest struct {
	TagID string `json:"tag_id" validate:"required"`
}

// ListProblems handles GET /api/v1/problems. Drafts stay hidden unless an
// admin asks for them with include_drafts=true.
func (h *ProblemHandler) ListProblems(w http.ResponseWriter, r *http.Request) {
	query := services.ListProblemsQuery{
		Difficulty: r.URL.Query().Get("difficulty"),
		TagID:      r.URL.Query().Get("tag_id"),
	}
	if r.URL.Query().Get("include_drafts") == "true" && isAdmin(r) {
		query.IncludeDrafts = true
	}

	records, err := h.problems.ListProblems(r.Context(), query)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	params := common.ExtractPaginationParams(r)
	page := common.Paginate(records, params)
	meta := &common.MetaInfo{
		RequestID:  common.ExtractRequestID(r),
		Timestamp:  utils.NowRFC3339(),
		Pagination: common.BuildPaginationMeta(params.Page, params.PageSize, len(records)),
	}
	common.RespondWithMeta(w, http.StatusOK, page, meta)
}

// GetProblem handles GET /api/v1/problems/{problemID}. The path segment may
// be an ID or a slug. Drafts look like missing problems to non-admins.
func (h *ProblemHandler) GetProblem(w http.ResponseWriter, r *http.Request) {
	record, err := h.problems.GetProblem(r.Context(), chi.URLParam(r, "problemID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if !record.IsPublished() && !isAdmin(r) {
		common.RespondAppError(w, appErrors.NewNotFoundError("problem"))
		return
	}
	common.RespondJSON(w, http.StatusOK, record)
}

// CreateProblem handles POST /api/v1/problems.
func (h *ProblemHandler) CreateProblem(w http.ResponseWriter, r *http.Request) {
	var req services.CreateProblemRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	record, err := h.problems.CreateProblem(r.Context(), req)
	if err != nil {
		h.logger.Warn("create problem failed", zap.String("title", req.Title), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, record)
}

// PublishProblem handles POST /api/v1/problems/{problemID}/publish.
func (h *ProblemHandler) PublishProblem(w http.ResponseWriter, r *http.Request) {
	record, err := h.problems.PublishProblem(r.Context(), chi.URLParam(r, "problemID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, record)
}

// TagProblem handles POST /api/v1/problems/{problemID}/tags.
func (h *ProblemHandler) TagProblem(w http.ResponseWriter, r *http.Request) {
	var req TagProblemRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	record, err := h.problems.TagProblem(r.Context(), chi.URLParam(r, "problemID"), req.TagID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, record)
}

// UntagProblem handles DELETE /api/v1/problems/{problemID}/tags/{tagID}.
// Detaching a tag that is not attached succeeds.
func (h *ProblemHandler) UntagProblem(w http.ResponseWriter, r *http.Request) {
	record, err := h.problems.UntagProblem(r.Context(), chi.URLParam(r, "problemID"), chi.URLParam(r, "tagID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, record)
}

// DeleteProblem handles DELETE /api/v1/problems/{problemID}.
func (h *ProblemHandler) DeleteProblem(w http.ResponseWriter, r *http.Request) {
	if err := h.problems.DeleteProblem(r.Context(), chi.URLParam(r, "problemID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// isAdmin reports whether the request carries an admin session.
func isAdmin(r *http.Request) bool {
	session, err := auth.GetSessionFromContext(r.Context())
	return err == nil && session.IsAdmin()
}
