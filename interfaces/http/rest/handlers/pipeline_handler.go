package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"codekata-backend/application/services"
	"codekata-backend/infrastructure/observability"
	"codekata-backend/pkg/common"
)

// PipelineHandler handles pipeline triggers and operation polling.
type PipelineHandler struct {
	pipeline services.PipelineService
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewPipelineHandler creates a new pipeline handler.
func NewPipelineHandler(pipeline services.PipelineService, metrics *observability.Collector, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{
		pipeline: pipeline,
		metrics:  metrics,
		logger:   logger,
	}
}

// TriggerRunRequest selects which pipeline to run. An empty body runs the
// default normalization pass.
type TriggerRunRequest struct {
	Kind string `json:"kind"`
}

// TriggerRunResponse carries the operation ID the caller polls.
type TriggerRunResponse struct {
	OperationID string `json:"operation_id"`
}

// TriggerRun handles POST /api/v1/pipeline/runs. The run happens in the
// background; the response is 202 with the operation to poll.
func (h *PipelineHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req TriggerRunRequest
	if r.ContentLength > 0 {
		if err := common.ParseJSONBody(w, r, &req); err != nil {
			common.RespondAppError(w, err)
			return
		}
	}

	id, err := h.pipeline.TriggerRun(r.Context(), req.Kind, reviewerFrom(r))
	if err != nil {
		h.logger.Warn("pipeline trigger failed", zap.String("kind", req.Kind), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	h.metrics.PipelineRuns.Inc()
	common.RespondJSON(w, http.StatusAccepted, TriggerRunResponse{OperationID: id})
}

// GetOperation handles GET /api/v1/operations/{operationID}.
func (h *PipelineHandler) GetOperation(w http.ResponseWriter, r *http.Request) {
	op, err := h.pipeline.GetOperation(r.Context(), chi.URLParam(r, "operationID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, op)
}
