package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/code-translator/internal/auth"
	"github.com/sakif/code-translator/internal/model"
)

// Runner is the service behind ExecuteHandler.
type Runner interface {
	Run(ctx context.Context, code string) (string, error)
	History(ctx context.Context, userID string, limit, offset int) ([]model.ExecutionRecord, error)
}

// RunRequest is the body of POST /api/run-python.
type RunRequest struct {
	Code string `json:"code"`
}

type RunResponse struct {
	Output string `json:"output"`
}

// ExecuteHandler serves script execution and its history.
type ExecuteHandler struct {
	svc    Runner
	logger *slog.Logger
}

func NewExecuteHandler(svc Runner, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{svc: svc, logger: logger}
}

// HandleRun responds 200 {output} on a clean exit, 400 {error: stderr} when
// the script fails and 500 when it could not be started.
func (h *ExecuteHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid execution request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	output, err := h.svc.Run(r.Context(), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RunResponse{Output: output})
}

// HandleHistory serves GET /api/executions?limit=&offset= for the caller.
func (h *ExecuteHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	records, err := h.svc.History(r.Context(), userID, queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"executions": records})
}
