package handler

import "net/http"

// HealthResponse reports which collaborators are wired.
type HealthResponse struct {
	Status    string `json:"status"`
	Executor  string `json:"executor"`
	Generator string `json:"generator"`
}

// HealthHandler answers GET /healthz with "ok", or 503 "degraded" when the
// database ping fails. The other fields are informational.
type HealthHandler struct {
	executor  string
	generator string
	ping      func() error
}

// NewHealthHandler takes the executor mode, the generator provider (or
// "unconfigured") and an optional database ping.
func NewHealthHandler(executor, generator string, ping func() error) *HealthHandler {
	return &HealthHandler{executor: executor, generator: generator, ping: ping}
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "degraded", Executor: h.executor, Generator: h.generator,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Executor: h.executor, Generator: h.generator})
}
