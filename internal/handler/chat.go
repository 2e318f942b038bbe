package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/code-translator/internal/apperror"
	"github.com/sakif/code-translator/internal/service"
)

// Asker is the service behind ChatHandler.
type Asker interface {
	Ask(ctx context.Context, req service.ChatRequest) (string, error)
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	Language  string `json:"language"`
	MaxLength int    `json:"maxLength"`
	Creator   string `json:"creator"`
	Role      string `json:"role"`
	Facebook  string `json:"facebook"`
	LinkedIn  string `json:"linkedin"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ChatHandler struct {
	svc    Asker
	logger *slog.Logger
}

func NewChatHandler(svc Asker, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger}
}

// HandleChat serves POST /api/chat. Every service failure is a 500; all but
// the configuration error get an "Error: " prefix.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid chat request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	answer, err := h.svc.Ask(r.Context(), service.ChatRequest{
		Message:   req.Message,
		Language:  req.Language,
		MaxLength: req.MaxLength,
		Creator:   req.Creator,
		Role:      req.Role,
		Facebook:  req.Facebook,
		LinkedIn:  req.LinkedIn,
	})
	if err != nil {
		msg := messageFor(err)
		if !errors.Is(err, apperror.ErrConfiguration) {
			msg = "Error: " + msg
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Response: answer})
}
