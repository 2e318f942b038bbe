package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/code-translator/internal/service"
)

// Translator is the service behind TranslateHandler.
type Translator interface {
	Configured() bool
	Translate(ctx context.Context, req service.TranslationRequest) (string, error)
}

// TranslateRequest is the body of POST /api/translate.
type TranslateRequest struct {
	SourceCode   string `json:"sourceCode"`
	FromLanguage string `json:"fromLanguage"`
	ToLanguage   string `json:"toLanguage"`
}

// TranslateResponse always carries success; exactly one of TranslatedCode
// and Error is set.
type TranslateResponse struct {
	Success        bool   `json:"success"`
	TranslatedCode string `json:"translatedCode,omitempty"`
	Error          string `json:"error,omitempty"`
}

type TranslateHandler struct {
	svc    Translator
	logger *slog.Logger
}

func NewTranslateHandler(svc Translator, logger *slog.Logger) *TranslateHandler {
	return &TranslateHandler{svc: svc, logger: logger}
}

// HandleTranslate serves POST /api/translate.
func (h *TranslateHandler) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid translate request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, TranslateResponse{Error: "Invalid request body"})
		return
	}

	// Identical labels are refused here, before dispatch. The credential and
	// missing-field errors still take precedence so they read the same for
	// every input.
	complete := req.SourceCode != "" && req.FromLanguage != "" && req.ToLanguage != ""
	if h.svc.Configured() && complete && req.FromLanguage == req.ToLanguage {
		writeJSON(w, http.StatusBadRequest, TranslateResponse{
			Error: "Source and target languages must be different",
		})
		return
	}

	translated, err := h.svc.Translate(r.Context(), service.TranslationRequest{
		SourceCode:   req.SourceCode,
		FromLanguage: req.FromLanguage,
		ToLanguage:   req.ToLanguage,
	})
	if err != nil {
		writeJSON(w, statusFor(err), TranslateResponse{Error: messageFor(err)})
		return
	}

	writeJSON(w, http.StatusOK, TranslateResponse{Success: true, TranslatedCode: translated})
}
