package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/code-translator/internal/apperror"
	"github.com/sakif/code-translator/internal/generator"
)

// ChatRequest is one question plus the display parameters the prompt embeds.
type ChatRequest struct {
	Message   string
	Language  string
	MaxLength int
	Creator   string
	Role      string
	Facebook  string
	LinkedIn  string
}

// ChatService answers single questions. There is no conversation history.
type ChatService struct {
	gen     generator.Generator
	timeout time.Duration
	logger  *slog.Logger
}

// NewChatService accepts a nil gen, like NewTranslationService.
func NewChatService(gen generator.Generator, timeout time.Duration, logger *slog.Logger) *ChatService {
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	return &ChatService{gen: gen, timeout: timeout, logger: logger}
}

// Ask returns the generated answer verbatim. The requested word limit is an
// instruction to the backend and is not enforced here.
func (s *ChatService) Ask(ctx context.Context, req ChatRequest) (string, error) {
	if s.gen == nil {
		return "", apperror.NotConfigured("API key is not configured. Please check your environment variables.")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.gen.Generate(ctx, chatPrompt(req))
	if err != nil {
		s.logger.Error("chat backend call failed", slog.String("error", err.Error()))
		return "", apperror.BackendFailed(err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", apperror.EmptyResponse("No response generated from AI")
	}

	return answer, nil
}
