// Package service holds the request logic behind each endpoint. Services know
// nothing about HTTP; they take plain values, call the injected collaborators
// and return results or *apperror.AppError values for the handlers to map.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/code-translator/internal/apperror"
	"github.com/sakif/code-translator/internal/generator"
)

// DefaultLLMTimeout bounds a single backend call when none is configured.
const DefaultLLMTimeout = 60 * time.Second

// TranslationRequest carries the code to translate and both language labels.
type TranslationRequest struct {
	SourceCode   string
	FromLanguage string
	ToLanguage   string
}

// TranslationService forwards translation prompts to a Generator.
type TranslationService struct {
	gen     generator.Generator
	timeout time.Duration
	logger  *slog.Logger
}

// NewTranslationService accepts a nil gen; every call then fails with a
// configuration error and nothing is sent over the network.
func NewTranslationService(gen generator.Generator, timeout time.Duration, logger *slog.Logger) *TranslationService {
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	return &TranslationService{gen: gen, timeout: timeout, logger: logger}
}

// Configured reports whether a backend is wired.
func (s *TranslationService) Configured() bool { return s.gen != nil }

// Translate returns the generated code trimmed of surrounding whitespace.
// Labels are passed to the backend as given; comparing them is left to the
// caller.
func (s *TranslationService) Translate(ctx context.Context, req TranslationRequest) (string, error) {
	if s.gen == nil {
		return "", apperror.NotConfigured("API key is not configured")
	}
	if req.SourceCode == "" || req.FromLanguage == "" || req.ToLanguage == "" {
		return "", apperror.MissingParameters()
	}

	s.logger.Info("translating code",
		slog.String("from", req.FromLanguage),
		slog.String("to", req.ToLanguage),
		slog.Int("bytes", len(req.SourceCode)),
	)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.Generate(ctx, translationPrompt(req.FromLanguage, req.ToLanguage, req.SourceCode))
	if err != nil {
		s.logger.Error("translation backend call failed", slog.String("error", err.Error()))
		return "", apperror.BackendFailed(err)
	}

	translated := strings.TrimSpace(text)
	if translated == "" {
		s.logger.Warn("translation backend returned no text")
		return "", apperror.EmptyResponse("Invalid response from the text-generation backend")
	}

	return translated, nil
}
