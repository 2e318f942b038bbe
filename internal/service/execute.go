package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/sakif/code-translator/internal/apperror"
	"github.com/sakif/code-translator/internal/auth"
	"github.com/sakif/code-translator/internal/executor"
	"github.com/sakif/code-translator/internal/metrics"
	"github.com/sakif/code-translator/internal/model"
	"github.com/sakif/code-translator/internal/repository"
)

// Pagination bounds for the execution history.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ExecutionService runs scripts and keeps the audit log.
type ExecutionService struct {
	exec   executor.Executor
	audit  repository.ExecutionRepository
	logger *slog.Logger
}

// NewExecutionService accepts a nil exec (execution disabled or the sandbox
// could not start) and a nil audit (runs are not recorded).
func NewExecutionService(exec executor.Executor, audit repository.ExecutionRepository, logger *slog.Logger) *ExecutionService {
	return &ExecutionService{exec: exec, audit: audit, logger: logger}
}

// Available reports whether scripts can be run.
func (s *ExecutionService) Available() bool {
	return s.exec != nil
}

// Run executes code and returns its stdout. A non-zero exit becomes
// ErrScriptFailure carrying stderr; a run that could not start becomes
// ErrSpawn. The code is not validated.
func (s *ExecutionService) Run(ctx context.Context, code string) (string, error) {
	if s.exec == nil {
		return "", apperror.Unavailable("Code execution is not available")
	}

	result, err := s.exec.Execute(ctx, executor.ExecutionRequest{Code: code})
	if err != nil {
		metrics.ExecutionsTotal.WithLabelValues("spawn_error").Inc()
		s.logger.Error("execution could not start", slog.String("error", err.Error()))
		return "", apperror.SpawnFailed(err)
	}

	outcome := model.OutcomeSuccess
	switch {
	case result.ExitCode == executor.TimeoutExitCode:
		outcome = model.OutcomeTimeout
	case result.ExitCode != 0:
		outcome = model.OutcomeScriptError
	}
	metrics.ExecutionsTotal.WithLabelValues(outcome).Inc()
	metrics.ExecutionDuration.Observe(result.Duration.Seconds())

	s.record(ctx, code, outcome, result)

	if result.ExitCode != 0 {
		return "", apperror.ScriptFailed(result.Stderr)
	}
	return result.Stdout, nil
}

// record writes the audit entry. Failures are logged and swallowed.
func (s *ExecutionService) record(ctx context.Context, code, outcome string, result *executor.ExecutionResult) {
	if s.audit == nil {
		return
	}

	userID, _ := auth.UserIDFromContext(ctx)
	rec := &model.ExecutionRecord{
		UserID:     userID,
		Code:       code,
		Outcome:    outcome,
		ExitCode:   result.ExitCode,
		DurationMS: result.Duration.Milliseconds(),
	}

	// The run already happened; keep the record even if the client left.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.audit.RecordExecution(ctx, rec); err != nil {
		s.logger.Warn("failed to record execution",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
	}
}

// History lists userID's runs, newest first, with limit clamped to
// [1, MaxListLimit].
func (s *ExecutionService) History(ctx context.Context, userID string, limit, offset int) ([]model.ExecutionRecord, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("Authentication required")
	}
	if s.audit == nil {
		return []model.ExecutionRecord{}, nil
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	records, err := s.audit.ListExecutions(ctx, userID, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list executions", slog.String("error", err.Error()))
		return nil, err
	}
	return records, nil
}
