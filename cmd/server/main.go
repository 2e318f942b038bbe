// Command server runs the code translator API: translation and chat through
// a hosted text-generation backend, plus sandboxed script execution.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/sakif/code-translator/internal/config"
	"github.com/sakif/code-translator/internal/executor"
	"github.com/sakif/code-translator/internal/executor/docker"
	"github.com/sakif/code-translator/internal/executor/local"
	"github.com/sakif/code-translator/internal/generator"
	"github.com/sakif/code-translator/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The configured logger does not exist yet.
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	ctx := context.Background()

	exec := newExecutor(ctx, cfg, logger)

	gen, err := generator.New(ctx, generator.Config{
		Provider:  cfg.LLM.Provider,
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.Model,
		BaseURL:   cfg.LLM.BaseURL,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	switch {
	case errors.Is(err, generator.ErrMissingCredential):
		logger.Warn("no API key for the text-generation backend; translate and chat will report it",
			slog.String("provider", string(cfg.LLM.Provider)),
		)
		gen = nil
	case err != nil:
		logger.Error("failed to create generator", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if !cfg.Auth.Enabled() {
		logger.Warn("JWT_SECRET not set; authentication is disabled and script execution is open")
	}

	srv, err := server.New(cfg, logger, server.Deps{Executor: exec, Generator: gen})
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	// Validate has already rejected anything else.
	_ = level.UnmarshalText([]byte(cfg.LogLevel))

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// newExecutor returns nil when execution is disabled or the sandbox cannot
// be reached; the server still starts and /api/run-python answers 503.
func newExecutor(ctx context.Context, cfg *config.Config, logger *slog.Logger) executor.Executor {
	switch cfg.Executor.Mode {
	case config.ExecutorDisabled:
		logger.Info("script execution is disabled")
		return nil

	case config.ExecutorLocal:
		exec, err := local.New(local.Config{
			Interpreter:      cfg.Executor.Interpreter,
			WorkDir:          cfg.Executor.WorkDir,
			Timeout:          cfg.Executor.Timeout,
			AllowUnsandboxed: cfg.Executor.AllowUnsandboxed,
		}, logger)
		if err != nil {
			logger.Warn("local executor unavailable", slog.String("error", err.Error()))
			return nil
		}
		return exec

	default:
		dcfg := docker.DefaultConfig()
		dcfg.Image = cfg.Executor.Image
		dcfg.MemoryLimit = cfg.Executor.MemoryMB * 1024 * 1024
		dcfg.CPULimit = cfg.Executor.CPUs
		dcfg.Timeout = cfg.Executor.Timeout
		dcfg.PoolSize = cfg.Executor.PoolSize

		exec, err := docker.New(ctx, dcfg, logger)
		if err != nil {
			logger.Warn("docker executor unavailable; /api/run-python will answer 503",
				slog.String("error", err.Error()),
			)
			return nil
		}
		return exec
	}
}
