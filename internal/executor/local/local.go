// Package local runs scripts with an interpreter installed on the host.
//
// There is NO isolation here: the script runs with the server's own user,
// filesystem and network access. New refuses to build an Executor unless the
// caller opts in with Config.AllowUnsandboxed, so this can only be enabled on
// purpose (for trusted, single-user deployments). Use the docker executor
// everywhere else.
package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/code-translator/internal/executor"
)

// ErrUnsandboxedNotAllowed is returned by New when AllowUnsandboxed is false.
var ErrUnsandboxedNotAllowed = errors.New("local: unsandboxed execution is not enabled")

// Config holds the configuration for host execution.
type Config struct {
	// Interpreter is the program invoked as `<Interpreter> <script file>`.
	Interpreter string
	// WorkDir is where script files are written. Defaults to os.TempDir().
	WorkDir string
	// Extension is appended to the generated script file name.
	Extension string
	// Timeout bounds a single run.
	Timeout time.Duration
	// AllowUnsandboxed must be true for New to succeed.
	AllowUnsandboxed bool
}

// DefaultConfig runs python3 from PATH with a 10 second budget.
func DefaultConfig() Config {
	return Config{
		Interpreter: "python3",
		WorkDir:     os.TempDir(),
		Extension:   ".py",
		Timeout:     10 * time.Second,
	}
}

// Executor implements executor.Executor by spawning a child process.
type Executor struct {
	config Config
	logger *slog.Logger
}

var _ executor.Executor = (*Executor)(nil)

// New validates the config and prepares the work directory.
func New(cfg Config, logger *slog.Logger) (*Executor, error) {
	if !cfg.AllowUnsandboxed {
		return nil, ErrUnsandboxedNotAllowed
	}

	defaults := DefaultConfig()
	if cfg.Interpreter == "" {
		cfg.Interpreter = defaults.Interpreter
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = defaults.WorkDir
	}
	if cfg.Extension == "" {
		cfg.Extension = defaults.Extension
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	if err := os.MkdirAll(cfg.WorkDir, 0o700); err != nil {
		return nil, fmt.Errorf("local: creating work dir %s: %w", cfg.WorkDir, err)
	}

	logger.Warn("unsandboxed local executor enabled; submitted code runs with full host privileges",
		slog.String("interpreter", cfg.Interpreter),
		slog.String("workDir", cfg.WorkDir),
	)

	return &Executor{config: cfg, logger: logger}, nil
}

// Execute writes the script to a uniquely named file, runs the interpreter
// against it and removes the file again, whatever the outcome.
//
// The file name is a fresh xid, so concurrent requests never share a path.
func (e *Executor) Execute(ctx context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	start := time.Now()

	path := filepath.Join(e.config.WorkDir, xid.New().String()+e.config.Extension)
	if err := os.WriteFile(path, []byte(req.Code), 0o600); err != nil {
		return nil, fmt.Errorf("local: writing script file: %w", err)
	}

	// Best-effort cleanup: a failed delete is logged, never returned.
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			e.logger.Error("failed to remove script file",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.config.Interpreter, path)
	cmd.Dir = e.config.WorkDir
	// Grandchildren may keep the output pipes open after the kill.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError

		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			exitCode = executor.TimeoutExitCode
			stderr.WriteString(executor.TimeoutMessage)
		case ctx.Err() != nil:
			return nil, fmt.Errorf("local: execution cancelled: %w", ctx.Err())
		case errors.As(err, &exitErr):
			exitCode = exitErr.ExitCode()
		default:
			return nil, fmt.Errorf("local: running %s: %w", e.config.Interpreter, err)
		}
	}

	return &executor.ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		Duration: time.Since(start),
	}, nil
}
