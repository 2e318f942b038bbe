// Package executor defines the contract for running user-submitted scripts.
//
// Implementations live in sub-packages:
//   - docker: runs each script in a throwaway, network-less container
//   - local:  runs the host interpreter directly (trusted deployments only)
package executor

import (
	"context"
	"time"
)

// TimeoutExitCode is reported when a script is killed for exceeding its
// time budget (same convention as the unix `timeout` command).
const TimeoutExitCode = 124

// TimeoutMessage is appended to stderr when a run is killed by the timeout.
const TimeoutMessage = "Execution timed out.\n"

// ExecutionRequest represents a request to execute Python code.
type ExecutionRequest struct {
	Code string `json:"code"`
}

// ExecutionResult represents the output and status of the code execution.
// A non-zero ExitCode is a script failure, not an executor error.
type ExecutionResult struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
}

// Executor runs code and captures its output. An error return means the
// script could not be run at all (interpreter missing, file not writable,
// container unavailable).
type Executor interface {
	Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error)
}
