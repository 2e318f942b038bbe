package docker_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/code-translator/internal/executor"
	"github.com/sakif/code-translator/internal/executor/docker"
)

func newTestExecutor(t *testing.T, cfg docker.Config) *docker.Executor {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	exec, err := docker.New(context.Background(), cfg, logger)
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	t.Cleanup(func() { exec.Close() })

	// Give the pool manager a moment to warm a container.
	require.Eventually(t, func() bool { return exec.Available() > 0 }, 30*time.Second, 100*time.Millisecond)

	return exec
}

func TestDockerExecutor(t *testing.T) {
	// Skip in CI environments if docker is not available
	if os.Getenv("CI") != "" {
		t.Skip("Skipping docker test in CI environment")
	}

	cfg := docker.DefaultConfig()
	cfg.PoolSize = 2
	exec := newTestExecutor(t, cfg)

	t.Run("successful execution", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), executor.ExecutionRequest{
			Code: `print("hi")`,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Equal(t, "hi\n", res.Stdout)
		assert.Empty(t, res.Stderr)
		assert.Greater(t, res.Duration, time.Duration(0))
	})

	t.Run("syntax error", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), executor.ExecutionRequest{
			Code: `print("Missing parenthesis"`,
		})
		require.NoError(t, err)
		assert.NotEqual(t, 0, res.ExitCode)
		assert.Contains(t, res.Stderr, "SyntaxError")
		assert.Empty(t, res.Stdout)
	})

	t.Run("multiline logic", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), executor.ExecutionRequest{
			Code: strings.Join([]string{
				"def fib(n):",
				"    if n <= 1: return n",
				"    return fib(n-1) + fib(n-2)",
				"print(fib(5))",
			}, "\n"),
		})
		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Equal(t, "5\n", res.Stdout)
	})

	t.Run("no network access", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), executor.ExecutionRequest{
			Code: "import urllib.request\nurllib.request.urlopen('http://example.com', timeout=2)",
		})
		require.NoError(t, err)
		assert.NotEqual(t, 0, res.ExitCode)
	})

	t.Run("concurrent runs keep their own output", func(t *testing.T) {
		const n = 4
		var wg sync.WaitGroup
		outputs := make([]string, n)

		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := exec.Execute(context.Background(), executor.ExecutionRequest{
					Code: fmt.Sprintf("print('sentinel-%d')", i),
				})
				if assert.NoError(t, err) {
					outputs[i] = res.Stdout
				}
			}(i)
		}
		wg.Wait()

		for i := 0; i < n; i++ {
			assert.Equal(t, fmt.Sprintf("sentinel-%d\n", i), outputs[i])
		}
	})
}

func TestDockerExecutor_Timeout(t *testing.T) {
	if os.Getenv("CI") != "" {
		t.Skip("Skipping docker test in CI environment")
	}

	cfg := docker.DefaultConfig()
	cfg.PoolSize = 1
	cfg.Timeout = 2 * time.Second
	exec := newTestExecutor(t, cfg)

	res, err := exec.Execute(context.Background(), executor.ExecutionRequest{
		Code: `while True: pass`,
	})
	require.NoError(t, err)
	assert.Equal(t, executor.TimeoutExitCode, res.ExitCode)
	assert.Contains(t, res.Stderr, "timed out")
}
