package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/code-translator/internal/auth"
	"github.com/sakif/code-translator/internal/executor"
	"github.com/sakif/code-translator/internal/executor/local"
	"github.com/sakif/code-translator/internal/handler"
	"github.com/sakif/code-translator/internal/model"
	"github.com/sakif/code-translator/internal/repository/sqlite"
	"github.com/sakif/code-translator/internal/service"
)

func newExecuteHandler(ex executor.Executor) *handler.ExecuteHandler {
	return handler.NewExecuteHandler(service.NewExecutionService(ex, nil, testLogger()), testLogger())
}

func TestExecuteHandler_HandleRun(t *testing.T) {
	t.Run("clean exit returns stdout", func(t *testing.T) {
		mockExec := &MockExecutor{ReturnRes: &executor.ExecutionResult{
			Stdout:   "hi\n",
			Duration: 100 * time.Millisecond,
		}}

		rr := do(t, newExecuteHandler(mockExec).HandleRun, http.MethodPost, "/api/run-python", `{"code":"print('hi')"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"output":"hi\n"}`, rr.Body.String())
		assert.Equal(t, "print('hi')", mockExec.CapturedReq.Code)
	})

	t.Run("non-zero exit returns stderr as 400", func(t *testing.T) {
		mockExec := &MockExecutor{ReturnRes: &executor.ExecutionResult{
			Stderr:   "SyntaxError: invalid syntax\n",
			ExitCode: 1,
		}}

		rr := do(t, newExecuteHandler(mockExec).HandleRun, http.MethodPost, "/api/run-python", `{"code":"print("}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"SyntaxError: invalid syntax\n"}`, rr.Body.String())
	})

	t.Run("spawn failure is a generic 500", func(t *testing.T) {
		mockExec := &MockExecutor{ReturnErr: errors.New("exec: python3: not found")}

		rr := do(t, newExecuteHandler(mockExec).HandleRun, http.MethodPost, "/api/run-python", `{"code":"print(1)"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
	})

	t.Run("executor unavailable", func(t *testing.T) {
		rr := do(t, newExecuteHandler(nil).HandleRun, http.MethodPost, "/api/run-python", `{"code":"print(1)"}`)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("invalid request body", func(t *testing.T) {
		mockExec := &MockExecutor{}
		rr := do(t, newExecuteHandler(mockExec).HandleRun, http.MethodPost, "/api/run-python", `{"code":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, mockExec.CapturedReq.Code)
	})

	t.Run("empty code is executed", func(t *testing.T) {
		mockExec := &MockExecutor{ReturnRes: &executor.ExecutionResult{}}
		rr := do(t, newExecuteHandler(mockExec).HandleRun, http.MethodPost, "/api/run-python", `{"code":""}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"output":""}`, rr.Body.String())
	})
}

func TestExecuteHandler_ConcurrentRunsDoNotMix(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	cfg := local.DefaultConfig()
	cfg.Interpreter = "sh"
	cfg.Extension = ".sh"
	cfg.WorkDir = t.TempDir()
	cfg.AllowUnsandboxed = true
	runner, err := local.New(cfg, testLogger())
	require.NoError(t, err)

	h := newExecuteHandler(runner)

	const n = 12
	var wg sync.WaitGroup
	outputs := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"code":"echo sentinel-%d"}`, i)
			req := httptest.NewRequest(http.MethodPost, "/api/run-python", strings.NewReader(body))
			rr := httptest.NewRecorder()
			h.HandleRun(rr, req)
			outputs[i] = rr.Body.String()
		}(i)
	}
	wg.Wait()

	for i, out := range outputs {
		assert.JSONEq(t, fmt.Sprintf(`{"output":"sentinel-%d\n"}`, i), out)
	}
}

func TestExecuteHandler_HandleHistory(t *testing.T) {
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mockExec := &MockExecutor{ReturnRes: &executor.ExecutionResult{Stdout: "ok\n"}}
	h := handler.NewExecuteHandler(service.NewExecutionService(mockExec, db, testLogger()), testLogger())

	asUser := func(req *http.Request, userID string) *http.Request {
		return req.WithContext(auth.WithUserID(req.Context(), userID))
	}

	user := &model.User{Login: "alice", PasswordHash: "hash"}
	require.NoError(t, db.CreateLocal(t.Context(), user))

	run := func(code, userID string) {
		req := asUser(httptest.NewRequest(http.MethodPost, "/api/run-python",
			strings.NewReader(fmt.Sprintf(`{"code":%q}`, code))), userID)
		h.HandleRun(httptest.NewRecorder(), req)
	}
	run("print(1)", user.ID)
	run("print(2)", "")
	run("print(3)", user.ID)

	t.Run("lists the caller's runs newest first", func(t *testing.T) {
		req := asUser(httptest.NewRequest(http.MethodGet, "/api/executions?limit=1", nil), user.ID)
		rr := httptest.NewRecorder()
		h.HandleHistory(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		body := decode[struct {
			Executions []model.ExecutionRecord `json:"executions"`
		}](t, rr)
		require.Len(t, body.Executions, 1)
		assert.Equal(t, "print(3)", body.Executions[0].Code)
		assert.Equal(t, model.OutcomeSuccess, body.Executions[0].Outcome)
	})

	t.Run("other users see nothing", func(t *testing.T) {
		req := asUser(httptest.NewRequest(http.MethodGet, "/api/executions", nil), "someone")
		rr := httptest.NewRecorder()
		h.HandleHistory(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"executions":[]}`, rr.Body.String())
	})

	t.Run("requires a user", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.HandleHistory(rr, httptest.NewRequest(http.MethodGet, "/api/executions", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
