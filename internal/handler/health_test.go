package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/code-translator/internal/handler"
)

func TestHealthHandler(t *testing.T) {
	ok := handler.NewHealthHandler("docker", "gemini", func() error { return nil })
	rr := do(t, ok.HandleHealth, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","executor":"docker","generator":"gemini"}`, rr.Body.String())

	down := handler.NewHealthHandler("disabled", "unconfigured", func() error { return errors.New("locked") })
	rr = do(t, down.HandleHealth, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"status":"degraded","executor":"disabled","generator":"unconfigured"}`, rr.Body.String())
}
