package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverMiddlewareReturnsGenericTip(t *testing.T) {
	e := echo.New()
	handler := RecoverMiddleware(func(c echo.Context) error {
		panic("internal invariant broken")
	})

	req := httptest.NewRequest(http.MethodPost, "/coaching", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, handler(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"coaching_tip"`)
	assert.Contains(t, body, `"status":"error"`)
	assert.NotContains(t, body, "invariant", "panic detail never leaks into the response")
	assert.NotContains(t, body, "goroutine", "stack traces never leak into the response")
}
