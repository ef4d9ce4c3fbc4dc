package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/db"
	"storefront/internal/db/dbtest"
)

func checkHealth(t *testing.T, h *HealthHandler) (int, HealthResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/health", nil), rec)
	require.NoError(t, h.Health(c))

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealth(t *testing.T) {
	gdb := dbtest.New(t)
	h := NewHealthHandler(gdb, nil)

	code, body := checkHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body.Status)
	assert.Equal(t, "up", body.DB)
	assert.Equal(t, "down", body.Cache)

	require.NoError(t, db.Close(gdb))

	code, body = checkHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "ERROR", body.Status)
	assert.Equal(t, "down", body.DB)
}
