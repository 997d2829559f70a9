package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshul/nsequant/internal/api/handlers"
	"github.com/harshul/nsequant/internal/strategyconfig"
	"github.com/harshul/nsequant/pkg/database"
	"github.com/harshul/nsequant/pkg/logger"
)

type fakeHealthChecker struct {
	status *database.HealthStatus
	err    error
}

func (f *fakeHealthChecker) HealthCheck(ctx context.Context) (*database.HealthStatus, error) {
	return f.status, f.err
}

func newTestRouter(db HealthChecker) http.Handler {
	log := logger.NewWriter(io.Discard)
	handler := handlers.NewBacktestHandler(nil, nil, strategyconfig.Default(), log)
	return NewRouter(handler, db, log)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&fakeHealthChecker{
		status: &database.HealthStatus{Healthy: true, TotalConns: 4},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status   string                 `json:"status"`
		Service  string                 `json:"service"`
		Database *database.HealthStatus `json:"database"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "nsequant-api", body.Service)
	require.NotNil(t, body.Database)
	assert.True(t, body.Database.Healthy)
}

func TestHealthEndpoint_DatabaseDown(t *testing.T) {
	router := newTestRouter(&fakeHealthChecker{
		status: &database.HealthStatus{Error: "connection refused"},
		err:    assert.AnError,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
}
