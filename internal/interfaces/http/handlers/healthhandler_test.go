package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/channelsync/internal/interfaces/http/handlers/testutil"
)

func TestHealthHandler_HealthCheck(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]Pinger
		status     int
		wantStatus string
	}{
		{name: "all up", checks: map[string]Pinger{"database": up, "redis": up}, status: http.StatusOK, wantStatus: "ok"},
		{name: "redis down", checks: map[string]Pinger{"database": up, "redis": down}, status: http.StatusServiceUnavailable, wantStatus: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.checks, testutil.NewMockLogger())
			c, w := testutil.NewTestContext(http.MethodGet, "/health")

			handler.HealthCheck(c)

			assert.Equal(t, tt.status, w.Code)
			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			var body HealthResponse
			require.NoError(t, json.Unmarshal(resp.Data, &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Len(t, body.Components, len(tt.checks))
		})
	}
}
