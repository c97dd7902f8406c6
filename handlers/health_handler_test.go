package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/llm-control-plane/dashboard/repositories/postgres"
	"go.uber.org/zap"
)

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var envelope struct {
		Data HealthResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	return envelope.Data
}

func TestHandleHealth(t *testing.T) {
	handler := NewHealthHandler(nil, zap.NewNop())

	w := httptest.NewRecorder()
	handler.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeHealth(t, w)
	assert.Equal(t, "healthy", data.Status)
	assert.NotEmpty(t, data.Timestamp)
}

func TestHandleReadiness(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name        string
		setup       func(mock sqlmock.Sqlmock)
		wantStatus  int
		wantOverall string
		wantDB      string
	}{
		{
			name: "healthy when database is available",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing()
				mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
			},
			wantStatus:  http.StatusOK,
			wantOverall: "healthy",
			wantDB:      "healthy",
		},
		{
			name: "unhealthy when database ping fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing().WillReturnError(sql.ErrConnDone)
			},
			wantStatus:  http.StatusServiceUnavailable,
			wantOverall: "unhealthy",
			wantDB:      "unhealthy",
		},
		{
			name: "unhealthy when database query fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing()
				mock.ExpectQuery("SELECT 1").WillReturnError(sql.ErrConnDone)
			},
			wantStatus:  http.StatusServiceUnavailable,
			wantOverall: "unhealthy",
			wantDB:      "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer db.Close()

			tt.setup(mock)

			handler := NewHealthHandler(postgres.Wrap(db, logger), logger)
			w := httptest.NewRecorder()
			handler.HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			data := decodeHealth(t, w)
			assert.Equal(t, tt.wantOverall, data.Status)
			assert.Equal(t, tt.wantDB, data.Checks["database"])
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("ready when no database configured", func(t *testing.T) {
		handler := NewHealthHandler(nil, logger)

		w := httptest.NewRecorder()
		handler.HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeHealth(t, w)
		assert.Equal(t, "healthy", data.Status)
		assert.Equal(t, "not_configured", data.Checks["database"])
	})
}
