package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vivek-4321/Socket-Server/internal/app"
	"github.com/Vivek-4321/Socket-Server/internal/config"
)

func newTestRouter(t *testing.T) (*app.Orchestrator, http.Handler) {
	t.Helper()
	orch := app.NewOrchestrator(app.NewRegistry(), nil)
	cfg := &config.Config{Mode: "release", StaticPath: t.TempDir()}
	return orch, SetupRouter(context.Background(), cfg, orch)
}

func TestHealthz(t *testing.T) {
	_, router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRooms(t *testing.T) {
	orch, router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	orch.Registry.GetOrCreate("r1")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var rooms []app.RoomInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "r1", string(rooms[0].ID))
	assert.Zero(t, rooms[0].ParticipantCount)
}
