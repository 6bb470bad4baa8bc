package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spygame/internal/app"
	"spygame/internal/config"
	"spygame/internal/domain"
)

type fixture struct {
	handler  http.Handler
	registry *app.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	words := app.NewStaticWordBank()
	factory := func(code string, now time.Time) *domain.Room {
		return domain.NewRoom(code, words, now)
	}
	registry := app.NewRegistry(app.NewMemoryStore(), factory, logger)
	gateway := app.NewGateway(registry, logger)
	t.Cleanup(func() {
		gateway.Close()
		registry.Close()
	})

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: "0", Env: "development"},
	}
	server := NewServer(cfg, gateway, words, logger)
	return &fixture{handler: server.Handler(), registry: registry}
}

func (f *fixture) get(t *testing.T, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHandleHealth(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.registry.CreateRoom("Host", "c1")
	require.NoError(t, err)

	rec, resp := f.get(t, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
	assert.EqualValues(t, 1, data["rooms"])
	assert.EqualValues(t, 1, data["players"])
}

func TestHandleGetRoom(t *testing.T) {
	f := newFixture(t)
	room, _, err := f.registry.CreateRoom("Host", "c1")
	require.NoError(t, err)

	rec, resp := f.get(t, "/api/rooms/"+room.Code)
	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, room.Code, data["roomCode"])
	assert.EqualValues(t, 9, data["maxPlayers"])
	assert.Equal(t, "lobby", data["phase"])
	assert.EqualValues(t, 1, data["playerCount"])
	assert.Equal(t, true, data["canJoin"])

	rec, resp = f.get(t, "/api/rooms/000000")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "RoomNotFound", resp.Error.Code)
}

func TestHandleRoomExists(t *testing.T) {
	f := newFixture(t)
	room, _, err := f.registry.CreateRoom("Host", "c1")
	require.NoError(t, err)

	_, resp := f.get(t, "/api/rooms/"+room.Code+"/exists")
	assert.Equal(t, true, resp.Data.(map[string]interface{})["exists"])

	_, resp = f.get(t, "/api/rooms/000000/exists")
	assert.Equal(t, false, resp.Data.(map[string]interface{})["exists"])
}

func TestHandleCategories(t *testing.T) {
	f := newFixture(t)

	_, resp := f.get(t, "/api/categories")
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "food", data["default"])
	assert.Len(t, data["categories"], 12)
}

func TestHandleStats(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.registry.CreateRoom("Host", "c1")
	require.NoError(t, err)

	_, resp := f.get(t, "/api/stats")
	data := resp.Data.(map[string]interface{})
	assert.EqualValues(t, 1, data["rooms"])
	assert.EqualValues(t, 1, data["connectedPlayers"])
	assert.EqualValues(t, 0, data["gamesInProgress"])
}

func TestMiddleware_Preflight(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
