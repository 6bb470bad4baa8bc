package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.GetAddr())
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 3, cfg.Game.MinPlayers)
	assert.Equal(t, 9, cfg.Game.MaxPlayers)
	assert.Equal(t, 5*time.Minute, cfg.DiscussionDuration())
	assert.Equal(t, 10*time.Minute, cfg.EmptyRoomGrace())
	assert.Equal(t, 2*time.Minute, cfg.SweepInterval())
	assert.True(t, cfg.Game.AllowNicknameTakeover)
	assert.False(t, cfg.Game.FairSpySelection)
	assert.Equal(t, 120, cfg.WS.MessagesPerMinute)
	assert.Empty(t, cfg.NATS.URL)
	assert.Equal(t, "spygame", cfg.NATS.SubjectPrefix)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SPY_SERVER_PORT", "9090")
	t.Setenv("SPY_GAME_DISCUSSIONSECONDS", "60")
	t.Setenv("SPY_GAME_FAIRSPYSELECTION", "true")
	t.Setenv("SPY_LOGGING_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.DiscussionDuration())
	assert.True(t, cfg.Game.FairSpySelection)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "7000"
  allowedOrigins:
    - https://spy.example.com
game:
  maxPlayers: 6
nats:
  url: nats://localhost:4222
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, []string{"https://spy.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 6, cfg.Game.MaxPlayers)
	assert.Equal(t, 3, cfg.Game.MinPlayers)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("game:\n  minPlayers: 5\n  maxPlayers: 4\n"), 0o600))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "maxPlayers")
}

func TestValidate_RoomSizeBounds(t *testing.T) {
	tests := []struct {
		name    string
		min     int
		max     int
		wantErr string
	}{
		{"defaults", 3, 9, ""},
		{"smaller room", 3, 5, ""},
		{"too few to start", 2, 9, "game.minPlayers"},
		{"too many seats", 3, 20, "game.maxPlayers"},
		{"max below min", 5, 4, "game.maxPlayers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Game: GameConfig{
				MinPlayers:           tt.min,
				MaxPlayers:           tt.max,
				DiscussionSeconds:    300,
				SweepIntervalSeconds: 120,
			}}
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_RejectsOversizedRoomFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SPY_GAME_MAXPLAYERS", "20")

	_, err := Load()
	assert.ErrorContains(t, err, "game.maxPlayers")
}
