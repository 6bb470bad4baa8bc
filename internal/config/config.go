package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Game    GameConfig    `mapstructure:"game"`
	WS      WSConfig      `mapstructure:"ws"`
	NATS    NATSConfig    `mapstructure:"nats"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Host           string   `mapstructure:"host"`
	Env            string   `mapstructure:"env"` // "development" or "production"
	AllowedOrigins []string `mapstructure:"allowedorigins"`
}

// GameConfig holds game-related configuration
type GameConfig struct {
	MinPlayers            int  `mapstructure:"minplayers"`
	MaxPlayers            int  `mapstructure:"maxplayers"`
	DiscussionSeconds     int  `mapstructure:"discussionseconds"`
	EmptyRoomGraceSeconds int  `mapstructure:"emptyroomgraceseconds"`
	SweepIntervalSeconds  int  `mapstructure:"sweepintervalseconds"`
	FairSpySelection      bool `mapstructure:"fairspyselection"`
	AllowNicknameTakeover bool `mapstructure:"allownicknametakeover"`
}

// WSConfig holds per-connection limits
type WSConfig struct {
	MessagesPerMinute int `mapstructure:"messagesperminute"`
	Burst             int `mapstructure:"burst"`
}

// NATSConfig holds the lifecycle publisher settings; an empty URL disables it
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subjectprefix"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.allowedOrigins", []string{})

	v.SetDefault("game.minPlayers", 3)
	v.SetDefault("game.maxPlayers", 9)
	v.SetDefault("game.discussionSeconds", 300)
	v.SetDefault("game.emptyRoomGraceSeconds", 600)
	v.SetDefault("game.sweepIntervalSeconds", 120)
	v.SetDefault("game.fairSpySelection", false)
	v.SetDefault("game.allowNicknameTakeover", true)

	v.SetDefault("ws.messagesPerMinute", 120)
	v.SetDefault("ws.burst", 20)

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subjectPrefix", "spygame")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Load reads config.yaml from the usual places, then applies SPY_ environment
// overrides such as SPY_SERVER_PORT or SPY_GAME_DISCUSSIONSECONDS
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/spygame")
	return load(v)
}

// LoadFile reads configuration from an explicit file path
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("SPY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Room size bounds; a game needs at least three players and a room seats at most nine
const (
	minRoomSize = 3
	maxRoomSize = 9
)

// Validate rejects settings the room state machine cannot run with
func (c *Config) Validate() error {
	if c.Game.MinPlayers < minRoomSize || c.Game.MinPlayers > maxRoomSize {
		return fmt.Errorf("game.minPlayers must be between %d and %d, got %d", minRoomSize, maxRoomSize, c.Game.MinPlayers)
	}
	if c.Game.MaxPlayers < c.Game.MinPlayers || c.Game.MaxPlayers > maxRoomSize {
		return fmt.Errorf("game.maxPlayers must be between game.minPlayers (%d) and %d, got %d", c.Game.MinPlayers, maxRoomSize, c.Game.MaxPlayers)
	}
	if c.Game.DiscussionSeconds <= 0 {
		return fmt.Errorf("game.discussionSeconds must be positive, got %d", c.Game.DiscussionSeconds)
	}
	if c.Game.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("game.sweepIntervalSeconds must be positive, got %d", c.Game.SweepIntervalSeconds)
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// DiscussionDuration is the length of the questions phase
func (c *Config) DiscussionDuration() time.Duration {
	return time.Duration(c.Game.DiscussionSeconds) * time.Second
}

// EmptyRoomGrace is how long a room may sit with nobody connected
func (c *Config) EmptyRoomGrace() time.Duration {
	return time.Duration(c.Game.EmptyRoomGraceSeconds) * time.Second
}

// SweepInterval is the period of the empty-room sweeper
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Game.SweepIntervalSeconds) * time.Second
}
