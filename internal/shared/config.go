package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables applied over the file configuration by [Config.ApplyEnv].
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvPlaylistID   = "SPOTIFY_PLAYLIST_ID"
	EnvPublicURL    = "PUBLIC_URL"
	EnvConfigPath   = "PLAYCAST_CONFIG"
)

// DefaultPublicURL is used when neither the config file nor the environment sets a public URL.
const DefaultPublicURL = "http://localhost:8000"

// Config represents the application configuration loaded from a TOML file and the environment.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Sync        SyncConfig        `toml:"sync"`
	Resolver    ResolverConfig    `toml:"resolver"`
	Database    DatabaseConfig    `toml:"database"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API client credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// Map returns the credentials in the form expected by services.NewSpotifyService.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
	}
}

// SyncConfig describes which playlist is mirrored and where the archive is written.
type SyncConfig struct {
	PlaylistID   string `toml:"playlist_id"`
	PublicURL    string `toml:"public_url"`
	OutputDir    string `toml:"output_dir"`
	AudioDir     string `toml:"audio_dir"`
	FeedFile     string `toml:"feed_file"`
	PlaylistFile string `toml:"playlist_file"`
}

// ResolverConfig contains yt-dlp settings for the media resolver.
type ResolverConfig struct {
	Executable   string  `toml:"executable"`
	SearchPrefix string  `toml:"search_prefix"`
	AudioFormat  string  `toml:"audio_format"`
	AudioQuality string  `toml:"audio_quality"`
	RateLimit    float64 `toml:"rate_limit"`
	AutoInstall  bool    `toml:"auto_install"`
}

// DatabaseConfig contains sync ledger settings. An empty path disables the ledger.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep their defaults from the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays non-empty environment values onto the config.
//
// lookup is usually [os.LookupEnv]; it is injected so the environment is read in exactly one place.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set(&c.Credentials.Spotify.ClientID, EnvClientID)
	set(&c.Credentials.Spotify.ClientSecret, EnvClientSecret)
	set(&c.Sync.PlaylistID, EnvPlaylistID)
	set(&c.Sync.PublicURL, EnvPublicURL)

	if strings.TrimSpace(c.Sync.PublicURL) == "" {
		c.Sync.PublicURL = DefaultPublicURL
	}
}

// Validate reports the first missing required value as a configuration error.
func (c *Config) Validate() error {
	if c.Sync.PlaylistID == "" {
		return fmt.Errorf("%w: %s is not set", ErrMissingConfig, EnvPlaylistID)
	}
	if c.Credentials.Spotify.ClientID == "" || c.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: %s and %s must be set", ErrMissingCredentials, EnvClientID, EnvClientSecret)
	}
	if c.Sync.OutputDir == "" || c.Sync.AudioDir == "" || c.Sync.FeedFile == "" {
		return fmt.Errorf("%w: output_dir, audio_dir and feed_file are required", ErrInvalidConfig)
	}
	if filepath.IsAbs(c.Sync.AudioDir) || strings.HasPrefix(filepath.Clean(c.Sync.AudioDir), "..") {
		return fmt.Errorf("%w: audio_dir must be relative to output_dir", ErrInvalidConfig)
	}
	return nil
}

// AudioPath is the directory holding materialized audio files.
func (c *Config) AudioPath() string {
	return filepath.Join(c.Sync.OutputDir, c.Sync.AudioDir)
}

// FeedPath is the location of the generated RSS document.
func (c *Config) FeedPath() string {
	return filepath.Join(c.Sync.OutputDir, c.Sync.FeedFile)
}

// PlaylistPath is the location of the companion M3U8 playlist, or "" when disabled.
func (c *Config) PlaylistPath() string {
	if c.Sync.PlaylistFile == "" {
		return ""
	}
	return filepath.Join(c.Sync.OutputDir, c.Sync.PlaylistFile)
}
