package app

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"walletid/internal/domain"
)

const (
	// ConfigFilename is looked up inside the home directory.
	ConfigFilename = "config.yaml"
	// DefaultListen is the verification server address when none is configured.
	DefaultListen = "127.0.0.1:8787"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home        string             `yaml:"home"`         // data directory, e.g. $HOME/.walletid
	DIDEncoding domain.DIDEncoding `yaml:"did_encoding"` // base58btc (default) or hex
	LogLevel    string             `yaml:"log_level"`    // debug, info, warn, error
	LogFormat   string             `yaml:"log_format"`   // text or json
	GrantsDB    string             `yaml:"grants_db"`    // defaults to <home>/grants.db
	Gateway     GatewayConfig      `yaml:"gateway"`
	Server      ServerConfig       `yaml:"server"`

	HTTP *http.Client `yaml:"-"` // optional; used for gateway calls
}

// GatewayConfig configures the storage gateway used by identity publish.
type GatewayConfig struct {
	URL           string        `yaml:"url"`
	PublicURL     string        `yaml:"public_url"`
	Token         string        `yaml:"token"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	Burst         int           `yaml:"burst"`
	Timeout       time.Duration `yaml:"timeout"`
}

// ServerConfig configures walletid serve.
type ServerConfig struct {
	Listen        string  `yaml:"listen"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// DefaultHome returns $WALLETID_HOME, or ~/.walletid.
func DefaultHome() string {
	if h := envString("WALLETID_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".walletid"
	}
	return filepath.Join(home, ".walletid")
}

// Default returns the built-in configuration rooted at home.
func Default(home string) Config {
	return Config{
		Home:        home,
		DIDEncoding: domain.DIDEncodingBase58BTC,
		LogLevel:    "info",
		LogFormat:   "text",
		Gateway: GatewayConfig{
			RatePerSecond: 2,
			Burst:         1,
			Timeout:       30 * time.Second,
		},
		Server: ServerConfig{
			Listen:        DefaultListen,
			RatePerSecond: 20,
			Burst:         40,
		},
	}
}

// Load builds the configuration for home: defaults, then the optional
// config file, then environment overrides. The result is validated.
func Load(home string) (Config, error) {
	if home == "" {
		home = DefaultHome()
	}
	cfg := Default(home)

	path := filepath.Join(home, ConfigFilename)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		// The file lives in home; a different home inside it is ignored.
		cfg.Home = home
	}

	ApplyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnvOverrides overlays WALLETID_* variables onto cfg.
func ApplyEnvOverrides(cfg *Config) {
	if v := envString("WALLETID_DID_ENCODING"); v != "" {
		cfg.DIDEncoding = domain.DIDEncoding(strings.ToLower(v))
	}
	if v := envString("WALLETID_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := envString("WALLETID_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := envString("WALLETID_GRANTS_DB"); v != "" {
		cfg.GrantsDB = v
	}
	if v := envString("WALLETID_GATEWAY_URL"); v != "" {
		cfg.Gateway.URL = v
	}
	if v := envString("WALLETID_GATEWAY_PUBLIC_URL"); v != "" {
		cfg.Gateway.PublicURL = v
	}
	if v := envString("WALLETID_GATEWAY_TOKEN"); v != "" {
		cfg.Gateway.Token = v
	}
	cfg.Gateway.RatePerSecond = envFloatWithFallback("WALLETID_GATEWAY_RATE", cfg.Gateway.RatePerSecond)
	cfg.Gateway.Burst = envIntWithFallback("WALLETID_GATEWAY_BURST", cfg.Gateway.Burst)
	cfg.Gateway.Timeout = envDurationWithFallback("WALLETID_GATEWAY_TIMEOUT", cfg.Gateway.Timeout)
	if v := envString("WALLETID_SERVER_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	cfg.Server.RatePerSecond = envFloatWithFallback("WALLETID_SERVER_RATE", cfg.Server.RatePerSecond)
	cfg.Server.Burst = envIntWithFallback("WALLETID_SERVER_BURST", cfg.Server.Burst)
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Home) == "" {
		return errors.New("config: home is required")
	}
	if c.DIDEncoding != "" && !c.DIDEncoding.Valid() {
		return fmt.Errorf("config: did_encoding %q: want base58btc or hex", c.DIDEncoding)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: log_format %q: want text or json", c.LogFormat)
	}
	if c.Gateway.Burst < 0 || c.Server.Burst < 0 {
		return errors.New("config: burst must not be negative")
	}
	return nil
}

// GrantsPath returns the grant registry database path.
func (c Config) GrantsPath() string {
	if c.GrantsDB != "" {
		return c.GrantsDB
	}
	return filepath.Join(c.Home, "grants.db")
}
