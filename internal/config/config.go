// Package config reads server settings from the environment, with command
// line flags taking precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/rulechess-backend/internal/engineapi"
	"github.com/benbeisheim/rulechess-backend/internal/model"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	EngineHTTP = "http"
	EngineWS   = "ws"
)

type Config struct {
	Addr           string
	AllowOrigins   string
	EngineKind     string
	EngineURL      string
	EngineDepth    int
	EngineTimeout  time.Duration
	RepetitionMode string
	LogLevel       string
}

// Load parses args (without the program name) on top of CHESS_* variables.
func Load(args []string) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("rulechess", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", getenv("CHESS_ADDR", ":3000"), "listen address")
	fs.StringVar(&cfg.AllowOrigins, "allow-origins", getenv("CHESS_ALLOW_ORIGINS", "http://localhost:5173"), "comma-separated CORS origins")
	fs.StringVar(&cfg.EngineKind, "engine", getenv("CHESS_ENGINE", EngineHTTP), "engine client: http or ws")
	fs.StringVar(&cfg.EngineURL, "engine-url", getenv("CHESS_ENGINE_URL", ""), "engine endpoint (default depends on -engine)")
	fs.IntVar(&cfg.EngineDepth, "engine-depth", getenvInt("CHESS_ENGINE_DEPTH", engineapi.DefaultDepth), "default engine depth, 4 to 16")
	fs.DurationVar(&cfg.EngineTimeout, "engine-timeout", getenvDuration("CHESS_ENGINE_TIMEOUT", 10*time.Second), "engine request timeout")
	fs.StringVar(&cfg.RepetitionMode, "repetition", getenv("CHESS_REPETITION", model.RepetitionLastMove), "repetition rule: lastmove or position")
	fs.StringVar(&cfg.LogLevel, "log-level", getenv("CHESS_LOG_LEVEL", "info"), "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.EngineKind {
	case EngineHTTP:
		if c.EngineURL == "" {
			c.EngineURL = engineapi.DefaultHTTPEndpoint
		}
	case EngineWS:
		if c.EngineURL == "" {
			c.EngineURL = engineapi.DefaultWSEndpoint
		}
	default:
		return fmt.Errorf("%w: engine %q", ErrInvalidConfig, c.EngineKind)
	}
	if c.EngineDepth < engineapi.MinDepth || c.EngineDepth > engineapi.MaxDepth {
		return fmt.Errorf("%w: engine depth %d outside %d..%d", ErrInvalidConfig,
			c.EngineDepth, engineapi.MinDepth, engineapi.MaxDepth)
	}
	if c.EngineTimeout <= 0 {
		return fmt.Errorf("%w: engine timeout %s", ErrInvalidConfig, c.EngineTimeout)
	}
	if _, err := model.NewRepetitionTracker(c.RepetitionMode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level maps LogLevel onto the fiber logger levels.
func (c Config) Level() (log.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.LevelDebug, nil
	case "info", "":
		return log.LevelInfo, nil
	case "warn":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return log.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
