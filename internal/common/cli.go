package common

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dtnitsch/cinii-translator/models"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// NewLogger builds the JSON stderr logger shared by all commands.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig starts from --config (or the defaults) and applies any flags the
// user set explicitly.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	config := models.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := models.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if c.IsSet("host") {
		config.Host = c.String("host")
	}
	if c.IsSet("user-agent") {
		config.UserAgent = c.String("user-agent")
	}
	if c.IsSet("timeout") {
		config.Timeout = c.Duration("timeout")
	}
	if c.IsSet("format") {
		config.Format = c.String("format")
	}
	if c.IsSet("db") {
		config.DBPath = c.String("db")
	}

	if config.Format != "yaml" && config.Format != "json" {
		return nil, fmt.Errorf("unsupported output format: %q", config.Format)
	}
	if config.Timeout <= 0 {
		config.Timeout = models.DefaultTimeout
	}
	return config, nil
}

// Encode writes v to w as YAML or JSON.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
	}
	return nil
}

// Elapsed is a small helper for "took" log attributes.
func Elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
