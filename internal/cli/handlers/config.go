package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/service"
)

// ShowConfig displays the current configuration
func ShowConfig(deps *cli.Deps) {
	cfg := deps.Services.Config.Get()
	path := deps.Services.Config.GetPath()

	_, _ = fmt.Fprintln(deps.Stdout, "Configuration:")
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))
	_, _ = fmt.Fprintf(deps.Stdout, "Config file: %s\n", path)
	if deps.Services.Config.Exists() {
		_, _ = fmt.Fprintln(deps.Stdout, "Status: File exists")
	} else {
		_, _ = fmt.Fprintln(deps.Stdout, "Status: Using defaults (no config file)")
	}
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("-", 50))
	_, _ = fmt.Fprintf(deps.Stdout, "week_start_day:    %s\n", cfg.WeekStartDay)
	_, _ = fmt.Fprintf(deps.Stdout, "timezone:          %s\n", cfg.Timezone)
	_, _ = fmt.Fprintf(deps.Stdout, "theme:             %s\n", orDefault(cfg.Theme))
	_, _ = fmt.Fprintf(deps.Stdout, "trend_window:      %d\n", cfg.TrendWindow)
	_, _ = fmt.Fprintf(deps.Stdout, "storage.backend:   %s\n", cfg.Storage.Backend)
	if cfg.Storage.Path != "" {
		_, _ = fmt.Fprintf(deps.Stdout, "storage.path:      %s\n", cfg.Storage.Path)
	}
	if cfg.Storage.DSN != "" {
		_, _ = fmt.Fprintln(deps.Stdout, "storage.dsn:       (set)")
	}
	_, _ = fmt.Fprintf(deps.Stdout, "identity.email:    %s\n", orValue(cfg.Identity.Email, "(anonymous)"))
	if cfg.Identity.Token != "" {
		_, _ = fmt.Fprintln(deps.Stdout, "identity.token:    (set)")
	}
	_, _ = fmt.Fprintf(deps.Stdout, "agent.model:       %s\n", orDefault(cfg.Agent.Model))
	_, _ = fmt.Fprintf(deps.Stdout, "agent.api_key:     %s\n", orValue(maskSecret(cfg.Agent.APIKey), "(not set)"))
	_, _ = fmt.Fprintf(deps.Stdout, "log.level:         %s\n", cfg.Log.Level)
}

func orDefault(s string) string {
	return orValue(s, "(default)")
}

func orValue(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// maskSecret keeps the last four characters of a secret.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// InitConfig creates a sample config file
func InitConfig(deps *cli.Deps) {
	err := deps.Services.Config.Init()
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		if errors.Is(err, service.ErrConfigExists) {
			_, _ = fmt.Fprintln(deps.Stderr, "Hint: Edit the existing file, or remove it to start over")
		}
		deps.Exit(1)
		return
	}

	path := deps.Services.Config.GetPath()
	_, _ = fmt.Fprintf(deps.Stdout, "Created config file: %s\n", path)
	_, _ = fmt.Fprintln(deps.Stdout, "Edit this file to customize your settings.")
}

// ShowConfigPath prints where the config file is read from
func ShowConfigPath(deps *cli.Deps) {
	_, _ = fmt.Fprintln(deps.Stdout, deps.Services.Config.GetPath())
}
