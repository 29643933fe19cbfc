package handlers

import (
	"strings"
	"testing"

	"github.com/xolan/haven/internal/service"
)

func TestShowConfig(t *testing.T) {
	deps, stdout, _, exitCode := setupTestDeps(t)

	ShowConfig(deps)

	if *exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", *exitCode)
	}
	if !strings.Contains(stdout.String(), "Configuration:") {
		t.Errorf("expected 'Configuration:' in output, got %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "Config file:") {
		t.Errorf("expected 'Config file:' in output, got %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "week_start_day:") {
		t.Errorf("expected 'week_start_day:' in output, got %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "timezone:") {
		t.Errorf("expected 'timezone:' in output, got %q", stdout.String())
	}
}

func TestShowConfig_NoFile(t *testing.T) {
	deps, stdout, _, exitCode := setupTestDeps(t)

	ShowConfig(deps)

	if *exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", *exitCode)
	}
	if !strings.Contains(stdout.String(), "Using defaults") {
		t.Errorf("expected 'Using defaults' in output, got %q", stdout.String())
	}
}

func TestShowConfig_WithFile(t *testing.T) {
	deps, stdout, _, exitCode := setupTestDeps(t)

	// Initialize config file first
	InitConfig(deps)
	stdout.Reset()

	ShowConfig(deps)

	if *exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", *exitCode)
	}
	if !strings.Contains(stdout.String(), "File exists") {
		t.Errorf("expected 'File exists' in output, got %q", stdout.String())
	}
}

func TestInitConfig(t *testing.T) {
	deps, stdout, _, exitCode := setupTestDeps(t)

	InitConfig(deps)

	if *exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", *exitCode)
	}
	if !strings.Contains(stdout.String(), "Created config file:") {
		t.Errorf("expected 'Created config file:' in output, got %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "Edit this file") {
		t.Errorf("expected 'Edit this file' in output, got %q", stdout.String())
	}
}

func TestInitConfig_Error(t *testing.T) {
	deps, _, stderr, exitCode := setupBrokenConfigDeps(t)

	InitConfig(deps)

	if *exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", *exitCode)
	}
	if !strings.Contains(stderr.String(), "Error:") {
		t.Errorf("expected 'Error:' in stderr, got %q", stderr.String())
	}
}

func TestShowConfig_MasksSecrets(t *testing.T) {
	e := newTestEnv(t, func(o *service.Options) {
		o.Config.Agent.APIKey = "sk-secret-1234"
		o.Config.Identity.Email = "ada@example.com"
	})

	ShowConfig(e.deps)

	e.requireSuccess(t)
	e.requireStdout(t, "agent.api_key:     ****1234", "identity.email:    ada@example.com")
	if strings.Contains(e.stdout.String(), "sk-secret") {
		t.Errorf("api key leaked:\n%s", e.stdout.String())
	}
}

func TestShowConfigPath(t *testing.T) {
	e := newTestEnv(t)

	ShowConfigPath(e.deps)

	if got := strings.TrimSpace(e.stdout.String()); got != e.deps.Services.Config.GetPath() {
		t.Errorf("ShowConfigPath() = %q, want %q", got, e.deps.Services.Config.GetPath())
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":         "",
		"abc":      "****",
		"abcdefgh": "****efgh",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}
