package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolateUserConfig points the config-file lookup and home directory at
// a scratch dir so a developer's real ~/.config/crowdcontrol/config
// cannot leak into the test.
func isolateUserConfig(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
}

func TestLoadSettingsDefaults(t *testing.T) {
	isolateUserConfig(t)

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Image != "crowdcontrol:latest" {
		t.Errorf("Image = %q, want crowdcontrol:latest", s.Image)
	}
	if s.WorkspacesDir == "" {
		t.Error("WorkspacesDir should have a default")
	}
}

func TestLoadSettingsEnvOverride(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv("CROWDCONTROL_IMAGE", "custom:dev")
	t.Setenv("CROWDCONTROL_WORKSPACES_DIR", "/tmp/cc-test")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Image != "custom:dev" {
		t.Errorf("Image = %q, want custom:dev", s.Image)
	}
	if s.WorkspacesDir != "/tmp/cc-test" {
		t.Errorf("WorkspacesDir = %q, want /tmp/cc-test", s.WorkspacesDir)
	}
}

func TestNewCreatesWorkspacesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "workspaces")

	cfg, err := New(Settings{WorkspacesDir: dir, Image: "crowdcontrol:latest"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("workspaces dir was not created: %v", err)
	}
	if cfg.Image != "crowdcontrol:latest" {
		t.Errorf("Image = %q", cfg.Image)
	}
}

func TestAgentWorkspacePath(t *testing.T) {
	cfg := &Config{WorkspacesDir: "/ws"}

	if got := cfg.AgentWorkspacePath("alice"); got != filepath.Join("/ws", "alice") {
		t.Errorf("AgentWorkspacePath = %q", got)
	}
	want := filepath.Join("/ws", "alice", MarkerDir)
	if got := cfg.MetadataDir("alice"); got != want {
		t.Errorf("MetadataDir = %q, want %q", got, want)
	}
}
