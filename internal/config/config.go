// Package config loads crowdcontrol settings and resolves workspace paths.
//
// Settings are merged from three sources, lowest to highest precedence:
// built-in defaults, the config file at ~/.config/crowdcontrol/config.yaml,
// and CROWDCONTROL_* environment variables. CLI flag overrides are applied
// on top by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// MarkerDir is the per-workspace directory holding agent metadata.
const MarkerDir = ".crowdcontrol"

// Settings holds user-configurable options.
type Settings struct {
	// WorkspacesDir is the root directory for agent workspaces.
	WorkspacesDir string `mapstructure:"workspaces_dir"`

	// Image is the container image used for agents.
	Image string `mapstructure:"image"`

	// DefaultMemory is the default memory limit (e.g. "2g"), empty for none.
	DefaultMemory string `mapstructure:"default_memory"`

	// DefaultCPUs is the default CPU limit (e.g. "1.5"), empty for none.
	DefaultCPUs string `mapstructure:"default_cpus"`

	// Verbose enables debug output.
	Verbose bool `mapstructure:"verbose"`
}

// LoadSettings reads settings from the config file and environment.
func LoadSettings() (Settings, error) {
	v := viper.New()
	v.SetDefault("workspaces_dir", defaultWorkspacesDir())
	v.SetDefault("image", "crowdcontrol:latest")

	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "crowdcontrol"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CROWDCONTROL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; a malformed one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Settings{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("parsing configuration: %w", err)
	}
	return s, nil
}

func defaultWorkspacesDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "crowdcontrol-workspaces")
	}
	return filepath.Join(homeDir, "crowdcontrol-workspaces")
}

// Config is the resolved runtime configuration shared by all commands.
type Config struct {
	WorkspacesDir string
	Image         string
	DefaultMemory string
	DefaultCPUs   string
	Verbose       bool
}

// New builds a Config from settings, creating the workspaces directory
// if needed.
func New(s Settings) (*Config, error) {
	if err := os.MkdirAll(s.WorkspacesDir, 0755); err != nil {
		return nil, fmt.Errorf("creating workspaces directory %s: %w", s.WorkspacesDir, err)
	}
	return &Config{
		WorkspacesDir: s.WorkspacesDir,
		Image:         s.Image,
		DefaultMemory: s.DefaultMemory,
		DefaultCPUs:   s.DefaultCPUs,
		Verbose:       s.Verbose,
	}, nil
}

// AgentWorkspacePath returns the workspace directory for an agent.
func (c *Config) AgentWorkspacePath(agentName string) string {
	return filepath.Join(c.WorkspacesDir, agentName)
}

// MetadataDir returns the marker directory inside an agent's workspace.
func (c *Config) MetadataDir(agentName string) string {
	return filepath.Join(c.AgentWorkspacePath(agentName), MarkerDir)
}

// DebugLogDir returns the directory for debug log files.
func DebugLogDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "crowdcontrol", "debug")
	}
	return filepath.Join(dir, "crowdcontrol", "debug")
}
