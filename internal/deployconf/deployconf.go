// Package deployconf loads per-project defaults from deploy.toml.
//
// The file lives next to the deployment scripts in the project root and
// carries non-secret settings: the target repository, the environment file
// location, and the Azure resources the roles command operates on. Command
// line flags always win over file values; file values win over built-in
// defaults. A missing file is not an error.
package deployconf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultPath is the file looked up in the working directory when
// DEPLOYKIT_CONFIG is not set.
const DefaultPath = "deploy.toml"

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "DEPLOYKIT_CONFIG"

// Config represents project-level settings.
type Config struct {
	// Repository is the owner/name target for secret writes. Empty means
	// auto-detect from the working directory's git remote.
	Repository string `toml:"repository,omitempty"`

	// EnvFile is the environment file read by sync and doctor. Empty
	// means the built-in default.
	EnvFile string `toml:"env_file,omitempty"`

	Sync  SyncSettings  `toml:"sync"`
	Azure AzureSettings `toml:"azure"`
}

// SyncSettings controls secret sync behavior.
type SyncSettings struct {
	// SkipExisting leaves secrets that already exist in the repository
	// untouched. Unset means true.
	SkipExisting *bool `toml:"skip_existing,omitempty"`
}

// AzureSettings names the Azure resources the roles and sp commands
// operate on.
type AzureSettings struct {
	ResourceGroup string `toml:"resource_group,omitempty"`
	CosmosAccount string `toml:"cosmos_account,omitempty"`
	Subscription  string `toml:"subscription,omitempty"`
}

// DefaultConfig returns a Config with every setting unset.
func DefaultConfig() *Config {
	return &Config{}
}

// Load reads the project config, honoring DEPLOYKIT_CONFIG. Returns
// defaults if no file exists; errors only on unreadable or invalid files.
func Load() (*Config, error) {
	return loadFromPath(configPath())
}

func configPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

// Path reports where Load and Save look for the config file.
func Path() string {
	return configPath()
}

// loadFromPath reads config from a specific file path (for testing).
func loadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration back to its path, honoring
// DEPLOYKIT_CONFIG. Used by the sp setup wizard to record non-secret
// defaults the operator confirmed.
func (c *Config) Save() error {
	return c.saveToPath(configPath())
}

// saveToPath writes config atomically: encode to a temp file in the same
// directory, then rename over the target. A crash mid-write never leaves
// a truncated config behind.
func (c *Config) saveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	encoder := toml.NewEncoder(tmp)
	if err := encoder.Encode(c); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set config permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

// SkipExisting reports the effective skip-existing setting. Unset
// defaults to true so reruns never clobber manually rotated secrets.
func (c *Config) SkipExisting() bool {
	if c.Sync.SkipExisting == nil {
		return true
	}
	return *c.Sync.SkipExisting
}
