package conf

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/crisisatlas/fundgraph/errors"
)

var globalConfig *Config
var viperInstance *viper.Viper

// Load reads the fundgraph configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	return initViper()
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", configPath)
	}

	return &config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix("FUNDGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The API key never belongs in a config file on disk
	v.BindEnv("fetch.api_key", "FUNDGRAPH_FETCH_API_KEY")

	SetDefaults(v)

	// Merge configs in precedence order: system -> user -> project -> env vars
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// ProjectConfigPath returns the project config file in effect, or empty
// string when none exists. Used to point the config watcher at it.
func ProjectConfigPath() string {
	return findProjectConfig()
}

// findProjectConfig searches for fundgraph.toml by walking up the
// directory tree. Returns the first config file found, or empty string.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, "fundgraph.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root, stop searching
			break
		}
		dir = parent
	}

	return ""
}

// mergeConfigFiles manually merges configuration files in the correct
// precedence order. Precedence (lowest to highest): system < user <
// project < env vars.
func mergeConfigFiles(v *viper.Viper) {
	homeDir, _ := os.UserHomeDir()

	configPaths := []string{
		"/etc/fundgraph/config.toml",
		filepath.Join(homeDir, ".fundgraph", "config.toml"),
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		configPaths = append(configPaths, projectConfig)
	}

	for _, configPath := range configPaths {
		if _, err := os.Stat(configPath); err != nil {
			continue
		}
		tempViper := viper.New()
		tempViper.SetConfigFile(configPath)
		tempViper.SetConfigType("toml")

		if err := tempViper.ReadInConfig(); err == nil {
			for key, value := range tempViper.AllSettings() {
				v.Set(key, value)
			}
		}
	}
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Data defaults
	v.SetDefault("data.dir", "data")

	// Database defaults
	v.SetDefault("database.path", "fundgraph.db")

	// Fetch defaults
	v.SetDefault("fetch.requests_per_second", 4.0) // polite upstream rate
	v.SetDefault("fetch.timeout_seconds", 30)
	v.SetDefault("fetch.organizations_table", "organizations")
	v.SetDefault("fetch.agencies_table", "agencies")
	v.SetDefault("fetch.projects_table", "ecosystem")
}
