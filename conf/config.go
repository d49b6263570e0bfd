// Package conf loads the fundgraph configuration: TOML files merged with
// FUNDGRAPH_* environment variables via Viper.
package conf

// Config represents the core fundgraph configuration
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
}

// DataConfig locates the flat source tables on disk
type DataConfig struct {
	Dir string `mapstructure:"dir"` // directory holding the *-table.json files
}

// DatabaseConfig configures the SQLite snapshot store
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig configures the fundgraph HTTP server
type ServerConfig struct {
	Port           *int     `mapstructure:"port"` // nil = default 8712, 0 is invalid (omit for default)
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Server port constants
const (
	DefaultServerPort = 8712
)

// FetchConfig configures the upstream table API client
type FetchConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	APIKey            string  `mapstructure:"api_key"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"` // polite upstream rate (default: 4)
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`     // per-request timeout (default: 30)

	// Table identifiers in the upstream base
	OrganizationsTable string `mapstructure:"organizations_table"`
	AgenciesTable      string `mapstructure:"agencies_table"`
	ProjectsTable      string `mapstructure:"projects_table"`
}

// EffectivePort returns the configured port, falling back to the default.
func (c *ServerConfig) EffectivePort() int {
	if c.Port != nil {
		return *c.Port
	}
	return DefaultServerPort
}
