package conf

import "github.com/crisisatlas/fundgraph/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Server port: 0 is invalid (omit for default), negative is invalid
	if c.Server.Port != nil && *c.Server.Port == 0 {
		return errors.Newf("server.port cannot be 0 (omit for default port %d)", DefaultServerPort)
	}
	if c.Server.Port != nil && *c.Server.Port < 0 {
		return errors.Newf("server.port must be positive, got %d", *c.Server.Port)
	}

	if c.Data.Dir == "" {
		return errors.New("data.dir cannot be empty")
	}

	if c.Fetch.RequestsPerSecond < 0 {
		return errors.Newf("fetch.requests_per_second must be >= 0, got %f", c.Fetch.RequestsPerSecond)
	}
	if c.Fetch.TimeoutSeconds < 0 {
		return errors.Newf("fetch.timeout_seconds must be >= 0, got %d", c.Fetch.TimeoutSeconds)
	}

	// Fetching is optional; a key without a base URL is a misconfiguration
	if c.Fetch.APIKey != "" && c.Fetch.BaseURL == "" {
		return errors.New("fetch.base_url cannot be empty when fetch.api_key is set")
	}

	return nil
}
