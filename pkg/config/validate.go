// Package config loads and validates service configuration.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateCore ensures critical configuration is present.
func (c *Config) ValidateCore() error {
	var missing []string

	if strings.TrimSpace(c.Database.URL) == "" {
		if strings.TrimSpace(c.Database.User) == "" {
			missing = append(missing, "DB_USER")
		}
		if strings.TrimSpace(c.Database.Name) == "" {
			missing = append(missing, "DB_NAME")
		}
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		missing = append(missing, "PORT")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT %q", c.Server.Port)
	}
	if c.RateLimit.Requests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.RateLimit.Requests)
	}

	return nil
}
