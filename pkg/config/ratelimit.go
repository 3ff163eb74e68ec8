package config

import (
	"fmt"
	"strings"
	"time"
)

type RateLimitConfig struct {
	Enabled bool          `koanf:"enabled"`
	RPS     float64       `koanf:"rps"`
	Burst   int           `koanf:"burst"`
	IdleTTL time.Duration `koanf:"idlettl"`
}

// String returns a string representation of the RateLimitConfig.
func (c *RateLimitConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Rate Limit ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  rps: %g\n", c.RPS))
	b.WriteString(fmt.Sprintf("  burst: %d\n", c.Burst))
	b.WriteString(fmt.Sprintf("  idlettl: %s\n", c.IdleTTL))
	return b.String()
}

func (c *RateLimitConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be greater than 0: %g", c.RPS)
	}
	if c.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be greater than 0: %d", c.Burst)
	}
	return nil
}
