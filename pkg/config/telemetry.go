package config

import (
	"fmt"
	"strings"
	"time"
)

// DefaultOtlpTimeout applies when traces are enabled without an export timeout.
const DefaultOtlpTimeout = 10 * time.Second

type TelemetryConfig struct {
	Traces TracesConfig `koanf:"traces"`
}

type TracesConfig struct {
	Enabled  bool           `koanf:"enabled"`
	OtlpHttp OtlpHttpConfig `koanf:"otlphttp"`
}

type OtlpHttpConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Insecure bool          `koanf:"insecure"`
	Timeout  time.Duration `koanf:"timeout"`
}

// String returns a string representation of the TelemetryConfig.
// Exporter settings are left out while traces are disabled.
func (c *TelemetryConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Telemetry ---\n")
	if !c.Traces.Enabled {
		b.WriteString("  traces: disabled\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("  traces.otlphttp.endpoint: %s\n", c.Traces.OtlpHttp.Endpoint))
	b.WriteString(fmt.Sprintf("  traces.otlphttp.insecure: %v\n", c.Traces.OtlpHttp.Insecure))
	b.WriteString(fmt.Sprintf("  traces.otlphttp.timeout: %v\n", c.Traces.OtlpHttp.Timeout))
	return b.String()
}

// Validate checks the exporter settings, only when traces are enabled.
// A zero timeout is replaced with DefaultOtlpTimeout.
func (c *TelemetryConfig) Validate() error {
	if !c.Traces.Enabled {
		return nil
	}
	if c.Traces.OtlpHttp.Endpoint == "" {
		return fmt.Errorf("OTel endpoint is not configured")
	}
	if c.Traces.OtlpHttp.Timeout == 0 {
		c.Traces.OtlpHttp.Timeout = DefaultOtlpTimeout
	}
	if c.Traces.OtlpHttp.Timeout < 0 {
		return fmt.Errorf("telemetry timeout must not be negative: %v", c.Traces.OtlpHttp.Timeout)
	}

	return nil
}
