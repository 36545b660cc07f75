package tracer

import "os"

// Config identifies the service in exported traces.
type Config struct {
	ServiceName  string
	AppEnv       string
	EnableExport bool
}

// DefaultConfig returns local-development settings with export off.
func DefaultConfig() Config {
	return Config{
		ServiceName:  "tutuni-backend",
		AppEnv:       "development",
		EnableExport: false,
	}
}

// NewConfig loads tracer settings from the environment. The OTLP
// endpoint itself is configured through the standard OTEL_EXPORTER_*
// variables read by the exporter.
func NewConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("TRACER_SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.AppEnv = v
	}
	if v := os.Getenv("TRACER_ENABLE_EXPORT"); v != "" {
		cfg.EnableExport = v == "true" || v == "1"
	}

	return cfg
}
