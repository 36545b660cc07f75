package logger

import "os"

// Log levels accepted by Config.Level.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

type Config struct {
	// Level selects the minimum level that gets emitted. Unknown values
	// fall back to info.
	Level string

	// ServiceName is attached to every log entry.
	ServiceName string
}

// NewConfig reads the logger configuration from the environment.
func NewConfig() Config {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = Info
	}

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "tutuni-backend"
	}

	return Config{
		Level:       level,
		ServiceName: service,
	}
}
