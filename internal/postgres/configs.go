package postgres

import (
	"os"
	"strconv"
	"time"
)

// Config holds the PostgreSQL connection settings.
type Config struct {
	Connection        Connection
	ConnectionDetails ConnectionDetails
}

// Connection identifies the database server and credentials.
type Connection struct {
	Host     string
	Port     string
	User     string
	Password string
	DbName   string
	SSLMode  string
}

// ConnectionDetails tunes the connection pool. Zero values fall back to
// package defaults (50 open, 25 idle, 1 minute lifetime).
type ConnectionDetails struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewConfig reads the PostgreSQL configuration from the environment.
func NewConfig() Config {
	port := os.Getenv("POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}

	sslMode := os.Getenv("POSTGRES_SSL_MODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	maxOpen := 0
	if v := os.Getenv("POSTGRES_MAX_OPEN_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxOpen = n
		}
	}

	return Config{
		Connection: Connection{
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     port,
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DbName:   os.Getenv("POSTGRES_DB"),
			SSLMode:  sslMode,
		},
		ConnectionDetails: ConnectionDetails{
			MaxOpenConns: maxOpen,
		},
	}
}
