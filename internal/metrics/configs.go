package metrics

import "os"

// DefaultMetricsAddress is used when METRICS_ADDRESS is unset.
const DefaultMetricsAddress = ":9090"

// Config controls the Prometheus metrics server.
type Config struct {
	// Address is the listen address of the /metrics HTTP server,
	// e.g. ":9090" or "127.0.0.1:9100".
	Address string

	// ServiceName is attached as a constant label to every metric.
	ServiceName string

	// EnableDefaultCollectors registers the standard Go runtime, process,
	// and build info collectors.
	EnableDefaultCollectors bool
}

// NewConfig reads the metrics configuration from the environment.
func NewConfig() Config {
	address := os.Getenv("METRICS_ADDRESS")
	if address == "" {
		address = DefaultMetricsAddress
	}

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "tutuni-backend"
	}

	return Config{
		Address:                 address,
		ServiceName:             service,
		EnableDefaultCollectors: os.Getenv("METRICS_DISABLE_DEFAULT_COLLECTORS") == "",
	}
}
