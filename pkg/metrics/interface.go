package metrics

// Provider defines the contract for emitting metrics.
// It allows swapping Datadog for Prometheus or plain logging without
// touching business logic.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// MetricType defines the supported types.
type MetricType string

const (
	TypeCount     MetricType = "count"
	TypeGauge     MetricType = "gauge"
	TypeHistogram MetricType = "histogram"
)

// MetricDefinition stores the metric metadata (real name, type).
type MetricDefinition struct {
	Name string
	Type MetricType
}
