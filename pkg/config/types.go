package config

import (
	"time"

	"github.com/raywall/tablestore-toolkit/pkg/connection"
)

// ToolkitConfig represents the root structure of the toolkit YAML file.
type ToolkitConfig struct {
	Version    string         `yaml:"version" validate:"required"`
	Store      StoreConf      `yaml:"store" validate:"required"`
	Connection ConnectionConf `yaml:"connection"`
	Logging    LoggingConf    `yaml:"logging"`
	Metrics    MetricsConf    `yaml:"metrics"`
}

// StoreConf names the table and its reserved attributes. Attribute names
// left empty fall back to the tablestore defaults (pk, rk, stamp).
type StoreConf struct {
	TableName          string `yaml:"table_name" env:"TABLESTORE_TABLE_NAME" validate:"required"`
	PartitionAttribute string `yaml:"partition_attribute"`
	RowAttribute       string `yaml:"row_attribute"`
	StampAttribute     string `yaml:"stamp_attribute"`
	TTLAttribute       string `yaml:"ttl_attribute"`
}

// ConnectionConf holds everything needed to reach AWS: region, an optional
// endpoint override for local work, the secret carrying rotated credentials
// and the queue announcing their rotation.
type ConnectionConf struct {
	Region         string        `yaml:"region" env:"AWS_REGION"`
	Endpoint       string        `yaml:"endpoint" env:"TABLESTORE_ENDPOINT"`
	SecretID       string        `yaml:"secret_id"`
	ParameterPath  string        `yaml:"parameter_path"`
	ReloadQueueURL string        `yaml:"reload_queue_url" env:"TABLESTORE_RELOAD_QUEUE"`
	Transport      TransportConf `yaml:"transport"`
}

// TransportConf tunes the HTTP client handed to the AWS SDK. All knobs are
// applied once at construction; durations use Go syntax ("30s", "500ms").
type TransportConf struct {
	MaxConns            int    `yaml:"max_conns"`
	MaxIdleConns        int    `yaml:"max_idle_conns"`
	IdleConnTimeout     string `yaml:"idle_conn_timeout"`
	DialTimeout         string `yaml:"dial_timeout"`
	KeepAlive           string `yaml:"keep_alive"`
	TLSHandshakeTimeout string `yaml:"tls_handshake_timeout"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog           DatadogConf              `yaml:"datadog"`
	CustomDefinitions []CustomMetricDefinition `yaml:"custom_definitions" validate:"dive"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace"`
}

// CustomMetricDefinition maps a configuration-level metric id onto the name
// and type the provider emits.
type CustomMetricDefinition struct {
	ID   string `yaml:"id" validate:"required"`
	Name string `yaml:"name" validate:"required"`
	Type string `yaml:"type" validate:"oneof=count gauge histogram"`
}

// Settings converts the connection block into the form the connection
// package consumes, with the duration knobs parsed and defaulted.
func (c ConnectionConf) Settings() connection.Settings {
	return connection.Settings{
		Region:   c.Region,
		Endpoint: c.Endpoint,
		Transport: connection.TransportSettings{
			MaxConns:            c.Transport.MaxConns,
			MaxIdleConns:        c.Transport.MaxIdleConns,
			IdleConnTimeout:     c.Transport.GetIdleConnTimeout(),
			DialTimeout:         c.Transport.GetDialTimeout(),
			KeepAlive:           c.Transport.GetKeepAlive(),
			TLSHandshakeTimeout: c.Transport.GetTLSHandshakeTimeout(),
		},
	}
}

// GetIdleConnTimeout parses the idle timeout, defaulting to 90s.
func (t TransportConf) GetIdleConnTimeout() time.Duration {
	return parseDurationOr(t.IdleConnTimeout, 90*time.Second)
}

// GetDialTimeout parses the dial timeout, defaulting to 5s.
func (t TransportConf) GetDialTimeout() time.Duration {
	return parseDurationOr(t.DialTimeout, 5*time.Second)
}

// GetKeepAlive parses the keep-alive interval, defaulting to 30s.
func (t TransportConf) GetKeepAlive() time.Duration {
	return parseDurationOr(t.KeepAlive, 30*time.Second)
}

// GetTLSHandshakeTimeout parses the TLS handshake timeout, defaulting to 10s.
func (t TransportConf) GetTLSHandshakeTimeout() time.Duration {
	return parseDurationOr(t.TLSHandshakeTimeout, 10*time.Second)
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || raw == "" {
		return fallback
	}
	return d
}
