package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_Validate(t *testing.T) {
	validator := NewValidator()

	validStore := StoreConf{
		TableName:          "contacts",
		PartitionAttribute: "pk",
		RowAttribute:       "rk",
		StampAttribute:     "stamp",
	}

	tests := []struct {
		name    string
		cfg     *ToolkitConfig
		wantErr bool
	}{
		{
			name: "Valid Config",
			cfg: &ToolkitConfig{
				Version: "1.0",
				Store:   validStore,
				Logging: LoggingConf{Enabled: true, Level: "info", Format: "json"},
			},
			wantErr: false,
		},
		{
			name: "Missing Table Name",
			cfg: &ToolkitConfig{
				Version: "1.0",
				Store:   StoreConf{PartitionAttribute: "pk"},
			},
			wantErr: true,
		},
		{
			name: "Unknown Log Level",
			cfg: &ToolkitConfig{
				Version: "1.0",
				Store:   validStore,
				Logging: LoggingConf{Enabled: true, Level: "loud"},
			},
			wantErr: true,
		},
		{
			name: "Duplicated Metric IDs",
			cfg: &ToolkitConfig{
				Version: "1.0",
				Store:   validStore,
				Metrics: MetricsConf{
					CustomDefinitions: []CustomMetricDefinition{
						{ID: "writes", Name: "store.writes", Type: "count"},
						{ID: "writes", Name: "store.writes.again", Type: "count"},
					},
				},
			},
			wantErr: true,
		},
		{
			name: "Colliding Reserved Attributes",
			cfg: &ToolkitConfig{
				Version: "1.0",
				Store: StoreConf{
					TableName:          "contacts",
					PartitionAttribute: "id",
					RowAttribute:       "id",
				},
			},
			wantErr: true,
		},
		{
			name: "Reload Queue Without Anything To Refresh",
			cfg: &ToolkitConfig{
				Version: "1.0",
				Store:   validStore,
				Connection: ConnectionConf{
					ReloadQueueURL: "https://sqs.us-east-1.amazonaws.com/123/rotation",
				},
			},
			wantErr: true,
		},
		{
			name: "Reload Queue With Secret",
			cfg: &ToolkitConfig{
				Version: "1.0",
				Store:   validStore,
				Connection: ConnectionConf{
					SecretID:       "db-credentials",
					ReloadQueueURL: "https://sqs.us-east-1.amazonaws.com/123/rotation",
				},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
