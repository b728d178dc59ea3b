package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance.
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate performs structural (tags) and semantic (logic) validations.
func (cv *ConfigValidator) Validate(cfg *ToolkitConfig) error {
	// 1. Structural validation (struct tags: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("field '%s' failed rule '%s'", e.Field(), e.Tag()))
			}
			return fmt.Errorf("structural validation errors:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("structural validation error: %w", err)
	}

	// 2. Semantic validation (business rules of the configuration)
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("semantic validation error: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *ToolkitConfig) error {
	// 1. Custom metric ids must be unique
	seenIDs := make(map[string]bool)
	for _, def := range cfg.Metrics.CustomDefinitions {
		if seenIDs[def.ID] {
			return fmt.Errorf("duplicated metric id detected: '%s'", def.ID)
		}
		seenIDs[def.ID] = true
	}

	// 2. The reserved attributes must not collide with each other
	attrs := map[string]string{
		"partition_attribute": cfg.Store.PartitionAttribute,
		"row_attribute":       cfg.Store.RowAttribute,
		"stamp_attribute":     cfg.Store.StampAttribute,
		"ttl_attribute":       cfg.Store.TTLAttribute,
	}
	seenAttrs := make(map[string]string)
	for label, name := range attrs {
		if name == "" {
			continue
		}
		if other, taken := seenAttrs[name]; taken {
			return fmt.Errorf("attribute '%s' is used by both %s and %s", name, other, label)
		}
		seenAttrs[name] = label
	}

	// 3. A reload queue without a secret to refresh is a misconfiguration
	if cfg.Connection.ReloadQueueURL != "" && cfg.Connection.SecretID == "" && cfg.Connection.ParameterPath == "" {
		return fmt.Errorf("reload_queue_url is set but there is no secret_id or parameter_path to refresh")
	}

	return nil
}
