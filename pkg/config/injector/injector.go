// Package injector resolves ${env.X}, ${ssm.X} and ${secret.X} placeholders
// inside configuration structs, plus legacy `env` struct tags.
package injector

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/raywall/tablestore-toolkit/pkg/connection"
)

// Regex capturing ${type.key} patterns.
// Ex: ${env.API_KEY}, ${ssm./app/config}, ${secret.db_pass}
var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

type Injector struct{}

func New() *Injector {
	return &Injector{}
}

func (i *Injector) Inject(ctx context.Context, target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer to struct")
	}
	return i.injectRecursive(ctx, v.Elem())
}

func (i *Injector) injectRecursive(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for k := 0; k < t.NumField(); k++ {
			field := t.Field(k)
			value := v.Field(k)

			// 1. Process tags (env:"...")
			if err := i.processStructTags(ctx, field, value); err != nil {
				return err
			}

			// 2. Process strings with "${...}" interpolation
			if value.Kind() == reflect.String && value.CanSet() {
				newValue, err := i.interpolateString(ctx, value.String())
				if err != nil {
					return err
				}
				value.SetString(newValue)
			}

			// 3. Recurse
			if value.CanSet() || value.Kind() == reflect.Ptr {
				if err := i.injectRecursive(ctx, value); err != nil {
					return err
				}
			}
		}

	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String {
			if !v.IsNil() {
				i.injectMap(ctx, v)
			}
		}

	case reflect.Ptr:
		if !v.IsNil() {
			return i.injectRecursive(ctx, v.Elem())
		}

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			if err := i.injectRecursive(ctx, v.Index(j)); err != nil {
				return err
			}
		}
	}
	return nil
}

// processStructTags keeps the legacy tag behavior: a set env var overrides
// whatever the YAML carried.
func (i *Injector) processStructTags(ctx context.Context, field reflect.StructField, value reflect.Value) error {
	if !value.CanSet() {
		return nil
	}
	if tag := field.Tag.Get("env"); tag != "" {
		if val, exists := os.LookupEnv(tag); exists {
			return setField(value, val)
		}
	}
	return nil
}

// interpolateString performs the regex-based substitution.
func (i *Injector) interpolateString(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var err error
	// ReplaceAllStringFunc lets each match resolve through its own source.
	result := pattern.ReplaceAllStringFunc(input, func(match string) string {
		// match looks like "${env.VAR_NAME}"; strip ${ and }
		content := match[2 : len(match)-1] // env.VAR_NAME
		parts := strings.SplitN(content, ".", 2)
		if len(parts) != 2 {
			return match // invalid format, keep original
		}

		sourceType := parts[0]
		key := parts[1]

		val, resolveErr := i.fetchValue(ctx, sourceType, key)
		if resolveErr != nil {
			err = resolveErr // captured and returned after the pass
			return match
		}

		// Any resolved value interpolates as a string.
		return fmt.Sprintf("%v", val)
	})

	return result, err
}

// injectMap handles dynamic maps.
func (i *Injector) injectMap(ctx context.Context, v reflect.Value) {
	iter := v.MapRange()
	updates := make(map[string]any)

	for iter.Next() {
		key := iter.Key()
		val := iter.Value()

		elem := val
		if val.Kind() == reflect.Interface {
			elem = val.Elem()
		}

		if !elem.IsValid() {
			continue
		}

		if elem.Kind() == reflect.String {
			newVal, _ := i.interpolateString(ctx, elem.String())
			updates[key.String()] = newVal
		} else if elem.Kind() == reflect.Map {
			if subMap, ok := elem.Interface().(map[string]any); ok {
				subVal := reflect.ValueOf(subMap)
				i.injectMap(ctx, subVal)
			}
		}
	}

	for k, val := range updates {
		v.SetMapIndex(reflect.ValueOf(k), reflect.ValueOf(val))
	}
}

// fetchValue centralizes the lookups.
func (i *Injector) fetchValue(ctx context.Context, sourceType, key string) (any, error) {
	settings := connection.Settings{Region: os.Getenv("AWS_REGION")}

	switch sourceType {
	case "env":
		if val, exists := os.LookupEnv(key); exists {
			return val, nil
		}
		return "", nil // a missing variable resolves to empty

	case "ssm":
		val, err := connection.FetchParameter(ctx, settings, key, true)
		if err != nil {
			return nil, err
		}
		return val, nil

	case "secret":
		val, err := connection.FetchSecret(ctx, settings, key)
		if err != nil {
			return nil, err
		}
		return val, nil
	}

	return nil, nil
}

func setField(field reflect.Value, val any) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(fmt.Sprintf("%v", val))
	}
	return nil
}
