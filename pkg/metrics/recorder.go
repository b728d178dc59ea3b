package metrics

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/raywall/tablestore-toolkit/pkg/config"
)

// Recorder resolves configuration-level metric ids and emits through the
// provider.
type Recorder struct {
	definitions map[string]MetricDefinition
	provider    Provider
}

// NewRecorder links configuration ids to their real names and types.
func NewRecorder(conf []config.CustomMetricDefinition, provider Provider) *Recorder {
	defs := make(map[string]MetricDefinition)
	for _, d := range conf {
		defs[d.ID] = MetricDefinition{
			Name: d.Name,
			Type: MetricType(d.Type),
		}
	}

	return &Recorder{
		definitions: defs,
		provider:    provider,
	}
}

// Emit records one observation under the configured metric id. Tags are
// rendered as "key:value" in sorted key order.
func (r *Recorder) Emit(id string, value float64, tags map[string]string) error {
	def, exists := r.definitions[id]
	if !exists {
		return fmt.Errorf("metric not defined: %s", id)
	}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	finalTags := make([]string, 0, len(keys))
	for _, k := range keys {
		finalTags = append(finalTags, fmt.Sprintf("%s:%s", k, tags[k]))
	}

	switch def.Type {
	case TypeCount:
		return r.provider.Count(def.Name, value, finalTags)
	case TypeGauge:
		return r.provider.Gauge(def.Name, value, finalTags)
	case TypeHistogram:
		return r.provider.Histogram(def.Name, value, finalTags)
	default:
		return fmt.Errorf("unknown metric type: %s", def.Type)
	}
}

// EmitValue is Emit for values arriving as dynamic types (config data,
// parsed payloads).
func (r *Recorder) EmitValue(id string, value any, tags map[string]string) error {
	val, err := toFloat64(value)
	if err != nil {
		return fmt.Errorf("metric %s value invalid: %w", id, err)
	}
	return r.Emit(id, val, tags)
}

// toFloat64 converts dynamic values (int, int64, float64, string) to float64.
func toFloat64(v any) (float64, error) {
	switch i := v.(type) {
	case float64:
		return i, nil
	case float32:
		return float64(i), nil
	case int:
		return float64(i), nil
	case int64:
		return float64(i), nil
	case string:
		return strconv.ParseFloat(i, 64)
	default:
		return 0, fmt.Errorf("unsupported numeric type: %T", v)
	}
}
