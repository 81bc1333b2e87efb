package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Definition is the declarative form of a property, as found in YAML config.
type Definition struct {
	Type    string `yaml:"type"`
	Default any    `yaml:"default,omitempty"`
	Caster  string `yaml:"caster,omitempty"` // name looked up in a CasterRegistry
}

// CasterRegistry maps caster names to custom casters.
type CasterRegistry map[string]Caster

// DefaultCasters returns the built-in named casters.
func DefaultCasters() CasterRegistry {
	return CasterRegistry{
		"csv":      CSV,
		"json":     JSON,
		"duration": Duration,
	}
}

// FromDefinitions builds a schema from declarative definitions.
// Properties are added in name order. A custom property whose caster name is
// not in casters is still registered; casting it reports ErrMissingCaster.
func FromDefinitions(defs map[string]Definition, casters CasterRegistry) *Schema {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	s := New()
	for _, name := range names {
		def := defs[name]
		opts := Options{
			Type:    ParseType(def.Type),
			Default: def.Default,
		}
		if def.Caster != "" {
			opts.Caster = casters[def.Caster]
		}
		s.Add(name, opts)
	}
	return s
}

// ParseFile parses property definitions from a YAML file.
func ParseFile(path string, casters CasterRegistry) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	return Parse(data, casters)
}

// Parse parses property definitions from YAML bytes of the form
//
//	properties:
//	  title: { type: string }
func Parse(data []byte, casters CasterRegistry) (*Schema, error) {
	var doc struct {
		Properties map[string]Definition `yaml:"properties"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return FromDefinitions(doc.Properties, casters), nil
}

// CSV splits comma separated text into trimmed parts.
// Slices pass through.
func CSV(value any) (any, error) {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}, nil
		}
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	case []string, []any:
		return v, nil
	default:
		return nil, fmt.Errorf("csv: unsupported value %T", value)
	}
}

// JSON decodes JSON text. Already decoded values pass through.
func JSON(value any) (any, error) {
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return value, nil
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return out, nil
}

// Duration parses Go duration text ("1h30m"). Numbers are taken as seconds.
func Duration(value any) (any, error) {
	switch v := value.(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("duration: %w", err)
		}
		return d, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case int:
		return time.Duration(v) * time.Second, nil
	default:
		return nil, fmt.Errorf("duration: unsupported value %T", value)
	}
}
