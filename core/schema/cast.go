package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	leadingInt   = regexp.MustCompile(`^[+-]?\d+(?:_\d+)*`)
	leadingFloat = regexp.MustCompile(`^[+-]?(?:\d+(?:_\d+)*(?:\.\d+(?:_\d+)*)?|\.\d+(?:_\d+)*)(?:[eE][+-]?\d+)?`)
)

// TimeLayouts are tried in order when casting text to a time.
var TimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
}

// Cast converts value according to the property's declared type.
func (p Property) Cast(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch p.Type {
	case TypeNone:
		return value, nil
	case TypeInteger:
		return toInteger(value), nil
	case TypeString:
		return toString(value), nil
	case TypeFloat:
		return toFloat(value), nil
	case TypeTime:
		return toTime(p.Name, value)
	case TypeBoolean:
		return toBoolean(value), nil
	case TypeCustom:
		if p.Caster == nil {
			return nil, fmt.Errorf("property %q: %w", p.Name, ErrMissingCaster)
		}
		return p.Caster(value)
	default:
		return value, nil
	}
}

func toInteger(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float32:
		return truncate(float64(v))
	case float64:
		return truncate(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		if f, err := v.Float64(); err == nil {
			return truncate(f)
		}
		return parseLeadingInt(v.String())
	case string:
		return parseLeadingInt(v)
	case []byte:
		return parseLeadingInt(string(v))
	default:
		return 0
	}
}

func truncate(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func parseLeadingInt(s string) int {
	m := leadingInt.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	// ParseInt clamps to the int64 range on overflow.
	n, _ := strconv.ParseInt(strings.ReplaceAll(m, "_", ""), 10, 64)
	return int(n)
}

func toFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		return parseLeadingFloat(v.String())
	case string:
		return parseLeadingFloat(v)
	case []byte:
		return parseLeadingFloat(string(v))
	default:
		return 0
	}
}

func parseLeadingFloat(s string) float64 {
	m := leadingFloat.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, "_", ""), 64)
	if err != nil {
		return 0
	}
	return f
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}

func toTime(name string, value any) (any, error) {
	var text string
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return nil, &ParseError{Property: name, Value: fmt.Sprint(value), Err: errNotText}
	}

	t, err := parseTime(strings.TrimSpace(text))
	if err != nil {
		return nil, &ParseError{Property: name, Value: text, Err: err}
	}
	return t, nil
}

func parseTime(text string) (time.Time, error) {
	if text == "" {
		return time.Time{}, errNoTimeInformation
	}

	var lastErr error
	for _, layout := range TimeLayouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func toBoolean(value any) bool {
	switch v := value.(type) {
	case string:
		return v != "false"
	case []byte:
		return string(v) != "false"
	case bool:
		return v
	default:
		return true
	}
}
