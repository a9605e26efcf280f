package commands

import (
	"fmt"
	"strconv"
	"strings"
)

// Params are the resolved inputs of a single node, keyed by Param.Key.
type Params map[string]interface{}

// String returns the value for key rendered as a string.
func (p Params) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns the value for key as a boolean. Strings such as "false" and
// "0" are accepted.
func (p Params) Bool(key string, fallback bool) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fallback
		}
		return b
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return fallback
	}
}

// Ints returns the value for key as a list of integers. The fallback is used
// when the value is missing, malformed or of a different length.
func (p Params) Ints(key string, fallback []int) []int {
	var raw []interface{}
	switch v := p[key].(type) {
	case []int:
		if len(v) == len(fallback) {
			return v
		}
		return fallback
	case []interface{}:
		raw = v
	case string:
		for _, part := range strings.Split(v, ",") {
			raw = append(raw, strings.TrimSpace(part))
		}
	default:
		return fallback
	}
	if len(raw) != len(fallback) {
		return fallback
	}

	out := make([]int, len(raw))
	for i, item := range raw {
		switch n := item.(type) {
		case int:
			out[i] = n
		case int64:
			out[i] = int(n)
		case float64:
			out[i] = int(n)
		case string:
			parsed, err := strconv.Atoi(n)
			if err != nil {
				return fallback
			}
			out[i] = parsed
		default:
			return fallback
		}
	}
	return out
}
