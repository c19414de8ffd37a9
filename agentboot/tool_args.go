package agentboot

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ollama/ollama/api"
)

// Tool arguments arrive as decoded JSON, so numbers are float64 and lists are
// []any. Models also send numbers and booleans as strings; both are accepted.

// ArgString returns a required string argument.
func ArgString(params api.ToolCallFunctionArguments, name string) (string, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return "", fmt.Errorf("missing required argument %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", name, v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("argument %q is empty", name)
	}
	return s, nil
}

// ArgInt returns an optional integer argument, or def when absent.
func ArgInt(params api.ToolCallFunctionArguments, name string, def int) (int, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("argument %q must be an integer, got %v", name, n)
		}
		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("argument %q must be an integer, got %q", name, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("argument %q must be an integer, got %T", name, v)
	}
}

// ArgBool returns an optional boolean argument, or def when absent.
func ArgBool(params api.ToolCallFunctionArguments, name string, def bool) (bool, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return def, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, fmt.Errorf("argument %q must be a boolean, got %q", name, b)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("argument %q must be a boolean, got %T", name, v)
	}
}

// ArgStringSlice returns a required, non-empty list argument. A single string
// is accepted as a one-element list and may hold comma separated values.
func ArgStringSlice(params api.ToolCallFunctionArguments, name string) ([]string, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return nil, fmt.Errorf("missing required argument %q", name)
	}

	var raw []string
	switch s := v.(type) {
	case []string:
		raw = s
	case []any:
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("argument %q must be a list of strings, got element %T", name, item)
			}
			raw = append(raw, str)
		}
	case string:
		raw = strings.Split(s, ",")
	default:
		return nil, fmt.Errorf("argument %q must be a list of strings, got %T", name, v)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("argument %q is empty", name)
	}
	return out, nil
}
