// Package workflow implements the workflow.* tools: chaining a sequence of
// other registered tool calls, with {{step_id.field}} template
// substitution and a small conditional language gating each step.
package workflow

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var templateVarPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// substituteContext replaces every {{var}} or {{step_id.field}} occurrence
// found in string values of v, recursing through objects and arrays.
// Numbers/bools/null pass through untouched.
func substituteContext(v any, context map[string]any) any {
	switch val := v.(type) {
	case string:
		return substituteString(val, context)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = substituteContext(item, context)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = substituteContext(item, context)
		}
		return out
	default:
		return v
	}
}

func substituteString(s string, context map[string]any) string {
	return templateVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		path := strings.TrimSpace(strings.Trim(match, "{}"))
		parts := strings.Split(path, ".")

		current, ok := context[parts[0]]
		if !ok {
			return match
		}
		for _, part := range parts[1:] {
			obj, ok := current.(map[string]any)
			if !ok {
				return match
			}
			current, ok = obj[part]
			if !ok {
				return match
			}
		}
		return valueToString(current)
	})
}

func valueToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// evaluateCondition implements the "<key> <op> <value>" mini-language:
// "key exists", "key empty", and "key == / != / > / >= / < / <= value".
func evaluateCondition(condition string, context map[string]any) bool {
	parts := strings.Fields(condition)

	switch {
	case len(parts) == 2 && parts[1] == "exists":
		_, ok := context[parts[0]]
		return ok

	case len(parts) == 2 && parts[1] == "empty":
		v, ok := context[parts[0]]
		if !ok || v == nil {
			return true
		}
		if s, isStr := v.(string); isStr {
			return s == ""
		}
		return false

	case len(parts) == 3:
		key, op, value := parts[0], parts[1], parts[2]
		ctxValue, hasKey := context[key]

		switch op {
		case "==", "=":
			return hasKey && compareEqual(ctxValue, value)
		case "!=":
			return !hasKey || !compareEqual(ctxValue, value)
		case ">", ">=", "<", "<=":
			ctxNum, ok1 := asFloat(ctxValue)
			cmpNum, err := strconv.ParseFloat(value, 64)
			if !ok1 || err != nil {
				return false
			}
			switch op {
			case ">":
				return ctxNum > cmpNum
			case ">=":
				return ctxNum >= cmpNum
			case "<":
				return ctxNum < cmpNum
			case "<=":
				return ctxNum <= cmpNum
			}
		}
		return false

	default:
		return false
	}
}

func compareEqual(v any, s string) bool {
	if str, ok := v.(string); ok {
		return str == s
	}
	return valueToString(v) == s
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
