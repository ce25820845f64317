package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	dateRE    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRE    = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
	integerRE = regexp.MustCompile(`^-?\d+$`)
)

// asString coerces a decoded JSON value to a trimmed string. Non-string
// scalars are stringified the way the model tends to emit them.
func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// toInt accepts JSON numbers that are whole and numeric-looking strings.
func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		if v == float64(int64(v)) {
			return int(v), true
		}
	case int:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		if integerRE.MatchString(s) {
			n, err := strconv.Atoi(s)
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func asMap(value any) (map[string]any, bool) {
	m, ok := value.(map[string]any)
	return m, ok
}

func asSlice(value any) []any {
	s, _ := value.([]any)
	return s
}

func isStringSlice(value any) bool {
	items, ok := value.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}

func isISODate(value string) bool {
	return dateRE.MatchString(value)
}

func isTimeHHMM(value string) bool {
	return timeRE.MatchString(value)
}

// UniqueStrings trims, drops empties, and deduplicates case-insensitively
// while preserving first-seen casing and order.
func UniqueStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		s := strings.TrimSpace(value)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func uniqueAnyStrings(values []any) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, asString(value))
	}
	return UniqueStrings(out)
}
