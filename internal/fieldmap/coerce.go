// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package fieldmap

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// zero returns the value a missing field takes when Field.Default is nil.
func zero(k Kind) any {
	switch k {
	case KindString:
		return ""
	case KindInt:
		return int64(0)
	case KindFloat:
		return float64(0)
	case KindBool:
		return false
	case KindStringList:
		return []string{}
	case KindObjectList:
		return []Record{}
	default:
		return nil
	}
}

// fallback returns the documented default for f.
func fallback(f Field) any {
	if f.Default != nil {
		return f.Default
	}
	return zero(f.Kind)
}

// coerce converts v to the field kind. Values that cannot be converted
// fall back to the field default; backend payloads are loosely typed and
// a bad counter must not fail a whole page.
func coerce(f Field, v any) any {
	if out, ok := convert(f, v); ok {
		return out
	}
	return fallback(f)
}

// convert converts v to the field kind and reports whether it could.
func convert(f Field, v any) (any, bool) {
	switch f.Kind {
	case KindString:
		return asString(v)
	case KindID:
		return asID(v)
	case KindInt:
		if n, ok := asFloat(v); ok {
			return int64(n), true
		}
	case KindFloat:
		return asFloat(v)
	case KindBool:
		return asBool(v)
	case KindTime:
		switch t := v.(type) {
		case string:
			return strings.TrimSpace(t), true
		case time.Time:
			return t.UTC().Format(time.RFC3339), true
		}
	case KindStringList:
		return asStringList(v)
	}
	return nil, false
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// asID keeps whole numbers numeric and everything else as a string, so the
// id round-trips in the same JSON type the backend assigned.
func asID(v any) (any, bool) {
	switch t := v.(type) {
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, false
		}
		return t, true
	case float64:
		if t == math.Trunc(t) {
			return int64(t), true
		}
		return t, true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		return t.String(), true
	}
	return nil, false
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		n, err := t.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return n, err == nil
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	case float64:
		return t != 0, true
	case int:
		return t != 0, true
	case int64:
		return t != 0, true
	}
	return false, false
}

// asStringList accepts a JSON array or a comma-separated string.
func asStringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := asString(item); ok && s != "" {
				out = append(out, s)
			}
		}
		return out, true
	case string:
		out := []string{}
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, true
	}
	return nil, false
}

// asObject accepts the map shapes produced by encoding/json and by callers
// building records by hand.
func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, t != nil
	case Record:
		return t, t != nil
	}
	return nil, false
}

// asList accepts JSON arrays and typed record slices.
func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []Record:
		out := make([]any, len(t))
		for i, r := range t {
			out[i] = r
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(t))
		for i, r := range t {
			out[i] = r
		}
		return out, true
	}
	return nil, false
}

// Int reads a numeric field from a record, returning 0 when it is absent
// or not a number.
func Int(rec Record, name string) int64 {
	n, _ := asFloat(rec[name])
	return int64(n)
}

// String reads a string field from a record.
func String(rec Record, name string) string {
	s, _ := asString(rec[name])
	return s
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
