// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package fieldmap

import (
	"fmt"
	"strings"
)

// lookup finds the first non-null value for f under any accepted spelling.
func lookup(m map[string]any, f Field) (any, bool) {
	for _, key := range f.spellings() {
		if v, ok := m[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// present reports whether f appears in m under any spelling, including an
// explicit null (used to clear optional fields on update).
func present(m map[string]any, f Field) (any, bool) {
	for _, key := range f.spellings() {
		if v, ok := m[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// ToDomain converts a backend payload into the camelCase record for s.
// Every declared field is present in the result: missing or null values
// take the field default. Keys the schema does not declare are dropped.
func ToDomain(s *Schema, raw any) (Record, error) {
	m, ok := asObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s expected object, got %s", ErrInvalidPayload, s.Entity, describe(raw))
	}

	rec := make(Record, len(s.Fields))
	for _, f := range s.Fields {
		v, ok := lookup(m, f)
		if !ok {
			rec[f.Name] = fallback(f)
			continue
		}
		if f.Kind == KindObjectList {
			rec[f.Name] = nestedToDomain(f, v)
			continue
		}
		rec[f.Name] = coerce(f, v)
	}
	return rec, nil
}

// nestedToDomain maps a nested list, skipping elements that are not objects.
func nestedToDomain(f Field, v any) []Record {
	items, ok := asList(v)
	if !ok || f.Item == nil {
		return []Record{}
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		rec, err := ToDomain(f.Item, item)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// ToDomainList converts a backend list payload. A nil payload is an empty
// list. An object wrapping the list under one of the schema's ListKeys is
// unwrapped. Anything else, including a non-object element, is
// ErrInvalidPayload.
func ToDomainList(s *Schema, raw any) ([]Record, error) {
	if raw == nil {
		return []Record{}, nil
	}
	if m, ok := asObject(raw); ok {
		for _, key := range s.ListKeys {
			if inner, ok := m[key]; ok {
				return ToDomainList(s, inner)
			}
		}
		return nil, fmt.Errorf("%w: %s expected list, got object", ErrInvalidPayload, s.Entity)
	}

	items, ok := asList(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s expected list, got %s", ErrInvalidPayload, s.Entity, describe(raw))
	}
	out := make([]Record, 0, len(items))
	for i, item := range items {
		rec, err := ToDomain(s, item)
		if err != nil {
			return nil, fmt.Errorf("%s item %d: %w", s.Entity, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ToBackend converts a domain record into the backend's snake_case body.
// Only writable fields present in rec are emitted; either spelling is
// accepted. Explicit nulls are forwarded so optional fields can be cleared.
func ToBackend(s *Schema, rec Record) map[string]any {
	out := make(map[string]any, len(rec))
	for _, f := range s.Fields {
		if f.ReadOnly {
			continue
		}
		v, ok := present(rec, f)
		if !ok {
			continue
		}
		switch {
		case v == nil:
			out[f.BackendName()] = nil
		case f.Kind == KindObjectList:
			out[f.BackendName()] = nestedToBackend(f, v)
		default:
			out[f.BackendName()] = coerce(f, v)
		}
	}
	return out
}

func nestedToBackend(f Field, v any) []map[string]any {
	items, _ := asList(v)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, ok := asObject(item)
		if !ok || f.Item == nil {
			continue
		}
		out = append(out, ToBackend(f.Item, m))
	}
	return out
}

// Normalize reads a request body sent in either spelling and returns the
// camelCase record of the writable fields it carries, trimmed and converted.
// Fields absent from the body stay absent so partial updates remain partial.
// Blank strings on non-string fields read as null. Values that cannot be
// read as their field kind are reported in a *TypeError; unlike ToDomain,
// request values never fall back to a default.
func Normalize(s *Schema, raw any) (Record, error) {
	m, ok := asObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s body must be a JSON object", ErrInvalidPayload, s.Entity)
	}

	var bad []Mismatch
	rec := normalize(s, m, "", &bad)
	if len(bad) > 0 {
		return nil, &TypeError{Fields: bad}
	}
	return rec, nil
}

func normalize(s *Schema, m map[string]any, prefix string, bad *[]Mismatch) Record {
	rec := make(Record, len(m))
	for _, f := range s.Fields {
		if f.ReadOnly {
			continue
		}
		v, ok := present(m, f)
		if !ok {
			continue
		}
		if str, isStr := v.(string); isStr && f.Kind != KindString && strings.TrimSpace(str) == "" {
			v = nil
		}
		switch {
		case v == nil:
			rec[f.Name] = nil
		case f.Kind == KindObjectList:
			rec[f.Name] = nestedNormalize(f, v, prefix+f.Name, bad)
		default:
			out, ok := convert(f, v)
			if !ok {
				*bad = append(*bad, Mismatch{Field: prefix + f.Name, Want: f.Kind.Describe()})
				continue
			}
			rec[f.Name] = out
		}
	}
	return rec
}

func nestedNormalize(f Field, v any, name string, bad *[]Mismatch) []Record {
	items, ok := asList(v)
	if !ok || f.Item == nil {
		*bad = append(*bad, Mismatch{Field: name, Want: f.Kind.Describe()})
		return nil
	}
	out := make([]Record, 0, len(items))
	for i, item := range items {
		m, ok := asObject(item)
		if !ok {
			*bad = append(*bad, Mismatch{Field: fmt.Sprintf("%s[%d]", name, i), Want: "an object"})
			continue
		}
		out = append(out, normalize(f.Item, m, fmt.Sprintf("%s[%d].", name, i), bad))
	}
	return out
}

// ApplyDefaults fills every writable field missing from rec with its
// default. Used on create so the backend always receives a status.
func ApplyDefaults(s *Schema, rec Record) Record {
	for _, f := range s.Fields {
		if f.ReadOnly {
			continue
		}
		if v, ok := rec[f.Name]; ok && v != nil {
			continue
		}
		if f.Default != nil {
			rec[f.Name] = f.Default
		}
	}
	return rec
}
