// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package fieldmap converts records between the content backend's
// snake_case payloads and the camelCase shape exposed to the dashboard.
// Each entity is described once by a Schema; the same table drives reads
// (ToDomain, ToDomainList), writes (ToBackend), and request normalization.
package fieldmap

import (
	"errors"
	"strings"
	"unicode"
)

// ErrInvalidPayload is returned when a payload is missing or is not the
// JSON shape the schema expects (object for single records, array for lists).
var ErrInvalidPayload = errors.New("invalid payload")

// Kind is the value type of a field. Values are coerced to their kind on
// every conversion so the UI sees stable JSON types.
type Kind int

const (
	KindString Kind = iota
	KindID          // number or string, passed through
	KindInt
	KindFloat
	KindBool
	KindTime // RFC 3339 string, null when absent
	KindStringList
	KindObjectList // ordered list of nested records, see Field.Item
)

// Describe names the JSON type a request value of kind k must have.
func (k Kind) Describe() string {
	switch k {
	case KindInt, KindFloat:
		return "a number"
	case KindBool:
		return "true or false"
	case KindTime:
		return "a date"
	case KindStringList:
		return "a list of strings"
	case KindObjectList:
		return "a list of objects"
	case KindID:
		return "a number or string"
	default:
		return "a string"
	}
}

// Mismatch is a request field whose value is not of the field kind.
// Nested fields are addressed as "modules[0].title".
type Mismatch struct {
	Field string
	// Want is the expected JSON type, as in "a number".
	Want string
}

// TypeError is returned by Normalize when request values cannot be read
// as their field kind. The record is not forwarded.
type TypeError struct {
	Fields []Mismatch
}

func (e *TypeError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid field types"
	}
	m := e.Fields[0]
	return m.Field + " must be " + m.Want
}

// Record is an entity in the camelCase domain shape.
type Record map[string]any

// Field describes one logical field of an entity.
type Field struct {
	// Name is the camelCase domain name.
	Name string
	// Backend is the snake_case name used by the content backend.
	// Empty means the backend uses Name unchanged.
	Backend string
	// Aliases are additional spellings accepted on read.
	Aliases []string
	Kind    Kind
	// Default is returned by ToDomain when the field is missing or null.
	// Nil means the zero value for Kind (null for KindID and KindTime).
	Default any
	// ReadOnly fields are derived or assigned by the backend and are never
	// written back.
	ReadOnly bool
	// RoundTrip marks fields that survive ToDomain(ToBackend(x)) unchanged.
	RoundTrip bool
	// Item is the element schema for KindObjectList fields.
	Item *Schema
}

// BackendName returns the spelling used by the content backend.
func (f Field) BackendName() string {
	if f.Backend != "" {
		return f.Backend
	}
	return f.Name
}

// spellings returns every key under which the field may appear, in lookup
// priority order.
func (f Field) spellings() []string {
	keys := make([]string, 0, 2+len(f.Aliases))
	keys = append(keys, f.Name)
	if f.Backend != "" && f.Backend != f.Name {
		keys = append(keys, f.Backend)
	}
	return append(keys, f.Aliases...)
}

// Schema is the field table for one entity.
type Schema struct {
	// Entity is the human label used in error messages ("Category").
	Entity string
	Fields []Field
	// ListKeys are the object keys under which the backend may wrap a list
	// ("items", "categories", ...).
	ListKeys []string
}

// Field returns the field with the given domain name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// BackendName maps a domain field name to its backend spelling. Names the
// schema does not declare are converted with Snake.
func (s *Schema) BackendName(name string) string {
	if f, ok := s.Field(name); ok {
		return f.BackendName()
	}
	return Snake(name)
}

// RoundTripFields lists the domain names of fields marked RoundTrip.
func (s *Schema) RoundTripFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.RoundTrip {
			names = append(names, f.Name)
		}
	}
	return names
}

// Snake converts a camelCase identifier to snake_case ("sortBy" → "sort_by").
func Snake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
