// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package validate checks entity payloads before anything is sent to the
// content backend. Rules are declared per field and evaluated in a fixed
// order (required, then length, then format); the first rule a field
// violates produces that field's message.
package validate

import (
	"fmt"
	"strings"
)

// Mode selects which rules apply to absent fields.
type Mode int

const (
	// Create enforces Required on every field.
	Create Mode = iota
	// Update validates only the fields present in the payload.
	Update
)

// FieldError is the first rule violation found for a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when a payload fails validation. It carries one
// message per failing field, in field declaration order.
type Error struct {
	Fields []FieldError
}

// Error returns the message of the first failing field.
func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return e.Fields[0].Message
}

// Field declares the rules for one domain field.
type Field struct {
	Name  string
	Label string
	Rules []Rule
}

// Validate checks rec against fields and returns nil or an *Error.
// entity is the human label prefixed to messages ("Category").
func Validate(entity string, fields []Field, rec map[string]any, mode Mode) error {
	var errs []FieldError
	for _, f := range fields {
		v, ok := rec[f.Name]
		if mode == Update && !ok {
			continue
		}
		if msg := check(entity, f, v); msg != "" {
			errs = append(errs, FieldError{Field: f.Name, Message: msg})
		}
	}
	if len(errs) > 0 {
		return &Error{Fields: errs}
	}
	return nil
}

// check runs the field rules in stage order and returns the first message.
func check(entity string, f Field, v any) string {
	for _, stage := range []stage{stageRequired, stageLength, stageFormat} {
		for _, r := range f.Rules {
			if r.stage != stage {
				continue
			}
			if stage != stageRequired && isEmpty(v) {
				continue
			}
			if msg := r.check(v); msg != "" {
				return r.message(entity, f.Label, msg)
			}
		}
	}
	return ""
}

// isEmpty reports whether v counts as "not provided".
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

// join formats an enum set for messages ("Active, Draft, Inactive").
func join(values []string) string {
	return strings.Join(values, ", ")
}

// Message formats msg the way rule messages are formatted for a field
// ("Topic price must be a number").
func Message(entity, field, msg string) string {
	return label(entity, field) + " " + msg
}

func label(entity, field string) string {
	if entity == "" {
		return field
	}
	return fmt.Sprintf("%s %s", entity, field)
}
