// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf16"
)

type stage int

const (
	stageRequired stage = iota
	stageLength
	stageFormat
)

// Rule is a single constraint on a field value. Rules are built with the
// constructors below and are safe to share between schemas.
type Rule struct {
	Kind   string   `json:"rule"`
	Value  any      `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
	// Message overrides the generated message when set.
	Message string `json:"message,omitempty"`

	stage stage
	check func(v any) string
	// fixed marks messages that are emitted verbatim, without the
	// entity/field prefix.
	fixed bool
}

func (r Rule) message(entity, field, msg string) string {
	if r.Message != "" {
		return r.Message
	}
	if r.fixed {
		return msg
	}
	return label(entity, field) + " " + msg
}

// WithMessage returns a copy of r that reports msg verbatim.
func (r Rule) WithMessage(msg string) Rule {
	r.Message = msg
	return r
}

// Required rejects missing values and blank strings.
func Required() Rule {
	return Rule{
		Kind:  "required",
		stage: stageRequired,
		check: func(v any) string {
			if isEmpty(v) {
				return "is required"
			}
			return ""
		},
	}
}

// NonZero rejects a missing or zero numeric reference such as a foreign key.
func NonZero() Rule {
	return Rule{
		Kind:  "nonZero",
		stage: stageRequired,
		check: func(v any) string {
			if isEmpty(v) {
				return "is required"
			}
			if n, ok := number(v); ok && n == 0 {
				return "is required"
			}
			return ""
		},
	}
}

// NotEmptyList rejects missing or empty lists and values that are not
// lists at all.
func NotEmptyList() Rule {
	return Rule{
		Kind:  "notEmptyList",
		stage: stageRequired,
		check: func(v any) string {
			switch t := v.(type) {
			case []any:
				if len(t) > 0 {
					return ""
				}
			case []string:
				if len(t) > 0 {
					return ""
				}
			case nil:
			default:
				return "must be a list"
			}
			return "must contain at least one item"
		},
	}
}

// MinLen requires a string of at least n characters. Length is counted
// in UTF-16 code units, the way the dashboard measures it.
func MinLen(n int) Rule {
	return Rule{
		Kind:  "minLength",
		Value: n,
		stage: stageLength,
		check: func(v any) string {
			s, _ := v.(string)
			if textLength(s) < n {
				return fmt.Sprintf("must be at least %d characters long", n)
			}
			return ""
		},
	}
}

// MaxLen limits a string to n characters, counted like MinLen.
func MaxLen(n int) Rule {
	return Rule{
		Kind:  "maxLength",
		Value: n,
		stage: stageLength,
		check: func(v any) string {
			s, _ := v.(string)
			if textLength(s) > n {
				return fmt.Sprintf("must be at most %d characters long", n)
			}
			return ""
		},
	}
}

// OneOf requires membership in a closed set. Values are never coerced.
func OneOf(values ...string) Rule {
	return Rule{
		Kind:   "oneOf",
		Values: values,
		stage:  stageFormat,
		check: func(v any) string {
			s, _ := v.(string)
			for _, allowed := range values {
				if s == allowed {
					return ""
				}
			}
			return "must be one of: " + join(values)
		},
	}
}

// Pattern requires a full regular expression match. msg is emitted as is.
func Pattern(expr, msg string) Rule {
	re := regexp.MustCompile(expr)
	return Rule{
		Kind:  "pattern",
		Value: expr,
		stage: stageFormat,
		fixed: true,
		check: func(v any) string {
			s, _ := v.(string)
			if !re.MatchString(s) {
				return msg
			}
			return ""
		},
	}
}

// Min requires a number greater than or equal to n.
func Min(n float64) Rule {
	return Rule{
		Kind:  "min",
		Value: n,
		stage: stageFormat,
		check: func(v any) string {
			f, ok := number(v)
			if !ok || f < n {
				return "must be at least " + strconv.FormatFloat(n, 'f', -1, 64)
			}
			return ""
		},
	}
}

// textLength counts s in UTF-16 code units, so characters outside the
// Basic Multilingual Plane count as two.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}
