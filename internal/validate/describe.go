// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package validate

// FieldRules is the exported form of a field's rules, served to the
// dashboard so client-side form validation enforces the same constraints.
type FieldRules struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Rules []Rule `json:"rules"`
}

// Describe returns the rule table for fields in declaration order.
func Describe(fields []Field) []FieldRules {
	out := make([]FieldRules, 0, len(fields))
	for _, f := range fields {
		rules := f.Rules
		if rules == nil {
			rules = []Rule{}
		}
		out = append(out, FieldRules{Field: f.Name, Label: f.Label, Rules: rules})
	}
	return out
}
