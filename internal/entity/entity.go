// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package entity declares every entity the admin API manages as a single
// table: backend collection path, field mapping, validation rules, and the
// list policy its list endpoint follows.
package entity

import (
	"errors"
	"strings"

	"learnadmin/internal/fieldmap"
	"learnadmin/internal/models"
	"learnadmin/internal/validate"
)

// StatsScope selects which records list statistics are computed over.
type StatsScope int

const (
	// StatsFromPage groups only the records returned for the current page.
	StatsFromPage StatsScope = iota
	// StatsFromFullSet groups every record the backend returned, before
	// search/status filtering and pagination.
	StatsFromFullSet
)

// ListPolicy captures per-endpoint list behavior. The endpoints disagree
// on defaults; each one keeps its own.
type ListPolicy struct {
	DefaultLimit int
	Stats        StatsScope
	// LocalPaging fetches the whole collection in one call and applies
	// search, status filter, sorting, and pagination locally.
	LocalPaging bool
	// SumTopics adds a totalTopics counter (sum of topicsCount) to stats.
	SumTopics bool
	// SearchFields are matched by the search term when paging locally.
	SearchFields []string
	// Filters are extra query parameters (domain names) forwarded to the
	// backend under their backend spelling.
	Filters []string
}

// Definition is the complete description of one entity.
type Definition struct {
	Kind models.Kind
	// Label prefixes validation messages ("Category name is required").
	Label string
	// Path is the backend collection path, relative to the base URL.
	Path     string
	Schema   *fieldmap.Schema
	Rules    []validate.Field
	Statuses []string
	List     ListPolicy
}

// Validate checks a normalized record against the entity rules.
func (d *Definition) Validate(rec fieldmap.Record, mode validate.Mode) error {
	return validate.Validate(d.Label, d.Rules, rec, mode)
}

// ToDomain maps a single backend record.
func (d *Definition) ToDomain(raw any) (fieldmap.Record, error) {
	return fieldmap.ToDomain(d.Schema, raw)
}

// ToDomainList maps a backend list.
func (d *Definition) ToDomainList(raw any) ([]fieldmap.Record, error) {
	return fieldmap.ToDomainList(d.Schema, raw)
}

// ToBackend maps a validated record to the backend body.
func (d *Definition) ToBackend(rec fieldmap.Record) map[string]any {
	return fieldmap.ToBackend(d.Schema, rec)
}

// Normalize reads a request body sent in either spelling. Values of the
// wrong JSON type are reported as a *validate.Error.
func (d *Definition) Normalize(raw any) (fieldmap.Record, error) {
	rec, err := fieldmap.Normalize(d.Schema, raw)
	var te *fieldmap.TypeError
	if errors.As(err, &te) {
		verr := &validate.Error{}
		for _, m := range te.Fields {
			verr.Fields = append(verr.Fields, validate.FieldError{Field: m.Field, Message: d.mismatch(m)})
		}
		return nil, verr
	}
	return rec, err
}

// mismatch words a type error with the field label. Closed sets are named
// so the message matches the one OneOf would give.
func (d *Definition) mismatch(m fieldmap.Mismatch) string {
	for _, f := range d.Rules {
		if f.Name != m.Field {
			continue
		}
		for _, r := range f.Rules {
			if r.Kind == "oneOf" {
				return validate.Message(d.Label, f.Label, "must be one of: "+strings.Join(r.Values, ", "))
			}
		}
		return validate.Message(d.Label, f.Label, "must be "+m.Want)
	}
	return validate.Message(d.Label, m.Field, "must be "+m.Want)
}

// byName indexes definitions by the URL segment the dashboard uses.
var byName = map[string]*Definition{
	"categories":       Category,
	"subcategories":    SubCategory,
	"topics":           Topic,
	"terms":            Terms,
	"privacy-policies": PrivacyPolicy,
	"homepage":         Homepage,
	"faqs":             FAQ,
}

// Lookup returns the definition served under the given URL segment.
func Lookup(name string) (*Definition, bool) {
	d, ok := byName[name]
	return d, ok
}

// Names lists the URL segments with a definition.
func Names() []string {
	return []string{"categories", "subcategories", "topics", "terms", "privacy-policies", "homepage", "faqs"}
}
