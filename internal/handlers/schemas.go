// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"learnadmin/internal/entity"
	"learnadmin/internal/envelope"
	"learnadmin/internal/validate"
)

// schemaInfo is the client-side description of an entity form.
type schemaInfo struct {
	Name     string                `json:"name"`
	Label    string                `json:"label"`
	Statuses []string              `json:"statuses"`
	Fields   []validate.FieldRules `json:"fields"`
}

func describe(name string, def *entity.Definition) schemaInfo {
	statuses := def.Statuses
	if statuses == nil {
		statuses = []string{}
	}
	return schemaInfo{
		Name:     name,
		Label:    def.Label,
		Statuses: statuses,
		Fields:   validate.Describe(def.Rules),
	}
}

// Schemas serves the validation rules of every entity.
func Schemas(w http.ResponseWriter, r *http.Request) {
	names := entity.Names()
	out := make([]schemaInfo, 0, len(names))
	for _, name := range names {
		def, _ := entity.Lookup(name)
		out = append(out, describe(name, def))
	}
	envelope.OK(w, http.StatusOK, out, "")
}

// Schema serves the validation rules of one entity.
func Schema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "entity")
	def, ok := entity.Lookup(name)
	if !ok {
		envelope.Fail(w, r, &envelope.RequestError{Status: http.StatusNotFound, Message: "Unknown entity " + name})
		return
	}
	envelope.OK(w, http.StatusOK, describe(name, def), "")
}
