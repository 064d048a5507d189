// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"learnadmin/internal/backend"
	"learnadmin/internal/entity"
	"learnadmin/internal/envelope"
	"learnadmin/internal/fieldmap"
	"learnadmin/internal/markdown"
)

// documentPreview is the rendered form of a legal document.
type documentPreview struct {
	Document fieldmap.Record `json:"document,omitempty"`
	*markdown.Preview
}

// Preview renders the Markdown content of a stored legal document.
func (a *API) Preview(def *entity.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := a.call(r, backend.Request{Method: http.MethodGet, Path: itemPath(def, r)})
		if err != nil {
			envelope.Fail(w, r, err)
			return
		}
		rec, err := def.ToDomain(resp.Data)
		if err != nil {
			envelope.Fail(w, r, err)
			return
		}

		preview, err := markdown.Render(fieldmap.String(rec, "content"))
		if err != nil {
			envelope.Fail(w, r, fmt.Errorf("render %s %v: %w", def.Kind, rec["id"], err))
			return
		}
		envelope.OK(w, http.StatusOK, documentPreview{Document: rec, Preview: preview}, "")
	}
}

// DraftPreview renders unsaved content posted by the editor.
func (a *API) DraftPreview(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		envelope.Fail(w, r, err)
		return
	}
	content, _ := body["content"].(string)
	if strings.TrimSpace(content) == "" {
		envelope.Fail(w, r, envelope.BadRequest("Content is required"))
		return
	}

	preview, err := markdown.Render(content)
	if err != nil {
		envelope.Fail(w, r, fmt.Errorf("render draft: %w", err))
		return
	}
	envelope.OK(w, http.StatusOK, documentPreview{Preview: preview}, "")
}
