// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"learnadmin/internal/backend"
	"learnadmin/internal/entity"
	"learnadmin/internal/envelope"
	"learnadmin/internal/fieldmap"
	"learnadmin/internal/validate"
)

// Prepare adjusts a normalized body before validation.
type Prepare func(rec fieldmap.Record, mode validate.Mode)

// List serves a page of def records following its list policy.
func (a *API) List(def *entity.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := envelope.ParseListParams(r, def.List.DefaultLimit)
		if def.List.LocalPaging {
			a.listLocal(w, r, def, p)
			return
		}

		query := p.Query(def.Schema.BackendName)
		for _, name := range def.List.Filters {
			if v := r.URL.Query().Get(name); v != "" {
				query.Set(def.Schema.BackendName(name), v)
			}
		}

		resp, err := a.call(r, backend.Request{Method: http.MethodGet, Path: def.Path, Query: query})
		if err != nil {
			envelope.Fail(w, r, err)
			return
		}
		records, err := def.ToDomainList(resp.Data)
		if err != nil {
			envelope.Fail(w, r, err)
			return
		}

		opts := envelope.StatsOptions{SumTopics: def.List.SumTopics}
		stats := envelope.SynthesizeStats(records, def.Statuses, opts)
		if resp.Stats != nil {
			stats = envelope.MergeStats(resp.Stats, def.Statuses, opts)
		}
		envelope.List(w, records, envelope.MetaFrom(pageInfo(resp), p, int64(len(records))), stats)
	}
}

// listLocal fetches the whole collection and pages it here.
func (a *API) listLocal(w http.ResponseWriter, r *http.Request, def *entity.Definition, p envelope.ListParams) {
	resp, err := a.call(r, backend.Request{Method: http.MethodGet, Path: def.Path})
	if err != nil {
		envelope.Fail(w, r, err)
		return
	}
	all, err := def.ToDomainList(resp.Data)
	if err != nil {
		envelope.Fail(w, r, err)
		return
	}

	filtered := envelope.Filter(all, p, def.List.SearchFields...)
	envelope.Sort(filtered, p)
	page := envelope.Paginate(filtered, p)

	scope := all
	if def.List.Stats == entity.StatsFromPage {
		scope = page
	}
	stats := envelope.SynthesizeStats(scope, def.Statuses, envelope.StatsOptions{SumTopics: def.List.SumTopics})
	envelope.List(w, page, envelope.SynthesizeMeta(p, int64(len(filtered))), stats)
}

// pageInfo returns the backend's paging metadata: the envelope meta, or
// the sibling keys of a wrapped list ({"items": [...], "total": 12}).
func pageInfo(resp *backend.Response) map[string]any {
	if resp.Meta != nil {
		return resp.Meta
	}
	if obj, ok := resp.Data.(map[string]any); ok {
		for _, k := range []string{"total", "total_count", "totalCount", "count"} {
			if _, ok := obj[k]; ok {
				return obj
			}
		}
	}
	return nil
}

// Get serves one record.
func (a *API) Get(def *entity.Definition) http.HandlerFunc {
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
		envelope.OK(w, http.StatusOK, rec, "")
	}
}

// Create validates a new record and forwards it. Missing writable fields
// take their defaults first, so the backend always receives a status.
func (a *API) Create(def *entity.Definition, prepare ...Prepare) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := readRecord(w, r, def)
		if err != nil {
			envelope.Fail(w, r, err)
			return
		}
		rec = fieldmap.ApplyDefaults(def.Schema, rec)
		for _, fn := range prepare {
			fn(rec, validate.Create)
		}
		if err := def.Validate(rec, validate.Create); err != nil {
			envelope.Fail(w, r, err)
			return
		}

		resp, err := a.call(r, backend.Request{Method: http.MethodPost, Path: def.Path, Body: def.ToBackend(rec)})
		if err != nil {
			envelope.Fail(w, r, err)
			return
		}
		created, err := record(def, resp.Data, rec)
		if err != nil {
			envelope.Fail(w, r, err)
			return
		}
		envelope.OK(w, http.StatusCreated, created, def.Label+" created successfully")
	}
}

// Update validates the fields present in the body and forwards them.
func (a *API) Update(def *entity.Definition, prepare ...Prepare) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := readRecord(w, r, def)
		if err != nil {
			envelope.Fail(w, r, err)
			return
		}
		if len(rec) == 0 {
			envelope.Fail(w, r, envelope.BadRequest("No fields to update"))
			return
		}
		for _, fn := range prepare {
			fn(rec, validate.Update)
		}
		if err := def.Validate(rec, validate.Update); err != nil {
			envelope.Fail(w, r, err)
			return
		}

		resp, err := a.call(r, backend.Request{Method: http.MethodPut, Path: itemPath(def, r), Body: def.ToBackend(rec)})
		if err != nil {
			envelope.Fail(w, r, err)
			return
		}
		updated, err := record(def, resp.Data, rec)
		if err != nil {
			envelope.Fail(w, r, err)
			return
		}
		envelope.OK(w, http.StatusOK, updated, def.Label+" updated successfully")
	}
}

// Delete removes one record.
func (a *API) Delete(def *entity.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := a.call(r, backend.Request{Method: http.MethodDelete, Path: itemPath(def, r)}); err != nil {
			envelope.Fail(w, r, err)
			return
		}
		envelope.OK(w, http.StatusOK, nil, def.Label+" deleted successfully")
	}
}

// Action forwards a state transition the backend owns (toggle-status,
// publish, toggle-featured, duplicate) and returns the resulting record.
func (a *API) Action(def *entity.Definition, method, action string, status int, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := a.call(r, backend.Request{Method: method, Path: itemPath(def, r, action)})
		if err != nil {
			envelope.Fail(w, r, err)
			return
		}

		var data any
		if resp.Data != nil {
			rec, err := def.ToDomain(resp.Data)
			if err != nil {
				envelope.Fail(w, r, err)
				return
			}
			data = rec
		}
		if resp.Message != "" {
			message = resp.Message
		}
		envelope.OK(w, status, data, message)
	}
}
