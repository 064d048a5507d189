// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"learnadmin/internal/backend"
	"learnadmin/internal/entity"
	"learnadmin/internal/envelope"
	"learnadmin/internal/fieldmap"
	"learnadmin/internal/models"
	"learnadmin/internal/slug"
	"learnadmin/internal/validate"
)

// TopicSlug fills an absent slug from the title on create, and on update
// when the body clears the slug while sending a title.
func TopicSlug(rec fieldmap.Record, mode validate.Mode) {
	s, present := rec["slug"]
	if mode == validate.Update && !present {
		return
	}
	if str, _ := s.(string); str != "" {
		return
	}
	if title := fieldmap.String(rec, "title"); title != "" {
		rec["slug"] = slug.Generate(title)
	}
}

// ActiveList serves the records the backend reports as active.
func (a *API) ActiveList(def *entity.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.forwardList(w, r, def, backend.Request{Method: http.MethodGet, Path: backend.Path(def.Path, "active")})
	}
}

// ActiveDocument serves the published legal document for a language
// (default en).
func (a *API) ActiveDocument(def *entity.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("language")))
		if lang == "" {
			lang = models.DefaultLanguage
		}
		if !models.Contains(models.Languages, lang) {
			envelope.Fail(w, r, envelope.BadRequest(fmt.Sprintf("Language must be one of: %s", strings.Join(models.Languages, ", "))))
			return
		}

		resp, err := a.call(r, backend.Request{
			Method: http.MethodGet,
			Path:   backend.Path(def.Path, "active"),
			Query:  url.Values{"language": {lang}},
		})
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

// Count serves {"count": n}. The backend may answer with a bare number or
// an object carrying count or total.
func (a *API) Count(def *entity.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := a.call(r, backend.Request{Method: http.MethodGet, Path: backend.Path(def.Path, "count")})
		if err != nil {
			envelope.Fail(w, r, err)
			return
		}

		var n int64
		switch v := resp.Data.(type) {
		case float64:
			n = int64(v)
		case map[string]any:
			n = fieldmap.Int(v, "count")
			if n == 0 {
				n = fieldmap.Int(v, "total")
			}
		default:
			envelope.Fail(w, r, fmt.Errorf("%w: %s count", backend.ErrMalformedResponse, def.Label))
			return
		}
		envelope.OK(w, http.StatusOK, map[string]int64{"count": n}, "")
	}
}

// Search forwards a search term. An empty term answers an empty list
// without calling the backend.
func (a *API) Search(def *entity.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			envelope.OK(w, http.StatusOK, []fieldmap.Record{}, "")
			return
		}
		a.forwardList(w, r, def, backend.Request{
			Method: http.MethodGet,
			Path:   backend.Path(def.Path, "search"),
			Query:  url.Values{"q": {q}},
		})
	}
}

// CategorySubcategories lists the subcategories of one category.
func (a *API) CategorySubcategories(w http.ResponseWriter, r *http.Request) {
	def := entity.SubCategory
	a.forwardList(w, r, def, backend.Request{
		Method: http.MethodGet,
		Path:   def.Path,
		Query:  url.Values{def.Schema.BackendName("categoryId"): {chi.URLParam(r, "id")}},
	})
}

// forwardList performs req and writes the mapped list without paging.
func (a *API) forwardList(w http.ResponseWriter, r *http.Request, def *entity.Definition, req backend.Request) {
	resp, err := a.call(r, req)
	if err != nil {
		envelope.Fail(w, r, err)
		return
	}
	records, err := def.ToDomainList(resp.Data)
	if err != nil {
		envelope.Fail(w, r, err)
		return
	}
	envelope.OK(w, http.StatusOK, records, "")
}

var bulkDeleteRules = []validate.Field{
	{Name: "ids", Label: "ids", Rules: []validate.Rule{validate.NotEmptyList().WithMessage("At least one id is required")}},
}

// BulkDelete removes several records in one backend call.
func (a *API) BulkDelete(def *entity.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			envelope.Fail(w, r, err)
			return
		}
		if err := validate.Validate("", bulkDeleteRules, body, validate.Create); err != nil {
			envelope.Fail(w, r, err)
			return
		}
		ids := body["ids"].([]any)

		resp, err := a.call(r, backend.Request{
			Method: http.MethodPost,
			Path:   backend.Path(def.Path, "bulk-delete"),
			Body:   map[string]any{"ids": ids},
		})
		if err != nil {
			envelope.Fail(w, r, err)
			return
		}

		deleted := int64(len(ids))
		if obj, ok := resp.Data.(map[string]any); ok {
			if n := fieldmap.Int(obj, "deleted_count"); n > 0 {
				deleted = n
			} else if n := fieldmap.Int(obj, "deleted"); n > 0 {
				deleted = n
			}
		}
		envelope.OK(w, http.StatusOK, map[string]int64{"deleted": deleted},
			fmt.Sprintf("%d %s deleted successfully", deleted, strings.ToLower(def.Schema.Entity)+plural(deleted)))
	}
}

func plural(n int64) string {
	if n == 1 {
		return ""
	}
	return "s"
}
