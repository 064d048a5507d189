// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnadmin/internal/backend"
	"learnadmin/internal/fieldmap"
	"learnadmin/internal/validate"
)

func TestStatus(t *testing.T) {
	validation := &validate.Error{Fields: []validate.FieldError{{Field: "name", Message: "Category name is required"}}}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", validation, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create: %w", validation), http.StatusBadRequest},
		{"request error", Unauthorized("Authentication required"), http.StatusUnauthorized},
		{"bad request", BadRequest("Invalid JSON body"), http.StatusBadRequest},
		{"not found", &backend.Error{Message: "Category not found"}, http.StatusNotFound},
		{"not found upper", &backend.Error{Message: "Topic NOT FOUND"}, http.StatusNotFound},
		{"already exists", &backend.Error{Message: "Category with this name already exists"}, http.StatusConflict},
		{"existing topics", &backend.Error{Message: "Cannot delete category with existing topics"}, http.StatusConflict},
		{"not found wins", &backend.Error{Message: "parent not found, already exists"}, http.StatusNotFound},
		{"upstream", &backend.Error{Message: "database exploded"}, http.StatusInternalServerError},
		{"timeout", &backend.Error{Message: "request timed out"}, http.StatusInternalServerError},
		{"invalid payload", fmt.Errorf("decode: %w", fieldmap.ErrInvalidPayload), http.StatusInternalServerError},
		{"malformed", &backend.Error{Message: "not found", Err: backend.ErrMalformedResponse}, http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status = %d, want %d", got, tt.want)
			}
		})
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestFail_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/topics", nil)

	Fail(rec, req, &backend.Error{Message: "pq: relation topics does not exist", Status: 500})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["success"] != false {
		t.Errorf("success = %v", body["success"])
	}
	if body["error"] != InternalMessage {
		t.Errorf("error = %v, want %q", body["error"], InternalMessage)
	}
	if _, ok := body["data"]; ok {
		t.Error("error envelope should not carry data")
	}
}

func TestFail_PassesClassifiedMessages(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{&backend.Error{Message: "Cannot delete category with existing topics"}, http.StatusConflict, "Cannot delete category with existing topics"},
		{&backend.Error{Message: "Topic not found"}, http.StatusNotFound, "Topic not found"},
		{&validate.Error{Fields: []validate.FieldError{
			{Field: "version", Message: "Version must be in format X.Y (e.g., 1.0)"},
			{Field: "title", Message: "Terms title is required"},
		}}, http.StatusBadRequest, "Version must be in format X.Y (e.g., 1.0)"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		Fail(rec, httptest.NewRequest(http.MethodDelete, "/api/x", nil), tt.err)
		if rec.Code != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.status)
		}
		if got := decodeEnvelope(t, rec)["error"]; got != tt.message {
			t.Errorf("error = %v, want %q", got, tt.message)
		}
	}
}

func TestOK_KeepsEmptyList(t *testing.T) {
	rec := httptest.NewRecorder()
	List(rec, []fieldmap.Record{}, Meta{Page: 1, Limit: 50}, nil)

	body := decodeEnvelope(t, rec)
	data, ok := body["data"].([]any)
	if !ok || len(data) != 0 {
		t.Errorf("data = %#v, want empty array", body["data"])
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestParseListParams(t *testing.T) {
	tests := []struct {
		query string
		want  ListParams
	}{
		{"", ListParams{Page: 1, Limit: 10, SortOrder: "desc"}},
		{"page=3&limit=25&search=+net+&status=Active", ListParams{Page: 3, Limit: 25, Search: "net", Status: "Active", SortOrder: "desc"}},
		{"page=0&limit=-4", ListParams{Page: 1, Limit: 10, SortOrder: "desc"}},
		{"page=abc", ListParams{Page: 1, Limit: 10, SortOrder: "desc"}},
		{"sortBy=name&sortOrder=ASC", ListParams{Page: 1, Limit: 10, SortBy: "name", SortOrder: "asc"}},
		{"fetchAll=true&page=4&limit=5", ListParams{Page: 1, Limit: FetchAllLimit, SortOrder: "desc", FetchAll: true}},
		{"fetchAll=yes", ListParams{Page: 1, Limit: 10, SortOrder: "desc"}},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/api/categories?"+tt.query, nil)
		if got := ParseListParams(r, 10); got != tt.want {
			t.Errorf("ParseListParams(%q) = %+v, want %+v", tt.query, got, tt.want)
		}
	}
}

func TestListParams_Query(t *testing.T) {
	p := ListParams{Page: 2, Limit: 10, SortBy: "createdAt", SortOrder: "asc"}
	q := p.Query(fieldmap.Snake)

	if q.Get("page") != "2" || q.Get("limit") != "10" {
		t.Errorf("paging = %v", q)
	}
	if q.Get("sort_by") != "created_at" || q.Get("sort_order") != "asc" {
		t.Errorf("sort = %v", q)
	}
	if _, ok := q["sortBy"]; ok {
		t.Error("camelCase sort key leaked to backend query")
	}
}

func TestSynthesizeMeta(t *testing.T) {
	tests := []struct {
		name  string
		p     ListParams
		total int64
		want  Meta
	}{
		{"empty", ListParams{Page: 1, Limit: 10}, 0, Meta{Total: 0, Page: 1, Limit: 10, TotalPages: 0}},
		{"exact", ListParams{Page: 1, Limit: 10}, 20, Meta{Total: 20, Page: 1, Limit: 10, TotalPages: 2}},
		{"partial", ListParams{Page: 3, Limit: 10}, 21, Meta{Total: 21, Page: 3, Limit: 10, TotalPages: 3}},
		{"fetch all", ListParams{Page: 1, Limit: FetchAllLimit, FetchAll: true}, 37, Meta{Total: 37, Page: 1, Limit: 37, TotalPages: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SynthesizeMeta(tt.p, tt.total); got != tt.want {
				t.Errorf("SynthesizeMeta = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSynthesizeStats_Empty(t *testing.T) {
	stats := SynthesizeStats(nil, []string{"Active", "Draft", "Inactive"}, StatsOptions{SumTopics: true})

	want := map[string]int64{"total": 0, "active": 0, "draft": 0, "inactive": 0, "totalTopics": 0}
	if len(stats) != len(want) {
		t.Fatalf("stats = %v, want %v", stats, want)
	}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("stats[%q] = %v, want %d", k, stats[k], v)
		}
	}
}

func TestSynthesizeStats_Counts(t *testing.T) {
	records := []fieldmap.Record{
		{"status": "Active", "topicsCount": int64(3)},
		{"status": "Active", "topicsCount": int64(2)},
		{"status": "Draft", "topicsCount": int64(0)},
		{"status": "Retired"},
	}

	stats := SynthesizeStats(records, []string{"Active", "Draft", "Inactive"}, StatsOptions{SumTopics: true})

	checks := map[string]int64{"total": 4, "active": 2, "draft": 1, "inactive": 0, "totalTopics": 5}
	for k, v := range checks {
		if stats[k] != v {
			t.Errorf("stats[%q] = %v, want %d", k, stats[k], v)
		}
	}
	if _, ok := stats["retired"]; ok {
		t.Error("unknown status should not get a counter")
	}
}

func TestSynthesizeStats_WithoutTopics(t *testing.T) {
	stats := SynthesizeStats(nil, []string{"draft", "published"}, StatsOptions{})
	if _, ok := stats["totalTopics"]; ok {
		t.Error("totalTopics should only appear when requested")
	}
}

func TestFilterSortPaginate(t *testing.T) {
	records := []fieldmap.Record{
		{"name": "Networking", "description": "Packets", "status": "Active", "topicsCount": int64(4)},
		{"name": "Cryptography", "description": "Ciphers and keys", "status": "Draft", "topicsCount": int64(9)},
		{"name": "Cloud", "description": "Network of computers", "status": "Active", "topicsCount": int64(1)},
	}

	found := Filter(records, ListParams{Search: "NETWORK"}, "name", "description")
	if len(found) != 2 {
		t.Fatalf("search matched %d, want 2", len(found))
	}

	active := Filter(records, ListParams{Status: "active"}, "name")
	if len(active) != 2 {
		t.Fatalf("status filter matched %d, want 2", len(active))
	}

	sorted := append([]fieldmap.Record(nil), records...)
	Sort(sorted, ListParams{SortBy: "topicsCount", SortOrder: "desc"})
	if fieldmap.String(sorted[0], "name") != "Cryptography" || fieldmap.String(sorted[2], "name") != "Cloud" {
		t.Errorf("numeric desc sort = %v", sorted)
	}

	Sort(sorted, ListParams{SortBy: "name", SortOrder: "asc"})
	if fieldmap.String(sorted[0], "name") != "Cloud" {
		t.Errorf("text asc sort first = %v", sorted[0]["name"])
	}

	page := Paginate(sorted, ListParams{Page: 2, Limit: 2})
	if len(page) != 1 || fieldmap.String(page[0], "name") != "Networking" {
		t.Errorf("page 2 = %v", page)
	}
	if past := Paginate(sorted, ListParams{Page: 5, Limit: 2}); len(past) != 0 {
		t.Errorf("page past end = %v", past)
	}
	if all := Paginate(sorted, ListParams{Page: 1, Limit: 1, FetchAll: true}); len(all) != 3 {
		t.Errorf("fetch all = %d records", len(all))
	}
}

func TestMetaFrom(t *testing.T) {
	p := ListParams{Page: 2, Limit: 10}

	tests := []struct {
		name     string
		raw      map[string]any
		fallback int64
		want     Meta
	}{
		{"nil synthesizes", nil, 15, Meta{Total: 15, Page: 2, Limit: 10, TotalPages: 2}},
		{"camel", map[string]any{"total": float64(42), "page": float64(3), "limit": float64(20), "totalPages": float64(3)}, 0, Meta{Total: 42, Page: 3, Limit: 20, TotalPages: 3}},
		{"snake", map[string]any{"total_count": float64(31), "current_page": float64(1), "per_page": float64(10)}, 0, Meta{Total: 31, Page: 1, Limit: 10, TotalPages: 4}},
		{"string numbers", map[string]any{"total": "12"}, 0, Meta{Total: 12, Page: 2, Limit: 10, TotalPages: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MetaFrom(tt.raw, p, tt.fallback); got != tt.want {
				t.Errorf("MetaFrom = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMergeStats(t *testing.T) {
	raw := map[string]any{"Published": float64(4), "total": float64(9), "total_enrollments": float64(120)}

	stats := MergeStats(raw, []string{"draft", "published", "archived"}, StatsOptions{})

	checks := map[string]int64{"published": 4, "draft": 0, "archived": 0, "total": 9, "totalEnrollments": 120}
	for k, v := range checks {
		if stats[k] != v {
			t.Errorf("stats[%q] = %v, want %d", k, stats[k], v)
		}
	}
	if _, ok := stats["Published"]; ok {
		t.Error("status keys should be lower-cased")
	}
}
