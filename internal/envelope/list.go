// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package envelope

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"learnadmin/internal/fieldmap"
)

// FetchAllLimit is the page size used when a caller asks for every record.
const FetchAllLimit = 1000

// ListParams are the list query parameters accepted by every list route.
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	Status    string
	SortBy    string
	SortOrder string
	FetchAll  bool
}

// ParseListParams reads list parameters from the request query. Invalid
// or non-positive page and limit values fall back to 1 and defaultLimit.
func ParseListParams(r *http.Request, defaultLimit int) ListParams {
	q := r.URL.Query()
	p := ListParams{
		Page:      positive(q.Get("page"), 1),
		Limit:     positive(q.Get("limit"), defaultLimit),
		Search:    strings.TrimSpace(q.Get("search")),
		Status:    strings.TrimSpace(q.Get("status")),
		SortBy:    strings.TrimSpace(q.Get("sortBy")),
		SortOrder: strings.ToLower(strings.TrimSpace(q.Get("sortOrder"))),
		FetchAll:  q.Get("fetchAll") == "true",
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
	if p.FetchAll {
		p.Page = 1
		p.Limit = FetchAllLimit
	}
	return p
}

func positive(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// Query renders the parameters for the backend. sortField translates the
// UI's sort key to the backend's column name.
func (p ListParams) Query(sortField func(string) string) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("search", p.Search)
	q.Set("status", p.Status)
	if p.SortBy != "" {
		sortBy := p.SortBy
		if sortField != nil {
			sortBy = sortField(sortBy)
		}
		q.Set("sort_by", sortBy)
		q.Set("sort_order", p.SortOrder)
	}
	return q
}

// SynthesizeMeta builds page metadata for a list of total records.
// With FetchAll the whole set is a single page.
func SynthesizeMeta(p ListParams, total int64) Meta {
	if p.FetchAll {
		limit := int(total)
		if limit < 1 {
			limit = p.Limit
		}
		return Meta{Total: total, Page: 1, Limit: limit, TotalPages: 1}
	}
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Meta{Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}
}

// StatsOptions selects the optional aggregates of SynthesizeStats.
type StatsOptions struct {
	// SumTopics adds totalTopics, the sum of every record's topicsCount.
	SumTopics bool
}

// SynthesizeStats counts records per status. Every member of statuses
// gets a lower-cased key, zero when absent, so the dashboard never sees a
// missing counter.
func SynthesizeStats(records []fieldmap.Record, statuses []string, opts StatsOptions) map[string]any {
	stats := map[string]any{"total": int64(len(records))}
	counts := make(map[string]int64, len(statuses))
	for _, s := range statuses {
		counts[strings.ToLower(s)] = 0
	}
	var topics int64
	for _, rec := range records {
		key := strings.ToLower(fieldmap.String(rec, "status"))
		if _, known := counts[key]; known {
			counts[key]++
		}
		if opts.SumTopics {
			topics += fieldmap.Int(rec, "topicsCount")
		}
	}
	for k, v := range counts {
		stats[k] = v
	}
	if opts.SumTopics {
		stats["totalTopics"] = topics
	}
	return stats
}

// Filter keeps records matching the search term (case-insensitive, over
// the given text fields) and the exact status, when set.
func Filter(records []fieldmap.Record, p ListParams, searchFields ...string) []fieldmap.Record {
	term := strings.ToLower(p.Search)
	out := make([]fieldmap.Record, 0, len(records))
	for _, rec := range records {
		if p.Status != "" && !strings.EqualFold(fieldmap.String(rec, "status"), p.Status) {
			continue
		}
		if term != "" && !matches(rec, term, searchFields) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matches(rec fieldmap.Record, term string, fields []string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(fieldmap.String(rec, f)), term) {
			return true
		}
	}
	return false
}

// Sort orders records in place by SortBy. Numbers compare numerically,
// everything else as case-insensitive text. Without SortBy the order is
// left as received.
func Sort(records []fieldmap.Record, p ListParams) {
	if p.SortBy == "" {
		return
	}
	desc := p.SortOrder == "desc"
	sort.SliceStable(records, func(i, j int) bool {
		c := compare(records[i][p.SortBy], records[j][p.SortBy])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b any) int {
	an, aok := numeric(a)
	bn, bok := numeric(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}
	as := strings.ToLower(toText(a))
	bs := strings.ToLower(toText(b))
	return strings.Compare(as, bs)
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	return fmt.Sprint(v)
}

// Paginate returns the slice of records on the requested page.
func Paginate(records []fieldmap.Record, p ListParams) []fieldmap.Record {
	if p.FetchAll {
		return records
	}
	start := (p.Page - 1) * p.Limit
	if start >= len(records) {
		return []fieldmap.Record{}
	}
	end := start + p.Limit
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// MetaFrom reads page metadata the backend supplied, accepting camelCase
// and snake_case keys. Missing values come from p and fallbackTotal, and
// totalPages is derived when the backend leaves it out.
func MetaFrom(raw map[string]any, p ListParams, fallbackTotal int64) Meta {
	if raw == nil {
		return SynthesizeMeta(p, fallbackTotal)
	}
	meta := Meta{
		Total:      int64(firstNumber(raw, float64(fallbackTotal), "total", "total_count", "totalCount", "count")),
		Page:       int(firstNumber(raw, float64(p.Page), "page", "current_page", "currentPage")),
		Limit:      int(firstNumber(raw, float64(p.Limit), "limit", "per_page", "perPage", "page_size")),
		TotalPages: int(firstNumber(raw, -1, "totalPages", "total_pages", "pages")),
	}
	if meta.TotalPages < 0 {
		meta.TotalPages = SynthesizeMeta(ListParams{Page: meta.Page, Limit: meta.Limit}, meta.Total).TotalPages
	}
	return meta
}

func firstNumber(raw map[string]any, fallback float64, keys ...string) float64 {
	for _, k := range keys {
		if n, ok := numeric(raw[k]); ok {
			return n
		}
		if s, ok := raw[k].(string); ok {
			if n, err := strconv.ParseFloat(s, 64); err == nil {
				return n
			}
		}
	}
	return fallback
}

// MergeStats normalizes backend-supplied stats onto the zero-filled shape
// of SynthesizeStats: status keys are lower-cased and snake_case counters
// become camelCase.
func MergeStats(raw map[string]any, statuses []string, opts StatsOptions) map[string]any {
	stats := SynthesizeStats(nil, statuses, opts)
	known := make(map[string]string, len(statuses))
	for _, s := range statuses {
		known[strings.ToLower(s)] = strings.ToLower(s)
	}
	for k, v := range raw {
		key := strings.ToLower(k)
		if _, ok := known[key]; !ok {
			key = camel(k)
		}
		if n, ok := numeric(v); ok && n == float64(int64(n)) {
			stats[key] = int64(n)
			continue
		}
		stats[key] = v
	}
	return stats
}

// camel converts snake_case to camelCase ("total_topics" → "totalTopics").
func camel(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
