// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package entity

import (
	"learnadmin/internal/fieldmap"
	"learnadmin/internal/models"
	"learnadmin/internal/validate"
)

const versionMessage = "Version must be in format X.Y (e.g., 1.0)"

// Fields shared by every backend-owned record.
var (
	idField        = fieldmap.Field{Name: "id", Kind: fieldmap.KindID, ReadOnly: true}
	createdAtField = fieldmap.Field{Name: "createdAt", Backend: "created_at", Kind: fieldmap.KindTime, ReadOnly: true}
	updatedAtField = fieldmap.Field{Name: "updatedAt", Backend: "updated_at", Kind: fieldmap.KindTime, ReadOnly: true}
	topicsCount    = fieldmap.Field{Name: "topicsCount", Backend: "topics_count", Aliases: []string{"topic_count", "topicCount"}, Kind: fieldmap.KindInt, ReadOnly: true}
)

// Category is a top-level grouping of topics.
var Category = &Definition{
	Kind:  models.KindCategory,
	Label: "Category",
	Path:  "categories",
	Schema: &fieldmap.Schema{
		Entity:   "Category",
		ListKeys: []string{"items", "categories", "results"},
		Fields: []fieldmap.Field{
			idField,
			{Name: "name", Kind: fieldmap.KindString, RoundTrip: true},
			{Name: "description", Kind: fieldmap.KindString, RoundTrip: true},
			{Name: "status", Kind: fieldmap.KindString, Default: models.StatusDraft, RoundTrip: true},
			{Name: "emoji", Kind: fieldmap.KindString, Aliases: []string{"icon"}},
			topicsCount,
			createdAtField,
			updatedAtField,
		},
	},
	Rules: []validate.Field{
		{Name: "name", Label: "name", Rules: []validate.Rule{validate.Required(), validate.MinLen(3), validate.MaxLen(100)}},
		{Name: "description", Label: "description", Rules: []validate.Rule{validate.Required(), validate.MinLen(10), validate.MaxLen(500)}},
		{Name: "status", Label: "status", Rules: []validate.Rule{validate.OneOf(models.CategoryStatuses...)}},
		{Name: "emoji", Label: "emoji", Rules: []validate.Rule{validate.MaxLen(8)}},
	},
	Statuses: models.CategoryStatuses,
	List: ListPolicy{
		DefaultLimit: 10,
		Stats:        StatsFromFullSet,
		LocalPaging:  true,
		SumTopics:    true,
		SearchFields: []string{"name", "description"},
	},
}

// SubCategory belongs to exactly one Category.
var SubCategory = &Definition{
	Kind:  models.KindSubCategory,
	Label: "Subcategory",
	Path:  "subcategories",
	Schema: &fieldmap.Schema{
		Entity:   "Subcategory",
		ListKeys: []string{"items", "subcategories", "results"},
		Fields: []fieldmap.Field{
			idField,
			{Name: "name", Kind: fieldmap.KindString, RoundTrip: true},
			{Name: "description", Kind: fieldmap.KindString, RoundTrip: true},
			{Name: "categoryId", Backend: "category_id", Kind: fieldmap.KindInt, RoundTrip: true},
			{Name: "categoryName", Backend: "category_name", Kind: fieldmap.KindString, ReadOnly: true},
			{Name: "status", Kind: fieldmap.KindString, Default: models.StatusDraft, RoundTrip: true},
			topicsCount,
			createdAtField,
			updatedAtField,
		},
	},
	Rules: []validate.Field{
		{Name: "name", Label: "name", Rules: []validate.Rule{validate.Required(), validate.MinLen(3), validate.MaxLen(100)}},
		{Name: "description", Label: "description", Rules: []validate.Rule{validate.Required(), validate.MinLen(10), validate.MaxLen(500)}},
		{Name: "categoryId", Label: "category", Rules: []validate.Rule{validate.NonZero().WithMessage("Parent category is required")}},
		{Name: "status", Label: "status", Rules: []validate.Rule{validate.OneOf(models.CategoryStatuses...)}},
	},
	Statuses: models.CategoryStatuses,
	List:     ListPolicy{DefaultLimit: 50, Stats: StatsFromPage, SumTopics: true, Filters: []string{"categoryId"}},
}

var videoSchema = &fieldmap.Schema{
	Entity: "Video",
	Fields: []fieldmap.Field{
		{Name: "id", Kind: fieldmap.KindID},
		{Name: "title", Kind: fieldmap.KindString},
		{Name: "description", Kind: fieldmap.KindString},
		{Name: "videoUrl", Backend: "video_url", Aliases: []string{"url"}, Kind: fieldmap.KindString},
		{Name: "duration", Kind: fieldmap.KindString},
		{Name: "order", Backend: "sort_order", Aliases: []string{"position"}, Kind: fieldmap.KindInt},
		{Name: "isFree", Backend: "is_free", Aliases: []string{"is_preview"}, Kind: fieldmap.KindBool},
	},
}

var moduleSchema = &fieldmap.Schema{
	Entity: "Module",
	Fields: []fieldmap.Field{
		{Name: "id", Kind: fieldmap.KindID},
		{Name: "title", Kind: fieldmap.KindString},
		{Name: "description", Kind: fieldmap.KindString},
		{Name: "order", Backend: "sort_order", Aliases: []string{"position"}, Kind: fieldmap.KindInt},
		{Name: "videos", Kind: fieldmap.KindObjectList, Item: videoSchema},
	},
}

// Topic is a course: ordered modules of ordered videos plus pricing.
var Topic = &Definition{
	Kind:  models.KindTopic,
	Label: "Topic",
	Path:  "topics",
	Schema: &fieldmap.Schema{
		Entity:   "Topic",
		ListKeys: []string{"items", "topics", "results"},
		Fields: []fieldmap.Field{
			idField,
			{Name: "title", Kind: fieldmap.KindString, RoundTrip: true},
			{Name: "slug", Kind: fieldmap.KindString, RoundTrip: true},
			{Name: "description", Kind: fieldmap.KindString, RoundTrip: true},
			{Name: "categoryId", Backend: "category_id", Kind: fieldmap.KindInt, RoundTrip: true},
			{Name: "categoryName", Backend: "category_name", Kind: fieldmap.KindString, ReadOnly: true},
			{Name: "subcategoryId", Backend: "subcategory_id", Aliases: []string{"sub_category_id"}, Kind: fieldmap.KindInt},
			{Name: "subcategoryName", Backend: "subcategory_name", Aliases: []string{"sub_category_name"}, Kind: fieldmap.KindString, ReadOnly: true},
			{Name: "difficulty", Aliases: []string{"level"}, Kind: fieldmap.KindString, Default: models.DifficultyBeginner, RoundTrip: true},
			{Name: "duration", Kind: fieldmap.KindString},
			{Name: "modules", Kind: fieldmap.KindObjectList, Item: moduleSchema},
			{Name: "status", Kind: fieldmap.KindString, Default: models.TopicStatusDraft, RoundTrip: true},
			{Name: "featured", Backend: "is_featured", Kind: fieldmap.KindBool},
			{Name: "isFree", Backend: "is_free", Kind: fieldmap.KindBool},
			{Name: "price", Kind: fieldmap.KindFloat},
			{Name: "discountPrice", Backend: "discount_price", Kind: fieldmap.KindFloat},
			{Name: "currency", Kind: fieldmap.KindString, Default: "USD"},
			{Name: "tags", Kind: fieldmap.KindStringList},
			{Name: "thumbnail", Backend: "thumbnail_url", Aliases: []string{"image_url"}, Kind: fieldmap.KindString},
			{Name: "enrollmentCount", Backend: "enrollment_count", Kind: fieldmap.KindInt, ReadOnly: true},
			createdAtField,
			updatedAtField,
		},
	},
	Rules: []validate.Field{
		{Name: "title", Label: "title", Rules: []validate.Rule{validate.Required(), validate.MinLen(3), validate.MaxLen(200)}},
		{Name: "slug", Label: "slug", Rules: []validate.Rule{validate.MaxLen(200), validate.Pattern(`^[a-z0-9]+(?:-[a-z0-9]+)*$`, "Slug may only contain lowercase letters, digits, and hyphens")}},
		{Name: "description", Label: "description", Rules: []validate.Rule{validate.MaxLen(5000)}},
		{Name: "categoryId", Label: "category", Rules: []validate.Rule{validate.NonZero().WithMessage("Topic category is required")}},
		{Name: "difficulty", Label: "difficulty", Rules: []validate.Rule{validate.OneOf(models.Difficulties...)}},
		{Name: "status", Label: "status", Rules: []validate.Rule{validate.OneOf(models.TopicStatuses...)}},
		{Name: "price", Label: "price", Rules: []validate.Rule{validate.Min(0)}},
		{Name: "discountPrice", Label: "discount price", Rules: []validate.Rule{validate.Min(0)}},
	},
	Statuses: models.TopicStatuses,
	List: ListPolicy{
		DefaultLimit: 10,
		Stats:        StatsFromPage,
		Filters:      []string{"categoryId", "subcategoryId", "difficulty", "featured"},
	},
}

// legalDocument builds the shared definition of terms and privacy policies.
func legalDocument(kind models.Kind, label, path string, listKeys ...string) *Definition {
	return &Definition{
		Kind:  kind,
		Label: label,
		Path:  path,
		Schema: &fieldmap.Schema{
			Entity:   label,
			ListKeys: append([]string{"items", "results"}, listKeys...),
			Fields: []fieldmap.Field{
				idField,
				{Name: "title", Kind: fieldmap.KindString, RoundTrip: true},
				{Name: "content", Kind: fieldmap.KindString, RoundTrip: true},
				{Name: "version", Kind: fieldmap.KindString, Default: models.DefaultVersion, RoundTrip: true},
				{Name: "language", Aliases: []string{"lang"}, Kind: fieldmap.KindString, Default: models.DefaultLanguage, RoundTrip: true},
				{Name: "status", Kind: fieldmap.KindString, Default: models.DocStatusDraft, RoundTrip: true},
				{Name: "effectiveDate", Backend: "effective_date", Kind: fieldmap.KindTime, RoundTrip: true},
				{Name: "createdBy", Backend: "created_by", Kind: fieldmap.KindString, ReadOnly: true},
				{Name: "updatedBy", Backend: "updated_by", Kind: fieldmap.KindString, ReadOnly: true},
				createdAtField,
				updatedAtField,
			},
		},
		Rules: []validate.Field{
			{Name: "title", Label: "title", Rules: []validate.Rule{validate.Required(), validate.MinLen(5), validate.MaxLen(200)}},
			{Name: "content", Label: "content", Rules: []validate.Rule{validate.Required(), validate.MinLen(50)}},
			{Name: "version", Label: "version", Rules: []validate.Rule{validate.Required(), validate.Pattern(`^\d+\.\d+$`, versionMessage)}},
			{Name: "language", Label: "language", Rules: []validate.Rule{validate.OneOf(models.Languages...)}},
			{Name: "status", Label: "status", Rules: []validate.Rule{validate.OneOf(models.DocumentStatuses...)}},
		},
		Statuses: models.DocumentStatuses,
		List:     ListPolicy{DefaultLimit: 10, Stats: StatsFromPage, Filters: []string{"language"}},
	}
}

var (
	// Terms is the terms-and-conditions document.
	Terms = legalDocument(models.KindTerms, "Terms", "terms", "terms")
	// PrivacyPolicy is the privacy policy document.
	PrivacyPolicy = legalDocument(models.KindPrivacy, "Privacy policy", "privacy-policies", "policies", "privacy_policies")
)

// Homepage is the single marketing-content record of the public site.
var Homepage = &Definition{
	Kind:  models.KindHomepage,
	Label: "Homepage",
	Path:  "homepage",
	Schema: &fieldmap.Schema{
		Entity: "Homepage",
		Fields: []fieldmap.Field{
			{Name: "heroTitle", Backend: "hero_title", Kind: fieldmap.KindString},
			{Name: "heroSubtitle", Backend: "hero_subtitle", Kind: fieldmap.KindString},
			{Name: "heroImage", Backend: "hero_image_url", Aliases: []string{"hero_image"}, Kind: fieldmap.KindString},
			{Name: "ctaText", Backend: "cta_text", Kind: fieldmap.KindString},
			{Name: "ctaLink", Backend: "cta_link", Kind: fieldmap.KindString},
			{Name: "aboutTitle", Backend: "about_title", Kind: fieldmap.KindString},
			{Name: "aboutContent", Backend: "about_content", Kind: fieldmap.KindString},
			updatedAtField,
		},
	},
	Rules: []validate.Field{
		{Name: "heroTitle", Label: "hero title", Rules: []validate.Rule{validate.Required(), validate.MinLen(5), validate.MaxLen(200)}},
		{Name: "heroSubtitle", Label: "hero subtitle", Rules: []validate.Rule{validate.MaxLen(500)}},
		{Name: "ctaLink", Label: "call-to-action link", Rules: []validate.Rule{validate.Pattern(`^(/|https?://)\S*$`, "Call-to-action link must be a path or an http(s) URL")}},
	},
}

// FAQ is a question shown on the public help page.
var FAQ = &Definition{
	Kind:  models.KindFAQ,
	Label: "FAQ",
	Path:  "faqs",
	Schema: &fieldmap.Schema{
		Entity:   "FAQ",
		ListKeys: []string{"items", "faqs", "results"},
		Fields: []fieldmap.Field{
			idField,
			{Name: "question", Kind: fieldmap.KindString, RoundTrip: true},
			{Name: "answer", Kind: fieldmap.KindString, RoundTrip: true},
			{Name: "category", Kind: fieldmap.KindString, Default: "General"},
			{Name: "order", Backend: "sort_order", Aliases: []string{"display_order"}, Kind: fieldmap.KindInt},
			{Name: "isActive", Backend: "is_active", Kind: fieldmap.KindBool, Default: true},
			createdAtField,
			updatedAtField,
		},
	},
	Rules: []validate.Field{
		{Name: "question", Label: "question", Rules: []validate.Rule{validate.Required(), validate.MinLen(5), validate.MaxLen(300)}},
		{Name: "answer", Label: "answer", Rules: []validate.Rule{validate.Required(), validate.MinLen(10)}},
	},
	List: ListPolicy{DefaultLimit: 50, Stats: StatsFromPage, Filters: []string{"category"}},
}
