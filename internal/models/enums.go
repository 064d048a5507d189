// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models holds the closed value sets shared by the entity
// definitions, the validator, and the dashboard UI. Records themselves are
// owned by the content backend and travel through this service as
// schema-mapped maps (see internal/fieldmap).
package models

// Kind identifies an entity type managed through the admin API.
type Kind string

const (
	KindCategory    Kind = "category"
	KindSubCategory Kind = "subcategory"
	KindTopic       Kind = "topic"
	KindTerms       Kind = "terms"
	KindPrivacy     Kind = "privacy"
	KindHomepage    Kind = "homepage"
	KindFAQ         Kind = "faq"
)

// Category and sub-category status values.
const (
	StatusActive   = "Active"
	StatusDraft    = "Draft"
	StatusInactive = "Inactive"
)

// Legal document (terms, privacy policy) status values.
const (
	DocStatusDraft     = "Draft"
	DocStatusPublished = "Published"
	DocStatusArchived  = "Archived"
)

// Topic status values. Topics use lower-case values on the wire.
const (
	TopicStatusDraft     = "draft"
	TopicStatusPublished = "published"
	TopicStatusArchived  = "archived"
)

// Topic difficulty levels.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
	DifficultyExpert       = "expert"
)

var (
	// CategoryStatuses is the closed status set for categories and sub-categories.
	CategoryStatuses = []string{StatusActive, StatusDraft, StatusInactive}

	// DocumentStatuses is the closed status set for terms and privacy policies.
	DocumentStatuses = []string{DocStatusDraft, DocStatusPublished, DocStatusArchived}

	// TopicStatuses is the closed status set for topics.
	TopicStatuses = []string{TopicStatusDraft, TopicStatusPublished, TopicStatusArchived}

	// Difficulties lists the allowed topic difficulty levels in ascending order.
	Difficulties = []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert}

	// Languages is the ISO 639-1 subset accepted for legal documents.
	Languages = []string{"en", "es", "fr", "de", "it", "pt", "ar", "hi", "zh", "ja", "ko", "ru"}
)

// DefaultLanguage and DefaultVersion are applied to legal documents when
// the backend omits them.
const (
	DefaultLanguage = "en"
	DefaultVersion  = "1.0"
)

// Contains reports whether v is a member of set.
func Contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
