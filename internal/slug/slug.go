// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation for topic titles.
// Generated slugs always match ^[a-z0-9]+(?:-[a-z0-9]+)*$.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps generated slugs.
const MaxLength = 100

// Generate creates a URL-friendly slug from the given string.
// Accents are folded ("Résumé" → "resume"), separators (spaces, hyphens,
// underscores, slashes, dots between words) become single hyphens, and
// anything else is dropped.
// Example: "Intro to Café Networking, Part 2" → "intro-to-cafe-networking-part-2"
func Generate(s string) string {
	folded, _, err := transform.String(accentFolder(), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		case isSeparator(r):
			pending = true
		}
	}

	result := b.String()
	if len(result) > MaxLength {
		result = strings.TrimRight(result[:MaxLength], "-")
	}
	return result
}

// accentFolder strips combining marks after canonical decomposition.
// A transformer is stateful, so each call builds its own.
func accentFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func isSeparator(r rune) bool {
	switch r {
	case '-', '_', '/', '|', '+', '&', '.', ',', ':', ';':
		return true
	}
	return unicode.IsSpace(r)
}
