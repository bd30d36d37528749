// Package filter implements the listing relevance checks: keyword matching
// with confusable-character normalization, negative-keyword exclusion, and
// the geographic region check.
package filter

import (
	"strings"
	"unicode"
)

// Sellers mix visually identical Latin and Cyrillic letters to dodge naive
// keyword search; both text and keywords are folded to the Cyrillic form
// before matching.
var confusables = strings.NewReplacer(
	"c", "с",
	"a", "а",
	"o", "о",
	"p", "р",
)

// Matches reports whether a listing is relevant: at least one keyword must be
// present in name+description, and no negative keyword may appear in either
// field. Negative keywords win over positive matches.
func Matches(name, description string, keywords, negativeKeywords []string) bool {
	if !containsKeyword(name, description, keywords) {
		return false
	}
	return !containsNegativeKeyword(name, description, negativeKeywords)
}

func containsKeyword(name, description string, keywords []string) bool {
	text := foldConfusables(normalize(name + " " + description))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, foldConfusables(normalize(kw))) {
			return true
		}
	}
	return false
}

// containsNegativeKeyword checks name and description independently and
// without the confusable fold; negative keywords are expected verbatim.
func containsNegativeKeyword(name, description string, negativeKeywords []string) bool {
	nameNorm := normalize(name)
	descNorm := normalize(description)
	for _, kw := range negativeKeywords {
		if kw == "" {
			continue
		}
		k := normalize(kw)
		if strings.Contains(nameNorm, k) || strings.Contains(descNorm, k) {
			return true
		}
	}
	return false
}

// normalize lowercases the text and strips all whitespace so spacing tricks
// ("i p a d") cannot break substring matching.
func normalize(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func foldConfusables(s string) string {
	return confusables.Replace(s)
}

// CheckGeo reports whether the listing URL belongs to the configured region:
// the region slug must appear as a literal path segment.
func CheckGeo(url, slug string) bool {
	if slug == "" {
		return false
	}
	for _, segment := range strings.Split(url, "/") {
		if segment == slug {
			return true
		}
	}
	return false
}
