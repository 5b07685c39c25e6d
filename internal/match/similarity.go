// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match compares extracted citations against resolved metadata
// and classifies the result.
// Implements: prd003-matching (R1-R5);
//
//	docs/ARCHITECTURE.md § Matching.
package match

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"
)

// StandardizeTitle lowercases a title, strips punctuation, and collapses
// whitespace so that formatting differences do not register as diffs.
// Common abbreviation dots are folded first so "U.K." matches "UK".
func StandardizeTitle(title string) string {
	if title == "" {
		return ""
	}
	s := strings.ToLower(title)
	s = strings.ReplaceAll(s, "u.k.", "uk")
	s = strings.ReplaceAll(s, "u.s.", "us")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// TokenSortRatio computes a token-order-insensitive similarity between
// two titles, scaled to [0,100]. Both inputs are standardized, their
// tokens sorted, and the sorted strings compared by edit distance. The
// result is 0 when either title is absent.
func TokenSortRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	sa := tokenSort(StandardizeTitle(a))
	sb := tokenSort(StandardizeTitle(b))
	if sa == "" || sb == "" {
		return 0
	}
	if sa == sb {
		return 100
	}

	dist := levenshtein.ComputeDistance(sa, sb)
	maxLen := len([]rune(sa))
	if l := len([]rune(sb)); l > maxLen {
		maxLen = l
	}
	score := 100 - (100*dist+maxLen/2)/maxLen
	if score < 0 {
		score = 0
	}
	return score
}

func tokenSort(s string) string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

// yearInAuthorRe strips a stray "(2020)" left inside an author segment.
var yearInAuthorRe = regexp.MustCompile(`\(\d{4}\)`)

// indexMarkerRe strips a leading bibliography index like "[3] ".
var indexMarkerRe = regexp.MustCompile(`^\[\d+\]\s*`)

// Surname extracts a comparable surname from an author name written in
// any common citation order. The result is lowercase with diacritics
// folded, so "Müller" and "Muller" compare equal.
//
// Heuristics: "Last, First" keeps the part before the comma; "First Last"
// keeps the final token unless it looks like initials ("Smith J." keeps
// "Smith").
func Surname(author string) string {
	if author == "" {
		return ""
	}
	author = yearInAuthorRe.ReplaceAllString(author, "")
	author = indexMarkerRe.ReplaceAllString(strings.TrimSpace(author), "")
	author = strings.TrimSpace(author)
	if author == "" {
		return ""
	}

	if idx := strings.Index(author, ","); idx >= 0 {
		return foldName(author[:idx])
	}

	parts := strings.Fields(author)
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return foldName(parts[0])
	}

	last := strings.ReplaceAll(parts[len(parts)-1], ".", "")
	if len(last) <= 2 && (last == strings.ToUpper(last) || len(last) == 1) {
		// Trailing token is initials ("Smith J."): surname leads.
		return foldName(parts[0])
	}
	return foldName(parts[len(parts)-1])
}

// foldName lowercases a name and removes diacritics and stray
// punctuation, keeping letters only.
func foldName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	decomposed := norm.NFD.String(name)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue // combining mark
		}
		if unicode.IsLetter(r) || unicode.IsSpace(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
