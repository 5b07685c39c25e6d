// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse extracts structured bibliographic fields from free-text
// citations. The extractor is style-agnostic: instead of one grammar per
// citation style (APA, Chicago, Harvard, IEEE, ACM, MLA) it applies
// ordered, confidence-ranked pattern detection (DOI first, then year,
// authors, title, and finally venue/volume/issue/pages) so mixed or
// malformed input degrades to missing fields rather than failing.
// Implements: prd001-parsing (R1-R5);
//
//	docs/ARCHITECTURE.md § Parsing.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

// minPlausibleYear bounds the publication year scan to
// [1800, current year + 1].
const minPlausibleYear = 1800

// indexMarkerRe strips a leading bibliography index like "[3] ", "(3) ", "{3}.".
var indexMarkerRe = regexp.MustCompile(`^[\[({]?\d+[\])}]\.?\s*`)

// doiRe matches a DOI-shaped token, optionally preceded by a resolver
// URL or a literal "doi:" marker.
var doiRe = regexp.MustCompile(`(?i)(?:https?://)?(?:(?:dx\.)?doi\.org/)?(?:doi:\s*)?(10\.\d{4,9}/[^\s"'<>\]]+)`)

// Year detection, highest confidence first.
var (
	parenYearRe   = regexp.MustCompile(`\((\d{4})[a-z]?\)`)
	chicagoYearRe = regexp.MustCompile(`\.\s+(\d{4})\.\s+[“”"'A-Z]`)
	monthYearRe   = regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?\s+(\d{4})`)
	trailYearRe   = regexp.MustCompile(`(?i),\s*(\d{4})\.?\s*(?:doi|$)`)
	looseYearRe   = regexp.MustCompile(`[,\s](\d{4})[;,.]`)
)

// Citation style signals.
var (
	ieeeStyleRe  = regexp.MustCompile(`(?i)(?:vol\.\s*\d+.*?no\.\s*\d+|IEEE\s+\w+|\d+\(\d+\):\d+)`)
	vancouverRe  = regexp.MustCompile(`;\d+\(\d+\):`)
	anyQuoteRe   = regexp.MustCompile(`[“”‘’"']`)
	quoteCharsRe = regexp.MustCompile(`[“”‘’"']+`)
)

// Quoted-title patterns, tried in order.
var quotedTitleRes = []*regexp.Regexp{
	regexp.MustCompile(`“([^”]+)”`),
	regexp.MustCompile(`‘([^’]+)’`),
	regexp.MustCompile(`"([^"]+)"`),
	regexp.MustCompile(`'([^']+)'`),
}

// IEEE titles without quotes: the segment after the final author,
// delimited by the venue introduction.
var (
	ieeeLastAuthorRe = regexp.MustCompile(`\band\s+[A-Z][\w\s.]+?\.\s+`)
	ieeeTitleRes     = []*regexp.Regexp{
		regexp.MustCompile(`^([A-Z][^.]+?)\.\s+[A-Z][\w\s&]+?,?\s*vol\.`),
		regexp.MustCompile(`^([A-Z][^.]+?)\.\s+[A-Z][\w\s&]+?,\s*\d+\(`),
		regexp.MustCompile(`^([A-Z][^.]{20,}?)\.\s+IEEE`),
	}
	ieeeFallbackTitleRes = []*regexp.Regexp{
		regexp.MustCompile(`\.\s+([A-Z][a-z][\w\s:,\-]{20,}?)\.\s+IEEE`),
		regexp.MustCompile(`\.\s+([A-Z][a-z][\w\s:,\-]{20,}?)\.\s+[A-Z][\w\s&]+?,\s*\d+\(`),
		regexp.MustCompile(`\.\s+([A-Z][a-z][\w\s:,\-]{20,}?)\.\s+[A-Z][\w\s&]+?,?\s*vol\.`),
	}
	// nameLeadRe rejects fallback captures that still start with an
	// author name ("J Smith ...").
	nameLeadRe = regexp.MustCompile(`\b[A-Z]{1,3}\s+[A-Z][a-z]+\b`)
)

// APA/Harvard titles: the sentence after the parenthetical year.
var parenTitleRes = []*regexp.Regexp{
	regexp.MustCompile(`\(\d{4}\)\.\s*(.+?)[.?!]\s+[A-Z]`),
	regexp.MustCompile(`\(\d{4}\)\s+(.+?)[.?!]\s+[A-Z]`),
	regexp.MustCompile(`\(\d{4}\)\s*\.?\s*(.+?)[.?!]\s*(?:In\s+)?(?:Proceedings?|Conference)`),
}

// vancouverTitleRe: the sentence between the author block and the
// journal-year segment of a Vancouver citation.
var vancouverTitleRe = regexp.MustCompile(`\.\s+([^.]+?)\.\s+[^.]+\.\s*\d{4};`)

// Venue patterns.
var (
	// The comma before the venue usually sits inside the closing quote,
	// so the venue segment may start the after-quote text directly.
	ieeeQuotedVenueRe = regexp.MustCompile(`(?i)^[,\s]*([^,]+?),\s*(?:vol\.|\d+\()`)
	ieeeVenueRes      = []*regexp.Regexp{
		regexp.MustCompile(`\.\s+([A-Z][A-Za-z\s&]+?),\s*vol\.`),
		regexp.MustCompile(`\.\s+([A-Z][A-Za-z\s&]+?),\s*\d+\(`),
	}
	vancouverVenueRe = regexp.MustCompile(`\.([^.]+)\.\s*\d{4};`)
	defaultVenueRes  = []*regexp.Regexp{
		regexp.MustCompile(`[.?!]\s*[“”"']?([A-Za-z\s&]+?)[“”"']?\s*,?\s*\d+\s*\(`),
		regexp.MustCompile(`[.?!]\s+([A-Z][A-Za-z\s&]+?)\s+\d+\s*\(`),
	}
)

// Volume/issue/pages patterns.
var (
	volRe  = regexp.MustCompile(`(?i)vol\.\s*(\d+)`)
	numRe  = regexp.MustCompile(`(?i)no\.\s*(\d+)`)
	ppRe   = regexp.MustCompile(`(?i)pp\.\s*([\d–\-—]+)`)
	vipRes = []struct {
		re       *regexp.Regexp
		hasIssue bool
	}{
		{regexp.MustCompile(`(\d+)\s*\((\d+)\):\s*([\d–\-—]+)`), true},
		{regexp.MustCompile(`,\s*(\d+)\s*\((\d+)\),\s*([\d–\-—]+)`), true},
		{regexp.MustCompile(`\d{4};(\d+)\((\d+)\):([\d–\-—]+)`), true},
		{regexp.MustCompile(`\s(\d+)\s*\((\d+)\):\s*([\d–\-—]+)`), true},
		{regexp.MustCompile(`\s(\d+):\s*([\d–\-—]+)`), false},
	}
)

// doiTrailingPunct is punctuation a DOI match may drag along from the
// surrounding sentence.
const doiTrailingPunct = ".,;)]"

// NormalizeDOI lowercases a DOI and strips any resolver URL prefix,
// "doi:" marker, and trailing sentence punctuation. Returns "" for
// input that carries no DOI.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return ""
	}
	m := doiRe.FindStringSubmatch(doi)
	if m == nil {
		return ""
	}
	return strings.ToLower(strings.TrimRight(m[1], doiTrailingPunct))
}

// dashReplacer folds en dashes, em dashes, and minus signs to an ASCII hyphen.
var dashReplacer = strings.NewReplacer("–", "-", "—", "-", "−", "-")

// pageSpaceRe collapses whitespace around the range separator.
var pageSpaceRe = regexp.MustCompile(`\s*-\s*`)

// NormalizePages normalizes a page range to "start-end" with a single
// ASCII hyphen, or returns "" when the input holds no page data.
func NormalizePages(pages string) string {
	pages = strings.TrimSpace(dashReplacer.Replace(pages))
	if pages == "" || pages == "-" {
		return ""
	}
	return pageSpaceRe.ReplaceAllString(pages, "-")
}

// Parse extracts a structured Reference from one raw citation string.
// It is pure and never fails: a field whose pattern is not found is left
// at its zero value, and arbitrary garbage input yields a Reference with
// only Raw set.
func Parse(raw string) types.Reference {
	ref := types.Reference{Raw: raw}

	text := indexMarkerRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if text == "" {
		return ref
	}

	ref.DOI = extractDOI(text)

	year, yearInParens := extractYear(text)
	ref.Year = year

	isIEEE := ieeeStyleRe.MatchString(text)
	isVancouver := vancouverRe.MatchString(text)
	hasQuotes := anyQuoteRe.MatchString(text)

	ref.Title = extractTitle(text, year, yearInParens, isIEEE, isVancouver, hasQuotes)
	ref.Venue = extractVenue(text, isIEEE, isVancouver, hasQuotes)
	ref.Volume, ref.Issue, ref.Pages = extractVolumeIssuePages(text)

	seg := authorSegment(text, year, yearInParens, ref.Title)
	ref.Authors = splitAuthors(seg)
	ref.FirstAuthor = firstAuthor(text, year, yearInParens, ref.Authors)

	return ref
}

func extractDOI(text string) string {
	m := doiRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ToLower(strings.TrimRight(m[1], doiTrailingPunct))
}

// extractYear scans for a plausible 4-digit publication year. A year in
// parentheses (APA/Harvard convention) wins over any bare token; among
// several parenthetical years the first plausible one is taken.
func extractYear(text string) (year int, inParens bool) {
	maxYear := time.Now().Year() + 1

	for _, m := range parenYearRe.FindAllStringSubmatch(text, -1) {
		if y := plausibleYear(m[1], maxYear); y != 0 {
			return y, true
		}
	}

	for _, re := range []*regexp.Regexp{chicagoYearRe, monthYearRe, trailYearRe, looseYearRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if y := plausibleYear(m[1], maxYear); y != 0 {
				return y, false
			}
		}
	}
	return 0, false
}

func plausibleYear(token string, maxYear int) int {
	y, err := strconv.Atoi(token)
	if err != nil || y < minPlausibleYear || y > maxYear {
		return 0
	}
	return y
}

func extractTitle(text string, year int, yearInParens, isIEEE, isVancouver, hasQuotes bool) string {
	// Quoted span is the strongest title signal.
	if hasQuotes {
		for _, re := range quotedTitleRes {
			if m := re.FindStringSubmatch(text); m != nil {
				return cleanTitle(m[1])
			}
		}
	}

	// IEEE without quotes: title sits between the last author and the venue.
	if isIEEE {
		if loc := ieeeLastAuthorRe.FindStringIndex(text); loc != nil {
			after := text[loc[1]:]
			for _, re := range ieeeTitleRes {
				if m := re.FindStringSubmatch(after); m != nil {
					return cleanTitle(m[1])
				}
			}
		}
		for _, re := range ieeeFallbackTitleRes {
			if m := re.FindStringSubmatch(text); m != nil {
				candidate := strings.TrimSpace(m[1])
				head := candidate
				if len(head) > 40 {
					head = head[:40]
				}
				if !nameLeadRe.MatchString(head) {
					return cleanTitle(candidate)
				}
			}
		}
	}

	// Chicago/MLA: bare year followed by the title sentence.
	if year != 0 && !yearInParens {
		re := regexp.MustCompile(fmt.Sprintf(`\.\s+%d\.\s+[“”"']?(.+?)[“”"']?[.?!]\s+[A-Z]`, year))
		if m := re.FindStringSubmatch(text); m != nil {
			return cleanTitle(m[1])
		}
		re = regexp.MustCompile(fmt.Sprintf(`\.\s+%d\.\s+(.+?)\.\s+[A-Z][A-Za-z\s]+\s+\d+`, year))
		if m := re.FindStringSubmatch(text); m != nil {
			return cleanTitle(m[1])
		}
	}

	// APA/Harvard: sentence after the parenthetical year.
	if yearInParens {
		for _, re := range parenTitleRes {
			if m := re.FindStringSubmatch(text); m != nil {
				if candidate := strings.TrimSpace(m[1]); len(candidate) > 10 {
					return cleanTitle(candidate)
				}
			}
		}
	}

	if isVancouver {
		if m := vancouverTitleRe.FindStringSubmatch(text); m != nil {
			return cleanTitle(m[1])
		}
	}

	return ""
}

func cleanTitle(title string) string {
	title = strings.TrimSpace(quoteCharsRe.ReplaceAllString(title, ""))
	return strings.TrimRight(title, ",;")
}

func extractVenue(text string, isIEEE, isVancouver, hasQuotes bool) string {
	switch {
	case isIEEE && hasQuotes:
		// The venue follows the closing quote of the title.
		parts := anyQuoteRe.Split(text, -1)
		afterQuote := text
		if len(parts) > 1 {
			afterQuote = parts[len(parts)-1]
		}
		if m := ieeeQuotedVenueRe.FindStringSubmatch(afterQuote); m != nil {
			return strings.TrimSpace(m[1])
		}
	case isIEEE:
		for _, re := range ieeeVenueRes {
			if m := re.FindStringSubmatch(text); m != nil {
				if v := strings.TrimSpace(m[1]); len(v) < 100 {
					return v
				}
			}
		}
	case isVancouver:
		if m := vancouverVenueRe.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	default:
		for _, re := range defaultVenueRes {
			if m := re.FindStringSubmatch(text); m != nil {
				return strings.TrimSpace(m[1])
			}
		}
	}
	return ""
}

func extractVolumeIssuePages(text string) (volume, issue, pages string) {
	if strings.Contains(strings.ToLower(text), "vol.") {
		if m := volRe.FindStringSubmatch(text); m != nil {
			volume = m[1]
		}
		if m := numRe.FindStringSubmatch(text); m != nil {
			issue = m[1]
		}
		if m := ppRe.FindStringSubmatch(text); m != nil {
			pages = NormalizePages(m[1])
		}
	}

	if pages == "" {
		for _, p := range vipRes {
			m := p.re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if p.hasIssue {
				volume, issue, pages = m[1], m[2], NormalizePages(m[3])
			} else {
				volume, issue, pages = m[1], "", NormalizePages(m[2])
			}
			break
		}
	}

	if pages == "" {
		if m := ppRe.FindStringSubmatch(text); m != nil {
			pages = NormalizePages(m[1])
		}
	}
	return volume, issue, pages
}

// authorSegment returns the citation text preceding the year token, or
// preceding the title when no year was found. An empty return means no
// author boundary could be located.
func authorSegment(text string, year int, yearInParens bool, title string) string {
	if year != 0 && yearInParens {
		if idx := strings.Index(text, "("+strconv.Itoa(year)); idx > 0 {
			return strings.TrimSpace(text[:idx])
		}
	}
	if year != 0 {
		re := regexp.MustCompile(fmt.Sprintf(`\.\s+%d\.`, year))
		if loc := re.FindStringIndex(text); loc != nil && loc[0] > 0 {
			return strings.TrimSpace(text[:loc[0]])
		}
	}
	if title != "" {
		if idx := strings.Index(text, title); idx > 0 {
			return strings.TrimSpace(text[:idx])
		}
	}
	return ""
}

// Author list splitting.
var (
	// surnameFirstRe matches "Family, I. N." entries (APA/Harvard/Chicago).
	surnameFirstRe = regexp.MustCompile(`([\p{Lu}][\p{L}'’\-]+),\s*((?:[\p{Lu}]\.?\s*)+)`)

	// authorSepRe splits on semicolons, ampersands, and the word "and".
	authorSepRe = regexp.MustCompile(`\s*(?:;|&|\band\b)\s*`)
)

// splitAuthors breaks an author segment into an ordered list of author
// entries. Surname-first entries ("Cortes, C., & Vapnik, V.") are found
// directly; otherwise the segment is split on semicolons, ampersands,
// "and", and commas.
func splitAuthors(seg string) []string {
	seg = strings.TrimRight(strings.TrimSpace(seg), ".,;")
	if seg == "" {
		return nil
	}

	if ms := surnameFirstRe.FindAllStringSubmatch(seg, -1); len(ms) > 0 {
		authors := make([]string, 0, len(ms))
		for _, m := range ms {
			authors = append(authors, strings.TrimSpace(m[1]+", "+strings.TrimSpace(m[2])))
		}
		return authors
	}

	var authors []string
	for _, chunk := range authorSepRe.Split(seg, -1) {
		for _, name := range strings.Split(chunk, ",") {
			name = strings.TrimSpace(name)
			if hasLetter(name) {
				authors = append(authors, name)
			}
		}
	}
	return authors
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// firstAuthor recovers the leading author entry. A comma is the
// strongest boundary signal; otherwise the text before the year token
// is used, matching the segment heuristics above.
func firstAuthor(text string, year int, yearInParens bool, authors []string) string {
	if len(authors) > 0 {
		return authors[0]
	}
	if idx := strings.Index(text, ","); idx > 0 {
		return cleanAuthor(text[:idx])
	}
	if year != 0 {
		marker := "(" + strconv.Itoa(year) + ")"
		if !yearInParens {
			marker = ". " + strconv.Itoa(year) + "."
		}
		if idx := strings.Index(text, marker); idx > 0 {
			return cleanAuthor(text[:idx])
		}
	}
	if idx := strings.Index(text, "."); idx > 0 {
		return cleanAuthor(text[:idx])
	}
	if fields := strings.Fields(text); len(fields) > 0 {
		return cleanAuthor(fields[0])
	}
	return ""
}

var yearMarkerRe = regexp.MustCompile(`\(\d{4}\)|\.\s*\d{4}\.`)

func cleanAuthor(s string) string {
	s = indexMarkerRe.ReplaceAllString(strings.TrimSpace(s), "")
	s = yearMarkerRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
