package sources

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"revpulse/pkg/contracts/domain"
)

type alias struct {
	needle   string
	location string
}

// AliasResolver maps file names onto canonical location names using
// case-insensitive substring aliases.
type AliasResolver struct {
	aliases []alias
}

// NewAliasResolver builds a resolver from alias → location pairs. Longer
// aliases are tried first; equal lengths are tried alphabetically.
func NewAliasResolver(aliases map[string]string) *AliasResolver {
	r := &AliasResolver{aliases: make([]alias, 0, len(aliases))}
	for needle, location := range aliases {
		needle = strings.ToLower(strings.TrimSpace(needle))
		if needle == "" {
			continue
		}
		r.aliases = append(r.aliases, alias{needle: needle, location: strings.TrimSpace(location)})
	}
	sort.Slice(r.aliases, func(i, j int) bool {
		a, b := r.aliases[i], r.aliases[j]
		if len(a.needle) != len(b.needle) {
			return len(a.needle) > len(b.needle)
		}
		return a.needle < b.needle
	})
	return r
}

// Resolve returns the location whose alias occurs in name, or "" when none does.
func (r *AliasResolver) Resolve(name string) string {
	if r == nil {
		return ""
	}
	lower := strings.ToLower(filepath.Base(name))
	for _, a := range r.aliases {
		if strings.Contains(lower, a.needle) {
			return a.location
		}
	}
	return ""
}

// PeriodResolver maps tokens found in file names onto period labels. A
// token matches only as a whole word, so "jun" matches "berko.jun.25.csv"
// but not "berkojun.csv" or "june.csv".
type PeriodResolver struct {
	pattern *regexp.Regexp
	periods map[string]string
}

var defaultPeriods = NewPeriodResolver(nil)

// NewPeriodResolver builds a resolver from token → period pairs. A nil or
// empty map uses domain.ReportingMonthAbbreviations.
func NewPeriodResolver(tokens map[string]string) *PeriodResolver {
	if len(tokens) == 0 {
		abbrs := domain.ReportingMonthAbbreviations()
		tokens = make(map[string]string, len(abbrs))
		for _, abbr := range abbrs {
			tokens[abbr], _ = domain.MonthFromAbbreviation(abbr)
		}
	}

	r := &PeriodResolver{periods: make(map[string]string, len(tokens))}
	alternatives := make([]string, 0, len(tokens))
	for token, period := range tokens {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		r.periods[token] = strings.TrimSpace(period)
		alternatives = append(alternatives, regexp.QuoteMeta(token))
	}
	if len(alternatives) == 0 {
		return r
	}
	// Longest first so that overlapping tokens prefer the fuller match.
	sort.Slice(alternatives, func(i, j int) bool {
		if len(alternatives[i]) != len(alternatives[j]) {
			return len(alternatives[i]) > len(alternatives[j])
		}
		return alternatives[i] < alternatives[j]
	})
	r.pattern = regexp.MustCompile(`(?i)\b(` + strings.Join(alternatives, "|") + `)\b`)
	return r
}

// Resolve returns the period for the first token in the file name, or ""
// when there is none.
func (r *PeriodResolver) Resolve(name string) string {
	if r == nil || r.pattern == nil {
		return ""
	}
	match := r.pattern.FindStringSubmatch(filepath.Base(name))
	if match == nil {
		return ""
	}
	return r.periods[strings.ToLower(match[1])]
}

// PeriodFromFilename resolves name against the reporting window tokens
func PeriodFromFilename(name string) string {
	return defaultPeriods.Resolve(name)
}
