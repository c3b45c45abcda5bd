package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reNonAlnum        = regexp.MustCompile(`[^0-9A-Za-z]+`)
	reMultiUnderscore = regexp.MustCompile(`_+`)
)

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

func collapseUnderscores(s string) string {
	s = reMultiUnderscore.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// SanitizeRegistrationNumber normalizes a vehicle registration plate to
// uppercase alphanumerics. "ka-01 ab 1234" and "KA01AB1234" compare equal
// after sanitization.
func SanitizeRegistrationNumber(input string) string {
	p := Pipeline{
		strings.TrimSpace,
		func(s string) string { return reNonAlnum.ReplaceAllString(s, "") },
		strings.ToUpper,
	}
	return p.Apply(input)
}

// SanitizeLabel lowercases a free-text label and replaces separator runs
// with single underscores, suitable for enum-ish fields like fuel type.
func SanitizeLabel(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reNonAlnum.ReplaceAllString(s, "_") },
		collapseUnderscores,
	}
	return p.Apply(input)
}

func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}
