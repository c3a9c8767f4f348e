// Package redact removes personally identifiable information from raw
// idea text before any prompt construction.
package redact

import "regexp"

// Redactor replaces PII in text. The boolean reports whether anything
// was redacted.
type Redactor interface {
	Redact(text string) (string, bool)
}

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// RegexRedactor is a pattern-based redactor covering the common PII
// shapes seen in submitted ideas: emails, phone numbers, card-like digit
// runs and national-ID-like patterns.
type RegexRedactor struct {
	rules []rule
}

// NewRegexRedactor creates a redactor with the default rule set.
func NewRegexRedactor() *RegexRedactor {
	return &RegexRedactor{rules: []rule{
		{regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`), "[email]"},
		// Card-like runs before phones so 16-digit groups are not split.
		{regexp.MustCompile(`\b(?:\d[ \-]?){13,16}\b`), "[card]"},
		{regexp.MustCompile(`\+?\d{1,3}[ \-.]?\(?\d{2,4}\)?(?:[ \-.]?\d{2,4}){2,4}`), "[phone]"},
		{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[id]"},
	}}
}

// Redact applies every rule in order and reports whether any matched.
func (r *RegexRedactor) Redact(text string) (string, bool) {
	had := false
	out := text
	for _, ru := range r.rules {
		if ru.pattern.MatchString(out) {
			had = true
			out = ru.pattern.ReplaceAllString(out, ru.replacement)
		}
	}
	return out, had
}
