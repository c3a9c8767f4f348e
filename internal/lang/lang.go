// Package lang provides best-effort natural-language detection and
// geographic context inference for debate prompt steering.
//
// Detection is a lexical heuristic, not a statistical classifier: script
// ranges decide CJK/Arabic immediately, Spanish inverted punctuation is an
// unambiguous tell, and everything else is marker-word scoring with a
// documented diacritic tie-break. Short or adversarial inputs fall back
// to English.
package lang

import (
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

var spanishPunctuation = regexp.MustCompile(`[¿¡]`)

// Detect returns the inferred language tag for the given text.
//
// Order of evaluation:
//  1. script-range checks (kana, hangul, han, arabic) decide immediately
//  2. Spanish inverted punctuation
//  3. marker-word scoring; highest score wins
//  4. on a tie between the top two scores, diacritic disambiguation
//  5. otherwise English
func Detect(text string) language.Tag {
	for _, rule := range scriptRules {
		if rule.pattern.MatchString(text) {
			return rule.tag
		}
	}

	if spanishPunctuation.MatchString(text) {
		return language.Spanish
	}

	best := language.English
	bestScore, runnerUpScore := 0, 0
	for _, set := range lexicalMarkers {
		score := 0
		for _, p := range set.patterns {
			score += len(p.FindAllStringIndex(text, -1))
		}
		if score > bestScore {
			runnerUpScore = bestScore
			best, bestScore = set.tag, score
		} else if score > runnerUpScore {
			runnerUpScore = score
		}
	}

	if bestScore == 0 {
		return language.English
	}
	if bestScore == runnerUpScore {
		for _, tell := range diacriticTells {
			if tell.pattern.MatchString(text) {
				return tell.tag
			}
		}
		// Still tied: higher-scoring-first rule, which with equal scores
		// means table order already picked the winner.
	}
	return best
}

// InferGeoContext returns a free-text steering instruction derived from
// geographic keywords in the idea, falling back to a language-based guess
// only when no keyword matched. Empty string means no steer.
func InferGeoContext(idea string, tag language.Tag) string {
	lowered := strings.ToLower(idea)
	for _, rule := range geoRules {
		for _, p := range rule.patterns {
			if p.MatchString(lowered) {
				return rule.context
			}
		}
	}
	if ctx, ok := geoLanguageFallback[tag]; ok {
		return ctx
	}
	return ""
}
