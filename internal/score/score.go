// Package score extracts numeric verdict scores from free-text model
// output and reduces them to per-round consensus values.
package score

import (
	"math"
	"regexp"
	"strconv"
)

// DefaultScore is returned when no parseable score is present. Personas
// are instructed to end their response with an explicit score line, so a
// missing score means the response deviated from the format; 50 keeps the
// aggregate neutral instead of dragging it to an extreme.
const DefaultScore = 50

var scorePattern = regexp.MustCompile(`(\d{1,3})\s*/\s*100`)

// ExtractScore finds all NN/100 occurrences and returns the value of the
// last one inside [0,100]. Out-of-range matches are skipped rather than
// clamped so a malformed response is not silently masked. The boolean
// reports whether any valid occurrence exists; without one the value is
// DefaultScore.
func ExtractScore(text string) (int, bool) {
	matches := scorePattern.FindAllStringSubmatch(text, -1)
	result := DefaultScore
	found := false
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 0 || n > 100 {
			continue
		}
		result = n
		found = true
	}
	return result, found
}

// ExtractTrailingScore is ExtractScore for callers that want the default
// applied, such as weakest-argument ranking where every participant
// needs a comparable value.
func ExtractTrailingScore(text string) int {
	n, _ := ExtractScore(text)
	return n
}

// ExtractFinalScore is the single-match variant used for the judge, whose
// output format is constrained to one score line. The boolean reports
// whether a valid score was present.
func ExtractFinalScore(text string) (int, bool) {
	m := scorePattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultScore, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 || n > 100 {
		return DefaultScore, false
	}
	return n, true
}

// Aggregate returns the arithmetic mean of the given scores rounded
// half-up, or DefaultScore for empty input.
func Aggregate(scores []int) int {
	if len(scores) == 0 {
		return DefaultScore
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(scores))))
}
