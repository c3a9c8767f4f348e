package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTrailingScore_LastOccurrenceWins(t *testing.T) {
	text := "Adoption could reach 30/100 markets, but overall Verdict: 72/100"
	assert.Equal(t, 72, ExtractTrailingScore(text))
}

func TestExtractTrailingScore_IncidentalPercentagesIgnored(t *testing.T) {
	text := "some context 30% and then Verdict: 72/100"
	assert.Equal(t, 72, ExtractTrailingScore(text))
}

func TestExtractTrailingScore_NoScoreReturnsDefault(t *testing.T) {
	assert.Equal(t, DefaultScore, ExtractTrailingScore("no score anywhere"))
	assert.Equal(t, DefaultScore, ExtractTrailingScore(""))
}

func TestExtractTrailingScore_OutOfRangeSkipped(t *testing.T) {
	// 250/100 is malformed and must not be clamped; the earlier valid
	// occurrence stays the answer.
	text := "Score: 40/100 ... revised Score: 250/100"
	assert.Equal(t, 40, ExtractTrailingScore(text))
}

func TestExtractTrailingScore_OnlyOutOfRangeReturnsDefault(t *testing.T) {
	assert.Equal(t, DefaultScore, ExtractTrailingScore("Score: 999/100"))
}

func TestExtractTrailingScore_Boundaries(t *testing.T) {
	assert.Equal(t, 0, ExtractTrailingScore("Verdict: 0/100"))
	assert.Equal(t, 100, ExtractTrailingScore("Verdict: 100/100"))
}

func TestExtractTrailingScore_WhitespaceAroundSlash(t *testing.T) {
	assert.Equal(t, 64, ExtractTrailingScore("Final call: 64 / 100"))
}

func TestExtractScore_FoundSignal(t *testing.T) {
	n, ok := ExtractScore("Verdict: 72/100")
	assert.True(t, ok)
	assert.Equal(t, 72, n)

	n, ok = ExtractScore("[Error: nebius-eu: API error: 503 - overloaded]")
	assert.False(t, ok)
	assert.Equal(t, DefaultScore, n)

	n, ok = ExtractScore("Score: 999/100")
	assert.False(t, ok)
	assert.Equal(t, DefaultScore, n)
}

func TestExtractFinalScore(t *testing.T) {
	n, ok := ExtractFinalScore("Score: 81/100\nSummary: fine")
	assert.True(t, ok)
	assert.Equal(t, 81, n)

	n, ok = ExtractFinalScore("the judge said nothing numeric")
	assert.False(t, ok)
	assert.Equal(t, DefaultScore, n)

	n, ok = ExtractFinalScore("Score: 400/100")
	assert.False(t, ok)
	assert.Equal(t, DefaultScore, n)
}

func TestAggregate(t *testing.T) {
	assert.Equal(t, DefaultScore, Aggregate(nil))
	assert.Equal(t, DefaultScore, Aggregate([]int{}))
	assert.Equal(t, 60, Aggregate([]int{80, 40, 60}))
	assert.Equal(t, 50, Aggregate([]int{50}))
	// Half-up rounding: (33+34)/2 = 33.5 -> 34
	assert.Equal(t, 34, Aggregate([]int{33, 34}))
}
