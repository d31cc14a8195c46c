package relevance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreEmptyInputs(t *testing.T) {
	assert.Zero(t, Score("", "anything"))
	assert.Zero(t, Score("mars", ""))
	assert.Zero(t, Score("   ", "anything"))
	assert.Zero(t, Score("mars", "   "))
}

func TestScoreNoOverlap(t *testing.T) {
	assert.Zero(t, Score("mars trench", "jupiter storm"))
}

func TestScoreDiscriminates(t *testing.T) {
	relevant := Score("mars trench", "Snow White Trench on Mars")
	irrelevant := Score("mars trench", "A photo of Jupiter")

	assert.Greater(t, relevant, irrelevant)
	assert.GreaterOrEqual(t, relevant, 0.0)
	assert.LessOrEqual(t, relevant, 1.0)
	assert.GreaterOrEqual(t, irrelevant, 0.0)
	assert.LessOrEqual(t, irrelevant, 1.0)
}

func TestScoreCaseInsensitive(t *testing.T) {
	lower := Score("mars trench", "snow white trench on mars")
	upper := Score("MARS TRENCH", "SNOW WHITE TRENCH ON MARS")
	assert.InDelta(t, lower, upper, 1e-12)
}

func TestScorePerfectSelfMatch(t *testing.T) {
	// A query matched verbatim covers all its tokens: coverage bonus is full
	// and the geometric-mean overlap equals the query's own mass.
	assert.InDelta(t, 1.0, Score("mars rover", "mars rover"), 1e-12)
}

func TestScoreRewardsCoverage(t *testing.T) {
	full := Score("mars trench snow", "mars trench snow elsewhere")
	partial := Score("mars trench snow", "mars somewhere else entirely")
	assert.Greater(t, full, partial)
}

func TestScoreBoundedOnRepeatedTerms(t *testing.T) {
	text := strings.Repeat("mars ", 50)
	got := Score("mars", text)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)
}

func TestScoreTFIDFEmptyInputs(t *testing.T) {
	assert.Zero(t, ScoreTFIDF("", "anything"))
	assert.Zero(t, ScoreTFIDF("mars", ""))
}

func TestScoreTFIDFBoundsAndOrdering(t *testing.T) {
	relevant := ScoreTFIDF("mars trench", "Snow White Trench on Mars")
	irrelevant := ScoreTFIDF("mars trench", "A photo of Jupiter")

	assert.GreaterOrEqual(t, relevant, 0.0)
	assert.LessOrEqual(t, relevant, 1.0)
	assert.GreaterOrEqual(t, relevant, irrelevant)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"snow", "white", "trench"}, Tokenize("  Snow   White\tTrench "))
	assert.Empty(t, Tokenize("   "))
}
