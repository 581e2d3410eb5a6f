package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkravets/reposcout/internal/domain/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	engine := NewEngine()
	engine.now = func() time.Time { return testNow }
	return engine
}

func Test_Score_WhenAllComponentsMatch_ShouldScoreHigh(t *testing.T) {

	engine := newTestEngine()
	preference := models.Preference{
		Keywords:  "machine-learning",
		Languages: "Python",
	}
	candidate := models.RepositoryCandidate{
		FullName:    "example/machine-learning-toolkit",
		Description: "a machine-learning toolkit",
		Language:    "Python",
		Stars:       50_000,
		Topics:      []string{"machine-learning"},
		UpdatedAt:   testNow.Add(-24 * time.Hour),
	}

	scored := engine.Score(candidate, preference)

	assert.Equal(t, []string{"machine-learning"}, scored.Reason.MatchedKeywords)
	assert.True(t, scored.Reason.LanguageMatch)
	assert.Equal(t, 1.0, scored.Reason.TopicBonus)
	assert.Greater(t, scored.Score, 0.8)
	assert.LessOrEqual(t, scored.Score, 1.0)
}

func Test_Score_MultiWordKeywordMatchesAbbreviatedTopic(t *testing.T) {

	engine := newTestEngine()
	preference := models.Preference{
		Keywords:           "machine learning",
		Languages:          "Python",
		MinStars:           100,
		MaxRecommendations: 1,
	}
	candidate := models.RepositoryCandidate{
		FullName:    "x/ml-lib",
		Description: "machine learning library",
		Language:    "Python",
		Stars:       5000,
		Topics:      []string{"ml"},
		UpdatedAt:   testNow.Add(-24 * time.Hour),
	}

	scored := engine.Score(candidate, preference)

	assert.Equal(t, []string{"machine learning"}, scored.Reason.MatchedKeywords)
	assert.True(t, scored.Reason.LanguageMatch)
	assert.Equal(t, 1.0, scored.Reason.TopicBonus)
	assert.Greater(t, scored.Reason.StarScore, 0.0)

	expected := 0.40 + 0.25 + 0.05 +
		0.20*scored.Reason.StarScore + 0.10*scored.Reason.FreshnessScore
	assert.InDelta(t, expected, scored.Score, 1e-9)
}

func Test_Score_TopicInitialsSeparators(t *testing.T) {

	engine := newTestEngine()

	matched := engine.Score(models.RepositoryCandidate{
		FullName: "a/tool", Topics: []string{"nlp"},
	}, models.Preference{Keywords: "natural-language processing"})
	assert.Equal(t, 1.0, matched.Reason.TopicBonus)

	// single-word keywords have no abbreviation to match against
	unmatched := engine.Score(models.RepositoryCandidate{
		FullName: "a/tool", Topics: []string{"dl"},
	}, models.Preference{Keywords: "kubernetes"})
	assert.Equal(t, 0.0, unmatched.Reason.TopicBonus)
}

func Test_Score_IsDeterministic(t *testing.T) {

	engine := newTestEngine()
	preference := models.Preference{Keywords: "cli,terminal", Languages: "Go,Rust"}
	candidate := models.RepositoryCandidate{
		FullName:    "example/termkit",
		Description: "build terminal user interfaces",
		Language:    "Go",
		Stars:       1200,
		UpdatedAt:   testNow.Add(-30 * 24 * time.Hour),
	}

	first := engine.Score(candidate, preference)
	second := engine.Score(candidate, preference)

	assert.Equal(t, first, second)
}

func Test_Score_WhenKeywordsPartiallyMatch_ShouldScaleByFraction(t *testing.T) {

	engine := newTestEngine()
	preference := models.Preference{Keywords: "grpc,protobuf,graphql,rest"}
	candidate := models.RepositoryCandidate{
		FullName:    "example/grpc-gateway",
		Description: "serves a rest api from protobuf definitions",
	}

	scored := engine.Score(candidate, preference)

	assert.ElementsMatch(t, []string{"grpc", "protobuf", "rest"}, scored.Reason.MatchedKeywords)
}

func Test_Score_WhenNoKeywordsConfigured_KeywordComponentIsZero(t *testing.T) {

	engine := newTestEngine()
	candidate := models.RepositoryCandidate{
		FullName: "example/anything",
		Language: "Go",
	}

	scored := engine.Score(candidate, models.Preference{})

	assert.Empty(t, scored.Reason.MatchedKeywords)
	// Only the unconstrained language component contributes.
	assert.InDelta(t, 0.25, scored.Score, 1e-9)
}

func Test_Score_WhenLanguageUnknown_LanguageComponentIsZero(t *testing.T) {

	engine := newTestEngine()
	preference := models.Preference{Languages: "Go"}
	candidate := models.RepositoryCandidate{FullName: "example/no-language"}

	scored := engine.Score(candidate, preference)

	assert.False(t, scored.Reason.LanguageMatch)
}

func Test_Score_LanguageMatchIsCaseInsensitive(t *testing.T) {

	engine := newTestEngine()
	preference := models.Preference{Languages: "go"}
	candidate := models.RepositoryCandidate{FullName: "example/tool", Language: "Go"}

	scored := engine.Score(candidate, preference)

	assert.True(t, scored.Reason.LanguageMatch)
}

func Test_Score_StarsUseLogScale(t *testing.T) {

	engine := newTestEngine()

	zero := engine.Score(models.RepositoryCandidate{FullName: "a/a", Stars: 0}, models.Preference{})
	small := engine.Score(models.RepositoryCandidate{FullName: "a/b", Stars: 100}, models.Preference{})
	huge := engine.Score(models.RepositoryCandidate{FullName: "a/c", Stars: 100_000}, models.Preference{})

	assert.Equal(t, 0.0, zero.Reason.StarScore)
	assert.Greater(t, small.Reason.StarScore, 0.0)
	assert.Less(t, small.Reason.StarScore, huge.Reason.StarScore)
	assert.InDelta(t, 1.0, huge.Reason.StarScore, 1e-4)
}

func Test_Score_FreshnessDecaysWithHalfLife(t *testing.T) {

	engine := newTestEngine()

	fresh := engine.Score(models.RepositoryCandidate{
		FullName: "a/a", UpdatedAt: testNow,
	}, models.Preference{})
	halfLife := engine.Score(models.RepositoryCandidate{
		FullName: "a/b", UpdatedAt: testNow.Add(-90 * 24 * time.Hour),
	}, models.Preference{})
	never := engine.Score(models.RepositoryCandidate{FullName: "a/c"}, models.Preference{})

	assert.InDelta(t, 1.0, fresh.Reason.FreshnessScore, 1e-9)
	assert.InDelta(t, 0.5, halfLife.Reason.FreshnessScore, 1e-9)
	assert.Equal(t, 0.0, never.Reason.FreshnessScore)
}

func Test_Score_AlwaysWithinUnitInterval(t *testing.T) {

	engine := newTestEngine()
	preference := models.Preference{Keywords: "ml", Languages: "Python"}
	candidates := []models.RepositoryCandidate{
		{},
		{FullName: "x/ml-lib", Description: "ml", Language: "Python", Stars: 1_000_000,
			Topics: []string{"ml"}, UpdatedAt: testNow.Add(time.Hour)},
	}

	for _, candidate := range candidates {
		scored := engine.Score(candidate, preference)
		assert.GreaterOrEqual(t, scored.Score, 0.0)
		assert.LessOrEqual(t, scored.Score, 1.0)
	}
}

func Test_FilterEligible_AppliesHardStarWindow(t *testing.T) {

	engine := newTestEngine()
	preference := models.Preference{MinStars: 100, MaxStars: 10_000}
	candidates := []models.RepositoryCandidate{
		{FullName: "a/below", Stars: 50},
		{FullName: "a/inside", Stars: 500},
		{FullName: "a/above", Stars: 50_000},
		{FullName: "a/archived", Stars: 500, Archived: true},
		{FullName: "a/disabled", Stars: 500, Disabled: true},
	}

	eligible := engine.FilterEligible(candidates, preference)

	assert.Len(t, eligible, 1)
	assert.Equal(t, "a/inside", eligible[0].FullName)
}

func Test_FilterEligible_WhenMaxStarsUnset_HasNoUpperBound(t *testing.T) {

	engine := newTestEngine()
	candidates := []models.RepositoryCandidate{{FullName: "a/popular", Stars: 500_000}}

	eligible := engine.FilterEligible(candidates, models.Preference{MinStars: 10})

	assert.Len(t, eligible, 1)
}
