package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/mkravets/reposcout/internal/domain/models"
)

// Scoring policy constants. The five weights sum to 1.0 and are immutable;
// changing them invalidates stored recommendation reasons.
const (
	weightKeywords   = 0.40
	weightLanguage   = 0.25
	weightPopularity = 0.20
	weightFreshness  = 0.10
	weightTopics     = 0.05

	// starCeiling is the reference star count that maps to a popularity
	// score of 1.0 on the log scale.
	starCeiling = 100_000
)

// freshnessHalfLife controls the decay of the freshness component: a
// repository untouched for one half-life scores 0.5.
const freshnessHalfLife = 90 * 24 * time.Hour

// Engine maps (candidate, preference) to a score with a reason breakdown.
// It is pure and touches no shared state.
type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// FilterEligible applies the hard filters that run before scoring: the star
// window is a boundary, not a weighted signal, and archived or disabled
// repositories are never recommended.
func (e *Engine) FilterEligible(candidates []models.RepositoryCandidate, preference models.Preference) []models.RepositoryCandidate {
	var eligible []models.RepositoryCandidate
	for _, candidate := range candidates {
		if candidate.Archived || candidate.Disabled {
			continue
		}
		if candidate.Stars < preference.MinStars {
			continue
		}
		if preference.MaxStars != 0 && candidate.Stars > preference.MaxStars {
			continue
		}
		eligible = append(eligible, candidate)
	}
	return eligible
}

func (e *Engine) Score(candidate models.RepositoryCandidate, preference models.Preference) models.ScoredCandidate {

	keywords := preference.KeywordsAsArray()

	keywordScore, matched := scoreKeywords(candidate, keywords)
	languageScore := scoreLanguage(candidate, preference.LanguagesAsArray())
	starScore := scoreStars(candidate.Stars)
	freshnessScore := e.scoreFreshness(candidate.UpdatedAt)
	topicBonus := scoreTopics(candidate.Topics, keywords)

	total := keywordScore*weightKeywords +
		languageScore*weightLanguage +
		starScore*weightPopularity +
		freshnessScore*weightFreshness +
		topicBonus*weightTopics

	return models.ScoredCandidate{
		Candidate: candidate,
		Score:     clamp01(total),
		Reason: models.Reason{
			MatchedKeywords: matched,
			LanguageMatch:   languageScore > 0,
			StarScore:       starScore,
			FreshnessScore:  freshnessScore,
			TopicBonus:      topicBonus,
		},
	}
}

// scoreKeywords returns the fraction of preference keywords found as
// substrings of the candidate's name or description. An empty keyword list
// scores 0: nothing can match nothing.
func scoreKeywords(candidate models.RepositoryCandidate, keywords []string) (float64, []string) {
	if len(keywords) == 0 {
		return 0, []string{}
	}

	searchable := strings.ToLower(candidate.FullName + " " + candidate.Description)

	matched := []string{}
	for _, keyword := range keywords {
		if strings.Contains(searchable, strings.ToLower(keyword)) {
			matched = append(matched, keyword)
		}
	}
	return float64(len(matched)) / float64(len(keywords)), matched
}

// An empty language list means no constraint and gives full credit. A
// candidate with no detected language only matches the unconstrained case.
func scoreLanguage(candidate models.RepositoryCandidate, languages []string) float64 {
	if len(languages) == 0 {
		return 1.0
	}
	if candidate.Language == "" {
		return 0
	}
	for _, language := range languages {
		if strings.EqualFold(language, candidate.Language) {
			return 1.0
		}
	}
	return 0
}

// Log transform so very popular repositories do not dominate linearly.
// Zero stars scores zero.
func scoreStars(stars int) float64 {
	if stars <= 0 {
		return 0
	}
	return clamp01(math.Log(float64(stars)+1) / math.Log(starCeiling+1))
}

func (e *Engine) scoreFreshness(updatedAt time.Time) float64 {
	if updatedAt.IsZero() {
		return 0
	}
	age := e.now().Sub(updatedAt)
	if age <= 0 {
		return 1.0
	}
	return clamp01(math.Exp2(-age.Hours() / freshnessHalfLife.Hours()))
}

// Topics are short slugs, often abbreviations: "ml" is how the ecosystem tags
// "machine learning". Besides two-way containment, a topic matches the
// initials of a multi-word keyword.
func scoreTopics(topics []string, keywords []string) float64 {
	for _, topic := range topics {
		topic = strings.ToLower(topic)
		for _, keyword := range keywords {
			keyword = strings.ToLower(keyword)
			if strings.Contains(topic, keyword) || strings.Contains(keyword, topic) {
				return 1.0
			}
			if topic == initials(keyword) {
				return 1.0
			}
		}
	}
	return 0
}

func initials(keyword string) string {
	words := strings.FieldsFunc(keyword, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	if len(words) < 2 {
		return ""
	}

	var abbreviation strings.Builder
	for _, word := range words {
		abbreviation.WriteRune([]rune(word)[0])
	}
	return abbreviation.String()
}

func clamp01(value float64) float64 {
	return math.Max(0, math.Min(1, value))
}
