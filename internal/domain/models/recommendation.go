package models

import "time"

// Reason is the structured scoring breakdown attached to every
// recommendation.
type Reason struct {
	MatchedKeywords []string `json:"matched_keywords"`
	LanguageMatch   bool     `json:"language_match"`
	StarScore       float64  `json:"star_score"`
	FreshnessScore  float64  `json:"freshness_score"`
	TopicBonus      float64  `json:"topic_bonus"`
}

// ScoredCandidate is a transient per-run value; it is persisted only as part
// of a Recommendation.
type ScoredCandidate struct {
	Candidate RepositoryCandidate
	Score     float64
	Reason    Reason
}

// Recommendation is the persisted, append-only result of a run. The candidate
// fields are denormalized so history survives cache eviction.
type Recommendation struct {
	ID           int
	UserID       int64
	PreferenceID int
	JobRunID     int
	FullName     string
	Description  string
	Language     string
	Stars        int
	URL          string
	Score        float64
	Reason       Reason `gorm:"serializer:json"`
	CreatedAt    time.Time
}

func NewRecommendation(userID int64, preferenceID, jobRunID int, scored ScoredCandidate) Recommendation {
	return Recommendation{
		UserID:       userID,
		PreferenceID: preferenceID,
		JobRunID:     jobRunID,
		FullName:     scored.Candidate.FullName,
		Description:  scored.Candidate.Description,
		Language:     scored.Candidate.Language,
		Stars:        scored.Candidate.Stars,
		URL:          scored.Candidate.URL,
		Score:        scored.Score,
		Reason:       scored.Reason,
	}
}
