package models

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Preference is a user-owned search and ranking profile. List-valued fields
// are stored as comma-joined strings, matching the column layout used across
// the repositories package.
type Preference struct {
	ID                 int
	UserID             int64
	Name               string
	Keywords           string
	Languages          string
	MinStars           int
	MaxStars           int // 0 means no upper bound
	MaxRecommendations int
	Channels           string
	RunCron            string
	Enabled            bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewPreference(userID int64, name string, keywords, languages, channels []string,
	minStars, maxStars, maxRecommendations int) *Preference {

	normalized := lo.Uniq(lo.FilterMap(keywords, func(kw string, _ int) (string, bool) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		return kw, kw != ""
	}))

	return &Preference{
		UserID:             userID,
		Name:               name,
		Keywords:           strings.Join(normalized, ","),
		Languages:          strings.Join(languages, ","),
		Channels:           strings.Join(channels, ","),
		MinStars:           minStars,
		MaxStars:           maxStars,
		MaxRecommendations: maxRecommendations,
		Enabled:            true,
	}
}

func (p *Preference) Validate() error {
	if p.MaxRecommendations < 1 {
		return errors.New("max recommendations must be at least 1")
	}
	if p.MaxStars != 0 && p.MaxStars < p.MinStars {
		return errors.New("max stars must be greater or equal to min stars")
	}
	return nil
}

func (p *Preference) KeywordsAsArray() []string {
	return splitList(p.Keywords)
}

func (p *Preference) LanguagesAsArray() []string {
	return splitList(p.Languages)
}

func (p *Preference) ChannelsAsArray() []string {
	return splitList(p.Channels)
}

func splitList(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, ",")
}
