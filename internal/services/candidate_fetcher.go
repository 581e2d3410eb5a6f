package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/mkravets/reposcout/internal/cache"
	"github.com/mkravets/reposcout/internal/clients/github"
	"github.com/mkravets/reposcout/internal/domain/models"
	"github.com/mkravets/reposcout/internal/logger"
	"github.com/mkravets/reposcout/internal/metrics"
)

const maxKeywordsPerQuery = 5

type searchClient interface {
	SearchRepositories(ctx context.Context, parameters github.SearchParameters) ([]github.Repository, bool, error)
	RateLimit() (remaining int, resetAt time.Time)
}

type FetcherConfig struct {
	CacheTTL time.Duration
	MaxPages int
	PerPage  int

	// RateLimitFloor is the remaining-quota threshold below which the
	// fetcher stops calling the API and falls back to cached data.
	RateLimitFloor int
}

// CandidateFetcher resolves the candidate set for a preference, combining the
// search client with the shared repository cache.
type CandidateFetcher struct {
	client searchClient
	cache  *cache.RepoCache
	cfg    FetcherConfig
}

type FetchResult struct {
	Candidates    []models.RepositoryCandidate
	FetchedCount  int
	FromCache     int
	FailedQueries int
	RateLimited   bool
}

func (r FetchResult) Degraded() bool {
	return r.FailedQueries > 0 || r.RateLimited
}

func NewCandidateFetcher(client searchClient, repoCache *cache.RepoCache, cfg FetcherConfig) *CandidateFetcher {
	return &CandidateFetcher{client: client, cache: repoCache, cfg: cfg}
}

// Fetch gathers candidates for every (language, keyword-chunk) query the
// preference expands to. Fresh cache entries satisfy a query without any
// external call unless forceRefresh is set; a rate-limited or failed query
// degrades the result instead of aborting it.
func (f *CandidateFetcher) Fetch(ctx context.Context, preference *models.Preference, forceRefresh bool) (FetchResult, error) {

	var result FetchResult
	byFullName := map[string]models.RepositoryCandidate{}

	for _, params := range f.buildQueries(preference) {

		if err := ctx.Err(); err != nil {
			return result, err
		}

		queryKey := params.Query()

		if !forceRefresh && !result.RateLimited {
			if cached := f.cache.FreshByQuery(queryKey, f.cfg.CacheTTL); len(cached) > 0 {
				for _, candidate := range cached {
					byFullName[candidate.FullName] = candidate
				}
				result.FromCache += len(cached)
				metrics.CandidatesFetchedCounter.WithLabelValues("cache").Add(float64(len(cached)))
				continue
			}
		}

		if result.RateLimited {
			// Quota already exhausted: prefer whatever the cache holds,
			// fresh or not, over waiting for the reset.
			result.FromCache += f.takeFromCacheStale(queryKey, byFullName)
			continue
		}

		fetched, err := f.fetchQuery(ctx, params, queryKey, byFullName)
		result.FetchedCount += fetched

		switch {
		case errors.Is(err, github.ErrRateLimited):
			result.RateLimited = true
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeGithubApi).
				Warnf("search quota exhausted, falling back to cache: %v", err)
			if fetched == 0 {
				result.FromCache += f.takeFromCacheStale(queryKey, byFullName)
			}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return result, err
		case err != nil:
			result.FailedQueries++
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeGithubApi).
				Errorf("search query %q failed: %v", queryKey, err)
		}
	}

	result.Candidates = lo.Values(byFullName)
	return result, nil
}

func (f *CandidateFetcher) buildQueries(preference *models.Preference) []github.SearchParameters {

	keywordChunks := lo.Chunk(preference.KeywordsAsArray(), maxKeywordsPerQuery)
	if len(keywordChunks) == 0 {
		keywordChunks = [][]string{{}}
	}

	languages := preference.LanguagesAsArray()
	if len(languages) == 0 {
		languages = []string{""}
	}

	var queries []github.SearchParameters
	for _, language := range languages {
		for _, keywords := range keywordChunks {
			queries = append(queries, github.SearchParameters{
				Keywords: keywords,
				Language: language,
				MinStars: preference.MinStars,
				Page:     1,
				PerPage:  f.cfg.PerPage,
			})
		}
	}
	return queries
}

func (f *CandidateFetcher) fetchQuery(ctx context.Context, params github.SearchParameters,
	queryKey string, byFullName map[string]models.RepositoryCandidate) (int, error) {

	fetched := 0

	for page := 1; page <= f.cfg.MaxPages; page++ {

		if remaining, resetAt := f.client.RateLimit(); remaining >= 0 && remaining <= f.cfg.RateLimitFloor {
			return fetched, errors.Wrapf(github.ErrRateLimited,
				"remaining quota %v at or below floor, resets at %v", remaining, resetAt)
		}

		params.Page = page

		start := time.Now()
		repos, hasMore, err := f.client.SearchRepositories(ctx, params)
		metrics.RunStepDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())

		if err != nil {
			return fetched, err
		}

		for _, repo := range repos {
			if repo.Archived || repo.Disabled || repo.Fork {
				continue
			}
			candidate := toCandidate(repo)
			f.cache.Put(candidate, queryKey)
			byFullName[candidate.FullName] = candidate
			fetched++
		}
		metrics.CandidatesFetchedCounter.WithLabelValues("api").Add(float64(len(repos)))

		if !hasMore {
			break
		}
	}

	return fetched, nil
}

func (f *CandidateFetcher) takeFromCacheStale(queryKey string, byFullName map[string]models.RepositoryCandidate) int {
	stale := f.cache.ByQuery(queryKey)
	for _, candidate := range stale {
		byFullName[candidate.FullName] = candidate
	}
	if len(stale) > 0 {
		metrics.CandidatesFetchedCounter.WithLabelValues("cache").Add(float64(len(stale)))
	}
	return len(stale)
}

func toCandidate(repo github.Repository) models.RepositoryCandidate {
	return models.RepositoryCandidate{
		FullName:    repo.FullName,
		Description: repo.Description,
		Language:    repo.Language,
		Stars:       repo.Stars,
		Forks:       repo.Forks,
		Topics:      repo.Topics,
		Archived:    repo.Archived,
		Disabled:    repo.Disabled,
		Fork:        repo.Fork,
		UpdatedAt:   repo.UpdatedAt.Time,
		URL:         repo.Url,
	}
}
