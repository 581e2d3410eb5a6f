package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mkravets/reposcout/internal/domain/models"
)

// RepoCache stores candidate snapshots keyed by full name. It is shared
// read/write across concurrent runs; Put is last-write-wins, which is
// acceptable since snapshots are near-idempotent external facts. Freshness is
// a run-level decision, so entries are kept until the retention sweep rather
// than expiring at a fixed cache TTL.
type RepoCache struct {
	store *gocache.Cache
}

func New(retention time.Duration) *RepoCache {
	return &RepoCache{store: gocache.New(retention, retention/2)}
}

func (c *RepoCache) Get(fullName string) (models.CacheEntry, bool) {
	value, found := c.store.Get(fullName)
	if !found {
		return models.CacheEntry{}, false
	}
	return value.(models.CacheEntry), true
}

// Put overwrites any existing entry for the candidate's full name.
func (c *RepoCache) Put(candidate models.RepositoryCandidate, query string) {
	c.store.Set(candidate.FullName, models.CacheEntry{
		Candidate: candidate,
		Query:     query,
		FetchedAt: time.Now(),
	}, gocache.DefaultExpiration)
}

func (c *RepoCache) IsFresh(entry models.CacheEntry, ttl time.Duration) bool {
	return time.Since(entry.FetchedAt) < ttl
}

// FreshByQuery returns candidates cached for the given query whose entries
// are still within the TTL window.
func (c *RepoCache) FreshByQuery(query string, ttl time.Duration) []models.RepositoryCandidate {
	return c.byQuery(query, ttl)
}

// ByQuery returns all cached candidates for the query regardless of
// freshness. Used as a fallback when the external quota is exhausted.
func (c *RepoCache) ByQuery(query string) []models.RepositoryCandidate {
	return c.byQuery(query, 0)
}

func (c *RepoCache) byQuery(query string, ttl time.Duration) []models.RepositoryCandidate {
	var candidates []models.RepositoryCandidate
	for _, item := range c.store.Items() {
		entry := item.Object.(models.CacheEntry)
		if entry.Query != query {
			continue
		}
		if ttl > 0 && !c.IsFresh(entry, ttl) {
			continue
		}
		candidates = append(candidates, entry.Candidate)
	}
	return candidates
}

func (c *RepoCache) Len() int {
	return c.store.ItemCount()
}
