package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkravets/reposcout/internal/domain/models"
)

func Test_Put_ShouldOverwriteExistingEntry(t *testing.T) {

	repoCache := New(time.Hour)

	repoCache.Put(models.RepositoryCandidate{FullName: "a/repo", Stars: 100}, "query-1")
	repoCache.Put(models.RepositoryCandidate{FullName: "a/repo", Stars: 250}, "query-2")

	entry, found := repoCache.Get("a/repo")
	assert.True(t, found)
	assert.Equal(t, 250, entry.Candidate.Stars)
	assert.Equal(t, "query-2", entry.Query)
	assert.Equal(t, 1, repoCache.Len())
}

func Test_Get_WhenMissing_ShouldReportNotFound(t *testing.T) {

	repoCache := New(time.Hour)

	_, found := repoCache.Get("a/missing")
	assert.False(t, found)
}

func Test_IsFresh_DependsOnTTL(t *testing.T) {

	repoCache := New(time.Hour)
	repoCache.Put(models.RepositoryCandidate{FullName: "a/repo"}, "query")

	entry, _ := repoCache.Get("a/repo")
	assert.True(t, repoCache.IsFresh(entry, time.Minute))

	stale := models.CacheEntry{FetchedAt: time.Now().Add(-2 * time.Minute)}
	assert.False(t, repoCache.IsFresh(stale, time.Minute))
}

func Test_FreshByQuery_ShouldSkipStaleEntries(t *testing.T) {

	repoCache := New(time.Hour)
	repoCache.Put(models.RepositoryCandidate{FullName: "a/fresh"}, "query")
	repoCache.store.Set("a/stale", models.CacheEntry{
		Candidate: models.RepositoryCandidate{FullName: "a/stale"},
		Query:     "query",
		FetchedAt: time.Now().Add(-time.Hour),
	}, 0)

	fresh := repoCache.FreshByQuery("query", time.Minute)
	assert.Len(t, fresh, 1)
	assert.Equal(t, "a/fresh", fresh[0].FullName)

	all := repoCache.ByQuery("query")
	assert.Len(t, all, 2)
}

func Test_ByQuery_ShouldIgnoreOtherQueries(t *testing.T) {

	repoCache := New(time.Hour)
	repoCache.Put(models.RepositoryCandidate{FullName: "a/one"}, "query-1")
	repoCache.Put(models.RepositoryCandidate{FullName: "a/two"}, "query-2")

	assert.Len(t, repoCache.ByQuery("query-1"), 1)
}

func Test_Put_IsSafeForConcurrentUse(t *testing.T) {

	repoCache := New(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				repoCache.Put(models.RepositoryCandidate{
					FullName: fmt.Sprintf("worker%d/repo%d", worker, j),
				}, "query")
				repoCache.FreshByQuery("query", time.Minute)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 500, repoCache.Len())
}
