package models

import "time"

// RepositoryCandidate is a snapshot of an external repository as fetched from
// the search API. Identity is the full name ("owner/repo"); a snapshot is
// immutable once taken.
type RepositoryCandidate struct {
	FullName    string
	Description string
	Language    string
	Stars       int
	Forks       int
	Topics      []string
	Archived    bool
	Disabled    bool
	Fork        bool
	UpdatedAt   time.Time
	URL         string
}

// CacheEntry wraps a candidate snapshot with the query that produced it and
// the time it was fetched. Entries are overwritten on refetch, never merged.
type CacheEntry struct {
	Candidate RepositoryCandidate
	Query     string
	FetchedAt time.Time
}
