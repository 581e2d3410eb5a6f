package models

import "time"

type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunFetching   RunStatus = "fetching"
	RunScoring    RunStatus = "scoring"
	RunPersisting RunStatus = "persisting"
	RunNotifying  RunStatus = "notifying"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// ChannelOutcome records one channel's delivery result for a run.
type ChannelOutcome struct {
	Channel  string `json:"channel"`
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Attempts int    `json:"attempts"`
}

// RunCounters is a statistics snapshot accumulated while a run executes.
type RunCounters struct {
	CandidatesFetched int `json:"candidates_fetched"`
	CandidatesCached  int `json:"candidates_cached"`
	CandidatesScored  int `json:"candidates_scored"`
	Recommendations   int `json:"recommendations"`
	FailedQueries     int `json:"failed_queries"`
}

// JobRun is one execution of the pipeline for a (user, preference) pair. It is
// owned exclusively by the orchestrator for its duration and is terminal once
// completed or failed.
type JobRun struct {
	ID                int
	UserID            int64
	PreferenceID      int
	ForceRefresh      bool
	Rescan            bool
	Status            RunStatus
	Degraded          bool
	RateLimited       bool
	ErrorSummary      string
	Counters          RunCounters      `gorm:"serializer:json"`
	Outcomes          []ChannelOutcome `gorm:"serializer:json"`
	RecommendationIDs []int            `gorm:"serializer:json"`
	TriggeredAt       time.Time
	FinishedAt        time.Time
}

func (r *JobRun) Terminal() bool {
	return r.Status == RunCompleted || r.Status == RunFailed
}

// NotificationsDelivered reports whether at least one channel confirmed
// delivery. A completed run with zero delivered channels is still a valid
// run; callers surface the distinction in summaries.
func (r *JobRun) NotificationsDelivered() bool {
	for _, outcome := range r.Outcomes {
		if outcome.Success {
			return true
		}
	}
	return false
}
