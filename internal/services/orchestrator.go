package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/mkravets/reposcout/internal/domain/events"
	"github.com/mkravets/reposcout/internal/domain/models"
	"github.com/mkravets/reposcout/internal/logger"
	"github.com/mkravets/reposcout/internal/metrics"
	"github.com/mkravets/reposcout/internal/notify"
	"github.com/mkravets/reposcout/internal/scoring"
)

var (
	ErrConcurrentRun      = errors.New("a run for this preference is already active")
	ErrNoCandidates       = errors.New("no candidates could be fetched and the cache is empty")
	ErrPreferenceDisabled = errors.New("preference is disabled")
)

type preferenceStore interface {
	GetByID(ctx context.Context, id int) (*models.Preference, error)
}

type recommendationStore interface {
	Save(ctx context.Context, recommendations []models.Recommendation) ([]int, error)
	ListRecentFullNames(ctx context.Context, userID int64, window time.Duration) (map[string]struct{}, error)
	GetByUser(ctx context.Context, userID int64, limit int) ([]models.Recommendation, error)
}

type runStore interface {
	Create(ctx context.Context, run *models.JobRun) error
	Update(ctx context.Context, run *models.JobRun) error
	GetByID(ctx context.Context, id int) (*models.JobRun, error)
	GetByUser(ctx context.Context, userID int64, limit int) ([]models.JobRun, error)
}

type candidateFetcher interface {
	Fetch(ctx context.Context, preference *models.Preference, forceRefresh bool) (FetchResult, error)
}

type notificationDispatcher interface {
	Dispatch(ctx context.Context, summary notify.Summary, channelNames []string) map[string]models.ChannelOutcome
}

type OrchestratorConfig struct {
	RunTimeout  time.Duration
	DedupWindow time.Duration
}

// Orchestrator drives one recommendation run end to end:
// fetch → score → rank → persist → notify. Runs for different
// (user, preference) pairs execute concurrently; a second trigger for an
// already active pair is rejected.
type Orchestrator struct {
	bus             EventBus.Bus
	fetcher         candidateFetcher
	engine          *scoring.Engine
	dispatcher      notificationDispatcher
	preferences     preferenceStore
	recommendations recommendationStore
	runs            runStore
	cfg             OrchestratorConfig
	activeRuns      sync.Map
}

func NewOrchestrator(bus EventBus.Bus, fetcher candidateFetcher, engine *scoring.Engine,
	dispatcher notificationDispatcher, preferences preferenceStore,
	recommendations recommendationStore, runs runStore, cfg OrchestratorConfig) (*Orchestrator, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}
	if cfg.RunTimeout <= 0 {
		return nil, errors.New("run timeout must be positive")
	}
	if cfg.DedupWindow <= 0 {
		return nil, errors.New("dedup window must be positive")
	}

	return &Orchestrator{
		bus:             bus,
		fetcher:         fetcher,
		engine:          engine,
		dispatcher:      dispatcher,
		preferences:     preferences,
		recommendations: recommendations,
		runs:            runs,
		cfg:             cfg,
	}, nil
}

type RunOptions struct {
	ForceRefresh bool
	Rescan       bool
}

// TriggerRun executes one run and blocks until it reaches a terminal state,
// bounded by the configured run timeout. The returned JobRun is always
// terminal; its persisted outcome survives even a cancelled run.
func (o *Orchestrator) TriggerRun(ctx context.Context, userID int64, preferenceID int, opts RunOptions) (*models.JobRun, error) {

	key := fmt.Sprintf("%d:%d", userID, preferenceID)
	if _, active := o.activeRuns.LoadOrStore(key, struct{}{}); active {
		return nil, ErrConcurrentRun
	}
	defer o.activeRuns.Delete(key)

	preference, err := o.preferences.GetByID(ctx, preferenceID)
	if err != nil {
		return nil, errors.Wrap(err, "load preference")
	}
	if preference.UserID != userID {
		return nil, errors.New("preference does not belong to user")
	}
	if !preference.Enabled {
		return nil, ErrPreferenceDisabled
	}

	run := &models.JobRun{
		UserID:       userID,
		PreferenceID: preferenceID,
		ForceRefresh: opts.ForceRefresh,
		Rescan:       opts.Rescan,
		Status:       models.RunPending,
		TriggeredAt:  time.Now(),
	}
	if err := o.runs.Create(ctx, run); err != nil {
		return nil, errors.Wrap(err, "record run")
	}

	runCtx, cancel := context.WithTimeout(ctx, o.cfg.RunTimeout)
	defer cancel()

	start := time.Now()
	o.execute(runCtx, run, preference)
	if !run.Terminal() {
		o.fail(run, errors.Errorf("run stopped in non-terminal state %v", run.Status))
	}
	run.FinishedAt = time.Now()
	metrics.RunDuration.Observe(time.Since(start).Seconds())

	// The outcome record must survive a cancelled run context.
	if err := o.runs.Update(context.Background(), run); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to record outcome of run %v: %v", run.ID, err)
	}

	o.bus.Publish(events.RunCompletedTopic, events.RunCompleted{Run: *run})
	return run, nil
}

// RunStatus returns the recorded state of a run, terminal or in flight.
func (o *Orchestrator) RunStatus(ctx context.Context, id int) (*models.JobRun, error) {
	return o.runs.GetByID(ctx, id)
}

// RecentRuns lists a user's latest runs, newest first.
func (o *Orchestrator) RecentRuns(ctx context.Context, userID int64, limit int) ([]models.JobRun, error) {
	return o.runs.GetByUser(ctx, userID, limit)
}

// History lists a user's stored recommendations, newest first.
func (o *Orchestrator) History(ctx context.Context, userID int64, limit int) ([]models.Recommendation, error) {
	return o.recommendations.GetByUser(ctx, userID, limit)
}

func (o *Orchestrator) execute(ctx context.Context, run *models.JobRun, preference *models.Preference) {

	run.Status = models.RunFetching
	fetchResult, err := o.fetcher.Fetch(ctx, preference, run.ForceRefresh)
	run.Counters.CandidatesFetched = fetchResult.FetchedCount
	run.Counters.CandidatesCached = fetchResult.FromCache
	run.Counters.FailedQueries = fetchResult.FailedQueries
	run.RateLimited = fetchResult.RateLimited
	run.Degraded = fetchResult.Degraded()
	if err != nil {
		o.fail(run, errors.Wrap(err, "fetch candidates"))
		return
	}
	if len(fetchResult.Candidates) == 0 {
		o.fail(run, ErrNoCandidates)
		return
	}

	if o.cancelled(ctx, run) {
		return
	}

	run.Status = models.RunScoring
	start := time.Now()
	eligible := o.engine.FilterEligible(fetchResult.Candidates, *preference)
	scored := lo.Map(eligible, func(candidate models.RepositoryCandidate, _ int) models.ScoredCandidate {
		return o.engine.Score(candidate, *preference)
	})
	run.Counters.CandidatesScored = len(scored)
	metrics.RunStepDuration.WithLabelValues("scoring").Observe(time.Since(start).Seconds())

	var seen map[string]struct{}
	if !run.Rescan {
		seen, err = o.recommendations.ListRecentFullNames(ctx, run.UserID, o.cfg.DedupWindow)
		if err != nil {
			o.fail(run, errors.Wrap(err, "load recommendation history"))
			return
		}
	}
	ranked := scoring.Rank(scored, *preference, seen)

	if len(ranked) == 0 {
		run.Status = models.RunCompleted
		log.Infof("run for preference %v produced no new recommendations", preference.ID)
		return
	}

	if o.cancelled(ctx, run) {
		return
	}

	run.Status = models.RunPersisting
	recommendations := lo.Map(ranked, func(scored models.ScoredCandidate, _ int) models.Recommendation {
		return models.NewRecommendation(run.UserID, preference.ID, run.ID, scored)
	})
	ids, err := o.recommendations.Save(ctx, recommendations)
	if err != nil {
		o.fail(run, errors.Wrap(err, "save recommendations"))
		return
	}
	run.RecommendationIDs = ids
	run.Counters.Recommendations = len(ids)
	metrics.RecommendationsCounter.Add(float64(len(ids)))

	if o.cancelled(ctx, run) {
		return
	}

	// Channel failures never fail the run: recommendations are already
	// computed and stored. An all-channels-down run completes too, but is
	// visible through its outcomes.
	run.Status = models.RunNotifying
	if channels := preference.ChannelsAsArray(); len(channels) > 0 {
		outcomes := o.dispatcher.Dispatch(ctx, buildSummary(preference, ranked), channels)
		run.Outcomes = sortedOutcomes(outcomes)
		if !run.NotificationsDelivered() {
			log.Warnf("no notification channel confirmed delivery for preference %v", preference.ID)
		}
	}

	run.Status = models.RunCompleted
}

func (o *Orchestrator) cancelled(ctx context.Context, run *models.JobRun) bool {
	if err := ctx.Err(); err != nil {
		o.fail(run, errors.Wrap(err, "run cancelled"))
		return true
	}
	return false
}

func (o *Orchestrator) fail(run *models.JobRun, err error) {
	run.Status = models.RunFailed
	run.ErrorSummary = err.Error()
	log.Errorf("run for user %v, preference %v failed: %v", run.UserID, run.PreferenceID, err)
}

func buildSummary(preference *models.Preference, ranked []models.ScoredCandidate) notify.Summary {

	name := preference.Name
	if name == "" {
		name = preference.Keywords
	}

	return notify.Summary{
		PreferenceName: name,
		Repositories: lo.Map(ranked, func(scored models.ScoredCandidate, _ int) notify.RepoSummary {
			return notify.RepoSummary{
				FullName:    scored.Candidate.FullName,
				Description: scored.Candidate.Description,
				Language:    scored.Candidate.Language,
				Stars:       scored.Candidate.Stars,
				Score:       scored.Score,
				Reason:      reasonText(scored.Reason),
				URL:         scored.Candidate.URL,
			}
		}),
	}
}

func reasonText(reason models.Reason) string {
	if len(reason.MatchedKeywords) > 0 {
		return "matches " + strings.Join(reason.MatchedKeywords, ", ")
	}
	if reason.LanguageMatch {
		return "preferred language"
	}
	return "popular and recently active"
}

func sortedOutcomes(outcomes map[string]models.ChannelOutcome) []models.ChannelOutcome {
	sorted := lo.Values(outcomes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Channel < sorted[j].Channel })
	return sorted
}
