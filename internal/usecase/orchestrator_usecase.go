package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"smartmatch/internal/breaker"
	"smartmatch/internal/domain/matching"
	"smartmatch/internal/infrastructure/backend"
	"smartmatch/internal/pkg/fingerprint"
	"smartmatch/internal/repository"

	"github.com/google/uuid"
)

var errBreakerOpen = errors.New("circuit breaker open")

// MatchingUsecase coordinates selection, guarded backend execution and the
// fallback walk. Match never returns an error: every failure mode degrades to
// a well-formed (possibly empty) response.
type MatchingUsecase interface {
	Match(ctx context.Context, candidate matching.CandidateProfile, jobs []matching.JobOffer, opts matching.Options, force *matching.Algorithm) *matching.MatchingResponse
}

// Observer receives orchestration metrics. Implemented by the Prometheus
// metrics set; nil disables observation.
type Observer interface {
	ObserveRequest(algorithm, outcome string, seconds float64)
	ObserveFallback(from, to string)
}

// Notifier publishes match-completed events to live subscribers.
type Notifier interface {
	MatchCompleted(requestID string, algorithm matching.Algorithm, fallbackUsed bool, matches int)
}

type Orchestrator struct {
	selector  SelectionUsecase
	ml        backend.Adapter
	heuristic backend.Adapter
	breakers  *breaker.Registry

	store          Store
	requestTTL     time.Duration
	enableFallback bool

	history  repository.MatchHistoryRepository
	observer Observer
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
}

type OrchestratorDeps struct {
	Selector  SelectionUsecase
	ML        backend.Adapter
	Heuristic backend.Adapter
	Breakers  *breaker.Registry

	Store          Store
	RequestTTL     time.Duration
	EnableFallback bool

	History  repository.MatchHistoryRepository
	Observer Observer
	Notifier Notifier
	Logger   *log.Logger
}

func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	ttl := deps.RequestTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Orchestrator{
		selector:       deps.Selector,
		ml:             deps.ML,
		heuristic:      deps.Heuristic,
		breakers:       deps.Breakers,
		store:          deps.Store,
		requestTTL:     ttl,
		enableFallback: deps.EnableFallback,
		history:        deps.History,
		observer:       deps.Observer,
		notifier:       deps.Notifier,
		logger:         deps.Logger,
		now:            time.Now,
	}
}

func (o *Orchestrator) Match(ctx context.Context, candidate matching.CandidateProfile, jobs []matching.JobOffer, opts matching.Options, force *matching.Algorithm) *matching.MatchingResponse {
	start := o.now()
	requestID := uuid.NewString()

	var cacheKey string
	if o.store != nil {
		cacheKey = requestCacheKey(candidate, jobs, opts, force)
		var cached matching.MatchingResponse
		if hit, err := o.store.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			cached.FromCache = true
			cached.RequestID = requestID
			cached.ProcessingMS = o.now().Sub(start).Milliseconds()
			o.observe(cached.AlgorithmUsed, "cache_hit", start)
			return &cached
		}
	}

	sel := o.selector.Select(ctx, candidate, jobs, force)
	if o.logger != nil {
		o.logger.Printf("[Orchestrator] selected | request=%s algorithm=%s score=%.1f forced=%t",
			requestID, sel.Algorithm, sel.Score, sel.Forced)
	}

	resp, err := o.attempt(ctx, sel.Algorithm, candidate, jobs, opts)
	if err == nil {
		return o.finish(ctx, resp, opts, requestID, cacheKey, start, false)
	}

	failureReason := err.Error()
	if o.logger != nil {
		o.logger.Printf("[Orchestrator] primary failed | request=%s algorithm=%s err=%v", requestID, sel.Algorithm, err)
	}

	if !o.enableFallback {
		return o.finish(ctx, o.emptyResponse(sel.Algorithm, len(jobs), failureReason), opts, requestID, "", start, false)
	}

	for _, algo := range sel.FallbackOrder {
		fresp, ferr := o.attempt(ctx, algo, candidate, jobs, opts)
		if ferr != nil {
			if o.logger != nil {
				o.logger.Printf("[Orchestrator] fallback failed | request=%s algorithm=%s err=%v", requestID, algo, ferr)
			}
			continue
		}
		if o.observer != nil {
			o.observer.ObserveFallback(string(sel.Algorithm), string(algo))
		}
		fresp.FallbackUsed = true
		fresp.Recommendations = append(fresp.Recommendations,
			fmt.Sprintf("primary algorithm %s unavailable (%s); served by %s", sel.Algorithm, failureReason, algo))
		return o.finish(ctx, fresp, opts, requestID, cacheKey, start, true)
	}

	// Total exhaustion: every algorithm failed or was breaker-blocked.
	return o.finish(ctx, o.emptyResponse(sel.Algorithm, len(jobs), failureReason), opts, requestID, "", start, true)
}

// attempt runs one algorithm behind its circuit breaker and reports the
// outcome to it.
func (o *Orchestrator) attempt(ctx context.Context, algo matching.Algorithm, candidate matching.CandidateProfile, jobs []matching.JobOffer, opts matching.Options) (*matching.MatchingResponse, error) {
	br := o.breakers.Get(string(algo))
	if !br.CanExecute() {
		return nil, errBreakerOpen
	}

	resp, err := o.adapterFor(algo).Execute(ctx, algo, candidate, jobs, opts)
	if err != nil {
		br.RecordFailure()
		return nil, err
	}
	br.RecordSuccess()
	return resp, nil
}

func (o *Orchestrator) adapterFor(algo matching.Algorithm) backend.Adapter {
	if algo == matching.AlgorithmML {
		return o.ml
	}
	return o.heuristic
}

// finish applies caller options, annotates, caches, records and publishes one
// response. It is the single exit path for Match.
func (o *Orchestrator) finish(ctx context.Context, resp *matching.MatchingResponse, opts matching.Options, requestID, cacheKey string, start time.Time, fallbackUsed bool) *matching.MatchingResponse {
	applyOptions(resp, opts)
	resp.RequestID = requestID
	resp.ProcessingMS = o.now().Sub(start).Milliseconds()

	outcome := "success"
	if len(resp.Matches) == 0 && resp.FallbackUsed {
		outcome = "exhausted"
	} else if fallbackUsed {
		outcome = "fallback"
	}
	o.observe(resp.AlgorithmUsed, outcome, start)

	if cacheKey != "" && o.store != nil && len(resp.Matches) > 0 {
		if err := o.store.SetJSON(ctx, cacheKey, resp, o.requestTTL); err != nil && o.logger != nil {
			o.logger.Printf("[Orchestrator] cache write failed | key=%s err=%v", cacheKey, err)
		}
	}

	o.recordHistory(resp)

	if o.notifier != nil {
		o.notifier.MatchCompleted(requestID, resp.AlgorithmUsed, resp.FallbackUsed, len(resp.Matches))
	}
	return resp
}

func (o *Orchestrator) emptyResponse(algo matching.Algorithm, totalJobs int, reason string) *matching.MatchingResponse {
	return &matching.MatchingResponse{
		Matches:           []matching.MatchResult{},
		AlgorithmUsed:     algo,
		TotalJobsAnalyzed: totalJobs,
		FallbackUsed:      true,
		Recommendations: []string{
			"no matching backend could serve this request: " + reason,
			"retry later or relax the request constraints",
		},
	}
}

func (o *Orchestrator) observe(algo matching.Algorithm, outcome string, start time.Time) {
	if o.observer == nil {
		return
	}
	o.observer.ObserveRequest(string(algo), outcome, o.now().Sub(start).Seconds())
}

// recordHistory persists an audit row best-effort; a missing or failing
// history store never affects the response.
func (o *Orchestrator) recordHistory(resp *matching.MatchingResponse) {
	if o.history == nil {
		return
	}
	entry := repository.MatchHistoryEntry{
		RequestID:    resp.RequestID,
		Algorithm:    string(resp.AlgorithmUsed),
		FallbackUsed: resp.FallbackUsed,
		JobsAnalyzed: resp.TotalJobsAnalyzed,
		JobsMatched:  resp.JobsMatched,
		AverageScore: resp.AverageScore,
		ProcessingMS: resp.ProcessingMS,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := o.history.Insert(ctx, entry); err != nil && o.logger != nil {
			o.logger.Printf("[Orchestrator] history insert failed | request=%s err=%v", entry.RequestID, err)
		}
	}()
}

// applyOptions filters by minimum score, re-sorts and truncates, then
// recomputes the aggregate fields so the envelope invariants hold.
func applyOptions(resp *matching.MatchingResponse, opts matching.Options) {
	matches := resp.Matches
	if opts.MinScore > 0 {
		kept := matches[:0]
		for _, m := range matches {
			if m.OverallScore >= opts.MinScore {
				kept = append(kept, m)
			}
		}
		matches = kept
	}

	matching.SortMatches(matches)
	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}

	resp.Matches = matches
	resp.JobsMatched = len(matches)

	var sum float64
	for _, m := range matches {
		sum += m.OverallScore
	}
	resp.AverageScore = 0
	if len(matches) > 0 {
		resp.AverageScore = sum / float64(len(matches))
	}
}

type requestKeyInput struct {
	Force     string           `json:"force"`
	Selection string           `json:"selection"`
	JobIDs    []string         `json:"job_ids"`
	Options   matching.Options `json:"options"`
}

// requestCacheKey fingerprints the whole request: the selection-relevant
// content, the concrete job set, caller options and any forced algorithm.
// The selection key alone is not enough; it hashes skill and location
// profiles, and two different job sets can share those.
func requestCacheKey(candidate matching.CandidateProfile, jobs []matching.JobOffer, opts matching.Options, force *matching.Algorithm) string {
	ids := make([]string, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	in := requestKeyInput{
		Selection: selectionCacheKey(candidate, jobs),
		JobIDs:    ids,
		Options:   opts,
	}
	if force != nil {
		in.Force = string(*force)
	}
	return fingerprint.Key("request:", in)
}

var _ MatchingUsecase = (*Orchestrator)(nil)
