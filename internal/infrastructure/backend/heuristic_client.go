package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"smartmatch/internal/domain/matching"
)

const heuristicDefaultConfidence = 0.7

// HeuristicAdapter talks to the V1 heuristic matching service, which exposes
// one endpoint per scoring variant.
type HeuristicAdapter struct {
	baseURL    string
	client     *http.Client
	store      Store
	resultTTL  time.Duration
	maxRetries int
	logger     *log.Logger
}

func NewHeuristicAdapter(baseURL string, timeout time.Duration, maxRetries int, store Store, resultTTL time.Duration, logger *log.Logger) *HeuristicAdapter {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HeuristicAdapter{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:     &http.Client{Timeout: timeout},
		store:      store,
		resultTTL:  resultTTL,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

func (a *HeuristicAdapter) Name() string { return "supersmartmatch-v1" }

var heuristicEndpoints = map[matching.Algorithm]string{
	matching.AlgorithmGeo:        "geo",
	matching.AlgorithmExperience: "experience",
	matching.AlgorithmSemantic:   "semantic",
	matching.AlgorithmHybrid:     "hybrid",
	matching.AlgorithmBasic:      "basic",
}

type heuristicRequest struct {
	Candidate mlCandidate      `json:"candidate"`
	JobData   []mlOffer        `json:"job_data"`
	Options   matching.Options `json:"options"`
}

type heuristicResult struct {
	JobID           string   `json:"job_id"`
	MatchingScore   float64  `json:"matching_score"`
	SkillsScore     *float64 `json:"skills_score,omitempty"`
	ExperienceScore *float64 `json:"experience_score,omitempty"`
	LocationScore   *float64 `json:"location_score,omitempty"`
	SalaryScore     *float64 `json:"salary_score,omitempty"`
	MatchedSkills   []string `json:"matched_skills,omitempty"`
	MissingSkills   []string `json:"missing_skills,omitempty"`
	DistanceKM      *float64 `json:"distance_km,omitempty"`
	TravelTimeMin   *int     `json:"travel_time_min,omitempty"`
	TransportMode   *string  `json:"transport_mode,omitempty"`
	Confidence      *float64 `json:"confidence,omitempty"`
	Explanation     string   `json:"explanation,omitempty"`
	Recommendation  string   `json:"recommendation,omitempty"`
}

type heuristicResponse struct {
	Results []heuristicResult `json:"results"`
}

func (a *HeuristicAdapter) Execute(ctx context.Context, algo matching.Algorithm, candidate matching.CandidateProfile, jobs []matching.JobOffer, opts matching.Options) (*matching.MatchingResponse, error) {
	endpoint, ok := heuristicEndpoints[algo]
	if !ok {
		return nil, fmt.Errorf("%w: no heuristic endpoint for algorithm %q", ErrExecution, algo)
	}

	key := resultCacheKey("match:v1:", algo, candidate, jobs, opts)
	if a.store != nil {
		var cached matching.MatchingResponse
		if hit, err := a.store.GetJSON(ctx, key, &cached); err == nil && hit {
			cached.FromCache = true
			return &cached, nil
		}
	}

	payload := heuristicRequest{
		Candidate: toWireCandidate(candidate),
		JobData:   toWireOffers(jobs),
		Options:   opts,
	}

	url := a.baseURL + "/api/v1/match/" + endpoint
	raw, err := postJSON(ctx, a.client, url, payload, a.maxRetries, a.logger, "HeuristicAdapter")
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrExecution, a.Name(), endpoint, err)
	}

	var wire heuristicResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	resp, err := a.fromWire(wire, algo, len(jobs))
	if err != nil {
		return nil, err
	}

	if a.store != nil {
		if err := a.store.SetJSON(ctx, key, resp, a.resultTTL); err != nil && a.logger != nil {
			a.logger.Printf("[HeuristicAdapter] cache write failed | key=%s err=%v", key, err)
		}
	}
	return resp, nil
}

func (a *HeuristicAdapter) fromWire(wire heuristicResponse, algo matching.Algorithm, totalJobs int) (*matching.MatchingResponse, error) {
	results := make([]matching.MatchResult, 0, len(wire.Results))
	for _, r := range wire.Results {
		m := matching.MatchResult{
			JobID:           r.JobID,
			OverallScore:    r.MatchingScore,
			SkillsScore:     r.SkillsScore,
			ExperienceScore: r.ExperienceScore,
			LocationScore:   r.LocationScore,
			SalaryScore:     r.SalaryScore,
			MatchedSkills:   r.MatchedSkills,
			MissingSkills:   r.MissingSkills,
			DistanceKM:      r.DistanceKM,
			TravelTimeMin:   r.TravelTimeMin,
			TransportMode:   r.TransportMode,
			Explanation:     r.Explanation,
			Recommendation:  r.Recommendation,
			Algorithm:       algo,
			Confidence:      r.Confidence,
		}
		if m.Confidence == nil {
			c := heuristicDefaultConfidence
			m.Confidence = &c
		}
		results = append(results, m)
	}

	if err := validateMatches(results); err != nil {
		return nil, err
	}

	resp := &matching.MatchingResponse{
		Matches:       results,
		AlgorithmUsed: algo,
		ServicesUsed:  []string{a.Name()},
	}
	finalizeResponse(resp, totalJobs)
	return resp, nil
}

var _ Adapter = (*HeuristicAdapter)(nil)
