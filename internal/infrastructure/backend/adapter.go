// Package backend translates the internal matching request/response shape to
// each external scoring service's wire format and back.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartmatch/internal/domain/matching"
	"smartmatch/internal/pkg/fingerprint"
)

var (
	// ErrExecution wraps any failure after retries are exhausted; the
	// orchestrator records it against the backend's circuit breaker.
	ErrExecution = errors.New("backend execution failed")
	// ErrMalformedResponse marks a backend reply that violates the score
	// contract. Not retried.
	ErrMalformedResponse = errors.New("malformed backend response")
)

// Store is the subset of the cache used by adapters.
type Store interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Adapter executes one matching request against an external scoring service.
// Adapters never invoke fallback logic themselves; they only report success
// or failure upward.
type Adapter interface {
	Name() string
	Execute(ctx context.Context, algo matching.Algorithm, candidate matching.CandidateProfile, jobs []matching.JobOffer, opts matching.Options) (*matching.MatchingResponse, error)
}

// validateMatches enforces the adapter contract: every score in range and the
// result list internally consistent.
func validateMatches(results []matching.MatchResult) error {
	for i, m := range results {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%w: match %d: %v", ErrMalformedResponse, i, err)
		}
	}
	return nil
}

func finalizeResponse(resp *matching.MatchingResponse, totalJobs int) {
	matching.SortMatches(resp.Matches)
	resp.TotalJobsAnalyzed = totalJobs
	resp.JobsMatched = len(resp.Matches)
	resp.AverageScore = averageScore(resp.Matches)
}

func averageScore(matches []matching.MatchResult) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.OverallScore
	}
	return sum / float64(len(matches))
}

// cacheKeyInput is the normalized content hashed into an adapter cache key.
// Per-job slices are index-aligned with JobIDs.
type cacheKeyInput struct {
	Algorithm     string                  `json:"algorithm"`
	Skills        []string                `json:"skills"`
	Experience    int                     `json:"experience"`
	Location      string                  `json:"location"`
	MobilityKM    int                     `json:"mobility_km"`
	Salary        int                     `json:"salary"`
	ContractTypes []string                `json:"contract_types"`
	RemotePref    string                  `json:"remote_pref"`
	JobIDs        []string                `json:"job_ids"`
	JobSkills     []string                `json:"job_skills"`
	JobSalaries   []*matching.SalaryRange `json:"job_salaries"`
	JobPolicies   []string                `json:"job_policies"`
	Options       matching.Options        `json:"options"`
	QComplete     bool                    `json:"q_complete"`
}

func resultCacheKey(prefix string, algo matching.Algorithm, candidate matching.CandidateProfile, jobs []matching.JobOffer, opts matching.Options) string {
	in := cacheKeyInput{
		Algorithm:     string(algo),
		Skills:        matching.NormalizedSkills(candidate.Skills),
		Experience:    candidate.Experience(),
		ContractTypes: matching.NormalizedSkills(candidate.ContractTypes),
		RemotePref:    string(candidate.RemotePreference),
		Options:       opts,
	}
	if candidate.Location != nil {
		in.Location = *candidate.Location
	}
	if candidate.MobilityRadiusKM != nil {
		in.MobilityKM = *candidate.MobilityRadiusKM
	}
	if candidate.DesiredSalary != nil {
		in.Salary = *candidate.DesiredSalary
	}
	if candidate.Questionnaire != nil {
		in.QComplete = candidate.Questionnaire.Complete
	}

	ids := make([]string, 0, len(jobs))
	salaries := make([]*matching.SalaryRange, 0, len(jobs))
	policies := make([]string, 0, len(jobs))
	var jobSkills []string
	for _, j := range jobs {
		ids = append(ids, j.ID)
		salaries = append(salaries, j.Salary)
		policies = append(policies, string(j.RemotePolicy))
		jobSkills = append(jobSkills, j.RequiredSkills...)
	}
	in.JobIDs = ids
	in.JobSalaries = salaries
	in.JobPolicies = policies
	in.JobSkills = matching.NormalizedSkills(jobSkills)

	return fingerprint.Key(prefix, in)
}
