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

const mlDefaultConfidence = 0.8

// MLAdapter talks to the Nexten ML matching service.
type MLAdapter struct {
	baseURL    string
	client     *http.Client
	store      Store
	resultTTL  time.Duration
	maxRetries int
	logger     *log.Logger
}

func NewMLAdapter(baseURL string, timeout time.Duration, maxRetries int, store Store, resultTTL time.Duration, logger *log.Logger) *MLAdapter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MLAdapter{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:     &http.Client{Timeout: timeout},
		store:      store,
		resultTTL:  resultTTL,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

func (a *MLAdapter) Name() string { return "nexten-matcher" }

type mlQuestionnaire struct {
	Complete            bool           `json:"complete"`
	BehavioralProfile   map[string]any `json:"behavioral_profile,omitempty"`
	DetailedPreferences map[string]any `json:"detailed_preferences,omitempty"`
	Completeness        float64        `json:"completeness"`
}

type mlCandidate struct {
	Name             string           `json:"name"`
	Skills           []string         `json:"skills"`
	ExperienceYears  int              `json:"experience_years"`
	Location         string           `json:"location,omitempty"`
	MobilityRadiusKM int              `json:"mobility_radius_km,omitempty"`
	DesiredSalary    int              `json:"desired_salary,omitempty"`
	ContractTypes    []string         `json:"contract_types,omitempty"`
	RemotePreference string           `json:"remote_preference,omitempty"`
	Questionnaire    *mlQuestionnaire `json:"questionnaire,omitempty"`
}

type mlSalaryRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type mlOffer struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Company         string         `json:"company"`
	Description     string         `json:"description,omitempty"`
	RequiredSkills  []string       `json:"required_skills,omitempty"`
	ExperienceYears *int           `json:"experience_years,omitempty"`
	Salary          *mlSalaryRange `json:"salary,omitempty"`
	Location        string         `json:"location,omitempty"`
	RemotePolicy    string         `json:"remote_policy,omitempty"`
	CompanyBlob     map[string]any `json:"company_questionnaire,omitempty"`
}

type mlRequest struct {
	Candidate mlCandidate      `json:"candidate"`
	Offers    []mlOffer        `json:"offers"`
	Options   matching.Options `json:"options"`
}

type mlSubScores struct {
	Skills     *float64 `json:"skills,omitempty"`
	Experience *float64 `json:"experience,omitempty"`
	Location   *float64 `json:"location,omitempty"`
	Salary     *float64 `json:"salary,omitempty"`
}

type mlMatch struct {
	OfferID       string       `json:"offer_id"`
	Score         float64      `json:"score"`
	Scores        *mlSubScores `json:"scores,omitempty"`
	MatchedSkills []string     `json:"matched_skills,omitempty"`
	MissingSkills []string     `json:"missing_skills,omitempty"`
	Confidence    *float64     `json:"confidence,omitempty"`
	Explanation   string       `json:"explanation,omitempty"`
}

type mlResponse struct {
	Matches []mlMatch `json:"matches"`
}

func (a *MLAdapter) Execute(ctx context.Context, algo matching.Algorithm, candidate matching.CandidateProfile, jobs []matching.JobOffer, opts matching.Options) (*matching.MatchingResponse, error) {
	key := resultCacheKey("match:nexten:", algo, candidate, jobs, opts)
	if a.store != nil {
		var cached matching.MatchingResponse
		if hit, err := a.store.GetJSON(ctx, key, &cached); err == nil && hit {
			cached.FromCache = true
			return &cached, nil
		}
	}

	payload := mlRequest{
		Candidate: toWireCandidate(candidate),
		Offers:    toWireOffers(jobs),
		Options:   opts,
	}

	raw, err := postJSON(ctx, a.client, a.baseURL+"/match", payload, a.maxRetries, a.logger, "MLAdapter")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExecution, a.Name(), err)
	}

	var wire mlResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	resp, err := a.fromWire(wire, len(jobs))
	if err != nil {
		return nil, err
	}

	if a.store != nil {
		if err := a.store.SetJSON(ctx, key, resp, a.resultTTL); err != nil && a.logger != nil {
			a.logger.Printf("[MLAdapter] cache write failed | key=%s err=%v", key, err)
		}
	}
	return resp, nil
}

func toWireCandidate(c matching.CandidateProfile) mlCandidate {
	out := mlCandidate{
		Name:             c.Name,
		Skills:           matching.NormalizedSkills(c.Skills),
		ExperienceYears:  c.Experience(),
		ContractTypes:    c.ContractTypes,
		RemotePreference: string(c.RemotePreference),
	}
	if c.Location != nil {
		out.Location = *c.Location
	}
	if c.MobilityRadiusKM != nil {
		out.MobilityRadiusKM = *c.MobilityRadiusKM
	}
	if c.DesiredSalary != nil {
		out.DesiredSalary = *c.DesiredSalary
	}
	if c.Questionnaire != nil {
		out.Questionnaire = &mlQuestionnaire{
			Complete:            c.Questionnaire.Complete,
			BehavioralProfile:   c.Questionnaire.BehavioralProfile,
			DetailedPreferences: c.Questionnaire.DetailedPreferences,
			Completeness:        c.Questionnaire.Completeness,
		}
	}
	return out
}

func toWireOffers(jobs []matching.JobOffer) []mlOffer {
	out := make([]mlOffer, 0, len(jobs))
	for _, j := range jobs {
		o := mlOffer{
			ID:              j.ID,
			Title:           j.Title,
			Company:         j.Company,
			Description:     j.Description,
			RequiredSkills:  j.RequiredSkills,
			ExperienceYears: j.RequiredExperience,
			RemotePolicy:    string(j.RemotePolicy),
			CompanyBlob:     j.CompanyBlob,
		}
		if j.Salary != nil {
			o.Salary = &mlSalaryRange{Min: j.Salary.Min, Max: j.Salary.Max}
		}
		if j.Location != nil {
			o.Location = *j.Location
		}
		out = append(out, o)
	}
	return out
}

func (a *MLAdapter) fromWire(wire mlResponse, totalJobs int) (*matching.MatchingResponse, error) {
	results := make([]matching.MatchResult, 0, len(wire.Matches))
	for _, m := range wire.Matches {
		r := matching.MatchResult{
			JobID:         m.OfferID,
			OverallScore:  m.Score,
			MatchedSkills: m.MatchedSkills,
			MissingSkills: m.MissingSkills,
			Explanation:   m.Explanation,
			Algorithm:     matching.AlgorithmML,
			Confidence:    m.Confidence,
		}
		if m.Scores != nil {
			r.SkillsScore = m.Scores.Skills
			r.ExperienceScore = m.Scores.Experience
			r.LocationScore = m.Scores.Location
			r.SalaryScore = m.Scores.Salary
		}
		if r.Confidence == nil {
			c := mlDefaultConfidence
			r.Confidence = &c
		}
		results = append(results, r)
	}

	if err := validateMatches(results); err != nil {
		return nil, err
	}

	resp := &matching.MatchingResponse{
		Matches:       results,
		AlgorithmUsed: matching.AlgorithmML,
		ServicesUsed:  []string{a.Name()},
	}
	finalizeResponse(resp, totalJobs)
	return resp, nil
}

var _ Adapter = (*MLAdapter)(nil)
