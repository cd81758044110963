package matching

import (
	"fmt"
	"sort"
	"strings"
)

// RemotePolicy is the shared remote-work enum for candidates and offers.
type RemotePolicy string

const (
	RemoteOnSite RemotePolicy = "on-site"
	RemoteFull   RemotePolicy = "remote"
	RemoteHybrid RemotePolicy = "hybrid"
)

// Questionnaire is the optional candidate questionnaire blob.
type Questionnaire struct {
	Complete            bool           `json:"complete"`
	BehavioralProfile   map[string]any `json:"behavioral_profile,omitempty"`
	DetailedPreferences map[string]any `json:"detailed_preferences,omitempty"`
	Completeness        float64        `json:"completeness"`
}

// CandidateProfile is built once per request and immutable afterwards.
type CandidateProfile struct {
	Name             string         `json:"name"`
	Contact          string         `json:"contact,omitempty"`
	Skills           []string       `json:"skills"`
	YearsExperience  *int           `json:"years_experience,omitempty"`
	Location         *string        `json:"location,omitempty"`
	MobilityRadiusKM *int           `json:"mobility_radius_km,omitempty"`
	DesiredSalary    *int           `json:"desired_salary,omitempty"`
	ContractTypes    []string       `json:"contract_types,omitempty"`
	RemotePreference RemotePolicy   `json:"remote_preference,omitempty"`
	Questionnaire    *Questionnaire `json:"questionnaire,omitempty"`
}

type SalaryRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type JobOffer struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Company            string         `json:"company"`
	Description        string         `json:"description,omitempty"`
	RequiredSkills     []string       `json:"required_skills,omitempty"`
	RequiredExperience *int           `json:"required_experience,omitempty"`
	Salary             *SalaryRange   `json:"salary,omitempty"`
	Location           *string        `json:"location,omitempty"`
	RemotePolicy       RemotePolicy   `json:"remote_policy,omitempty"`
	CompanyBlob        map[string]any `json:"company_questionnaire,omitempty"`
}

// AlgorithmSelection is the decision record produced by the selector.
type AlgorithmSelection struct {
	Algorithm     Algorithm       `json:"algorithm"`
	Score         float64         `json:"score"`
	Forced        bool            `json:"forced"`
	Reasons       []string        `json:"reasons"`
	Profile       RichnessProfile `json:"profile"`
	FallbackOrder []Algorithm     `json:"fallback_order"`
}

// MatchResult is one scored candidate/job pairing.
type MatchResult struct {
	JobID           string    `json:"job_id"`
	OverallScore    float64   `json:"overall_score"`
	SkillsScore     *float64  `json:"skills_score,omitempty"`
	ExperienceScore *float64  `json:"experience_score,omitempty"`
	LocationScore   *float64  `json:"location_score,omitempty"`
	SalaryScore     *float64  `json:"salary_score,omitempty"`
	MatchedSkills   []string  `json:"matched_skills,omitempty"`
	MissingSkills   []string  `json:"missing_skills,omitempty"`
	DistanceKM      *float64  `json:"distance_km,omitempty"`
	TravelTimeMin   *int      `json:"travel_time_min,omitempty"`
	TransportMode   *string   `json:"transport_mode,omitempty"`
	Explanation     string    `json:"explanation,omitempty"`
	Recommendation  string    `json:"recommendation,omitempty"`
	Algorithm       Algorithm `json:"algorithm"`
	Confidence      *float64  `json:"confidence,omitempty"`
}

// MatchingResponse is the envelope returned to callers. It is always
// well-formed, even when every backend failed.
type MatchingResponse struct {
	Matches           []MatchResult `json:"matches"`
	AlgorithmUsed     Algorithm     `json:"algorithm_used"`
	TotalJobsAnalyzed int           `json:"total_jobs_analyzed"`
	JobsMatched       int           `json:"jobs_matched"`
	AverageScore      float64       `json:"average_score"`
	FallbackUsed      bool          `json:"fallback_used"`
	ServicesUsed      []string      `json:"services_used,omitempty"`
	Recommendations   []string      `json:"recommendations,omitempty"`
	FromCache         bool          `json:"from_cache"`
	ProcessingMS      int64         `json:"processing_ms"`
	RequestID         string        `json:"request_id,omitempty"`
}

// Options are the caller-supplied knobs for one matching request.
type Options struct {
	Limit    int     `json:"limit,omitempty"`
	MinScore float64 `json:"min_score,omitempty"`
}

func (c CandidateProfile) Experience() int {
	if c.YearsExperience == nil {
		return 0
	}
	return *c.YearsExperience
}

func (c CandidateProfile) HasLocation() bool {
	return c.Location != nil && strings.TrimSpace(*c.Location) != ""
}

// NormalizedSkills lowercases, trims and deduplicates a skill list.
func NormalizedSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Validate enforces the score-bound contract for a backend-produced result.
func (m MatchResult) Validate() error {
	if strings.TrimSpace(m.JobID) == "" {
		return fmt.Errorf("match result missing job id")
	}
	if m.OverallScore < 0 || m.OverallScore > 100 {
		return fmt.Errorf("overall_score out of range: %.2f", m.OverallScore)
	}
	for name, s := range map[string]*float64{
		"skills_score":     m.SkillsScore,
		"experience_score": m.ExperienceScore,
		"location_score":   m.LocationScore,
		"salary_score":     m.SalaryScore,
	} {
		if s != nil && (*s < 0 || *s > 100) {
			return fmt.Errorf("%s out of range: %.2f", name, *s)
		}
	}
	if m.Confidence != nil && (*m.Confidence < 0 || *m.Confidence > 1) {
		return fmt.Errorf("confidence out of range: %.2f", *m.Confidence)
	}
	return nil
}

// SortMatches orders matches by overall score descending. The sort is stable
// so ties keep their original input order.
func SortMatches(matches []MatchResult) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].OverallScore > matches[j].OverallScore
	})
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
