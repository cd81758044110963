package dto

import (
	"fmt"
	"strings"

	"smartmatch/internal/domain/matching"
)

// MatchRequest is the caller-facing request body. It is validated once at the
// boundary and converted to domain types; internal components never see raw
// payload maps.
type MatchRequest struct {
	Candidate CandidateDTO `json:"candidate"`
	Jobs      []JobDTO     `json:"jobs"`
	Options   *OptionsDTO  `json:"options,omitempty"`
}

type CandidateDTO struct {
	Name             string            `json:"name"`
	Contact          string            `json:"contact,omitempty"`
	Skills           []string          `json:"skills"`
	YearsExperience  *int              `json:"years_experience,omitempty"`
	Location         *string           `json:"location,omitempty"`
	MobilityRadiusKM *int              `json:"mobility_radius_km,omitempty"`
	DesiredSalary    *int              `json:"desired_salary,omitempty"`
	ContractTypes    []string          `json:"contract_types,omitempty"`
	RemotePreference string            `json:"remote_preference,omitempty"`
	Questionnaire    *QuestionnaireDTO `json:"questionnaire,omitempty"`
}

type QuestionnaireDTO struct {
	Complete            bool           `json:"complete"`
	BehavioralProfile   map[string]any `json:"behavioral_profile,omitempty"`
	DetailedPreferences map[string]any `json:"detailed_preferences,omitempty"`
	Completeness        float64        `json:"completeness"`
}

type JobDTO struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Company            string          `json:"company"`
	Description        string          `json:"description,omitempty"`
	RequiredSkills     []string        `json:"required_skills,omitempty"`
	RequiredExperience *int            `json:"required_experience,omitempty"`
	Salary             *SalaryRangeDTO `json:"salary,omitempty"`
	Location           *string         `json:"location,omitempty"`
	RemotePolicy       string          `json:"remote_policy,omitempty"`
	CompanyBlob        map[string]any  `json:"company_questionnaire,omitempty"`
}

type SalaryRangeDTO struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type OptionsDTO struct {
	Algorithm string  `json:"algorithm,omitempty"`
	Limit     int     `json:"limit,omitempty"`
	MinScore  float64 `json:"min_score,omitempty"`
}

func (r MatchRequest) Validate() error {
	if len(r.Jobs) == 0 {
		return fmt.Errorf("jobs must not be empty")
	}
	if r.Candidate.YearsExperience != nil && *r.Candidate.YearsExperience < 0 {
		return fmt.Errorf("candidate years_experience must be non-negative")
	}
	if r.Candidate.Questionnaire != nil {
		c := r.Candidate.Questionnaire.Completeness
		if c < 0 || c > 100 {
			return fmt.Errorf("questionnaire completeness must be in [0,100]")
		}
	}
	for i, j := range r.Jobs {
		if strings.TrimSpace(j.ID) == "" {
			return fmt.Errorf("job %d: id is required", i)
		}
		if j.Salary != nil && j.Salary.Min > j.Salary.Max {
			return fmt.Errorf("job %d: salary min exceeds max", i)
		}
	}
	if r.Options != nil {
		if r.Options.Limit < 0 {
			return fmt.Errorf("options limit must be non-negative")
		}
		if r.Options.MinScore < 0 || r.Options.MinScore > 100 {
			return fmt.Errorf("options min_score must be in [0,100]")
		}
		if r.Options.Algorithm != "" {
			if _, ok := matching.ParseAlgorithm(r.Options.Algorithm); !ok {
				return fmt.Errorf("unknown algorithm %q", r.Options.Algorithm)
			}
		}
	}
	return nil
}

func (r MatchRequest) ToDomain() (matching.CandidateProfile, []matching.JobOffer, matching.Options, *matching.Algorithm) {
	candidate := matching.CandidateProfile{
		Name:             r.Candidate.Name,
		Contact:          r.Candidate.Contact,
		Skills:           r.Candidate.Skills,
		YearsExperience:  r.Candidate.YearsExperience,
		Location:         r.Candidate.Location,
		MobilityRadiusKM: r.Candidate.MobilityRadiusKM,
		DesiredSalary:    r.Candidate.DesiredSalary,
		ContractTypes:    r.Candidate.ContractTypes,
		RemotePreference: matching.RemotePolicy(r.Candidate.RemotePreference),
	}
	if r.Candidate.Questionnaire != nil {
		candidate.Questionnaire = &matching.Questionnaire{
			Complete:            r.Candidate.Questionnaire.Complete,
			BehavioralProfile:   r.Candidate.Questionnaire.BehavioralProfile,
			DetailedPreferences: r.Candidate.Questionnaire.DetailedPreferences,
			Completeness:        r.Candidate.Questionnaire.Completeness,
		}
	}

	jobs := make([]matching.JobOffer, 0, len(r.Jobs))
	for _, j := range r.Jobs {
		offer := matching.JobOffer{
			ID:                 j.ID,
			Title:              j.Title,
			Company:            j.Company,
			Description:        j.Description,
			RequiredSkills:     j.RequiredSkills,
			RequiredExperience: j.RequiredExperience,
			Location:           j.Location,
			RemotePolicy:       matching.RemotePolicy(j.RemotePolicy),
			CompanyBlob:        j.CompanyBlob,
		}
		if j.Salary != nil {
			offer.Salary = &matching.SalaryRange{Min: j.Salary.Min, Max: j.Salary.Max}
		}
		jobs = append(jobs, offer)
	}

	var opts matching.Options
	var force *matching.Algorithm
	if r.Options != nil {
		opts = matching.Options{Limit: r.Options.Limit, MinScore: r.Options.MinScore}
		if r.Options.Algorithm != "" {
			if a, ok := matching.ParseAlgorithm(r.Options.Algorithm); ok {
				force = &a
			}
		}
	}
	return candidate, jobs, opts, force
}
