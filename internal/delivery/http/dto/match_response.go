package dto

import "smartmatch/internal/domain/matching"

type MatchResponse struct {
	Matches           []MatchResultDTO `json:"matches"`
	AlgorithmUsed     string           `json:"algorithm_used"`
	TotalJobsAnalyzed int              `json:"total_jobs_analyzed"`
	JobsMatched       int              `json:"jobs_matched"`
	AverageScore      float64          `json:"average_score"`
	FallbackUsed      bool             `json:"fallback_used"`
	ServicesUsed      []string         `json:"services_used,omitempty"`
	Recommendations   []string         `json:"recommendations,omitempty"`
	FromCache         bool             `json:"from_cache"`
	ProcessingMS      int64            `json:"processing_ms"`
	RequestID         string           `json:"request_id,omitempty"`
}

type MatchResultDTO struct {
	JobID           string   `json:"job_id"`
	OverallScore    float64  `json:"overall_score"`
	SkillsScore     *float64 `json:"skills_score,omitempty"`
	ExperienceScore *float64 `json:"experience_score,omitempty"`
	LocationScore   *float64 `json:"location_score,omitempty"`
	SalaryScore     *float64 `json:"salary_score,omitempty"`
	MatchedSkills   []string `json:"matched_skills,omitempty"`
	MissingSkills   []string `json:"missing_skills,omitempty"`
	DistanceKM      *float64 `json:"distance_km,omitempty"`
	TravelTimeMin   *int     `json:"travel_time_min,omitempty"`
	TransportMode   *string  `json:"transport_mode,omitempty"`
	Explanation     string   `json:"explanation,omitempty"`
	Recommendation  string   `json:"recommendation,omitempty"`
	Algorithm       string   `json:"algorithm"`
	Confidence      *float64 `json:"confidence,omitempty"`
}

func FromMatchingResponse(r *matching.MatchingResponse) MatchResponse {
	out := MatchResponse{
		Matches:           make([]MatchResultDTO, 0, len(r.Matches)),
		AlgorithmUsed:     string(r.AlgorithmUsed),
		TotalJobsAnalyzed: r.TotalJobsAnalyzed,
		JobsMatched:       r.JobsMatched,
		AverageScore:      r.AverageScore,
		FallbackUsed:      r.FallbackUsed,
		ServicesUsed:      r.ServicesUsed,
		Recommendations:   r.Recommendations,
		FromCache:         r.FromCache,
		ProcessingMS:      r.ProcessingMS,
		RequestID:         r.RequestID,
	}
	for _, m := range r.Matches {
		out.Matches = append(out.Matches, MatchResultDTO{
			JobID:           m.JobID,
			OverallScore:    m.OverallScore,
			SkillsScore:     m.SkillsScore,
			ExperienceScore: m.ExperienceScore,
			LocationScore:   m.LocationScore,
			SalaryScore:     m.SalaryScore,
			MatchedSkills:   m.MatchedSkills,
			MissingSkills:   m.MissingSkills,
			DistanceKM:      m.DistanceKM,
			TravelTimeMin:   m.TravelTimeMin,
			TransportMode:   m.TransportMode,
			Explanation:     m.Explanation,
			Recommendation:  m.Recommendation,
			Algorithm:       string(m.Algorithm),
			Confidence:      m.Confidence,
		})
	}
	return out
}
