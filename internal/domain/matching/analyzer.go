package matching

import (
	"fmt"
	"math"
)

// RichnessProfile describes how complete the input data is. Every sub-score
// lives in [0,100].
type RichnessProfile struct {
	QuestionnaireScore float64 `json:"questionnaire_score"`
	LocationScore      float64 `json:"location_score"`
	SkillsScore        float64 `json:"skills_score"`
	ExperienceScore    float64 `json:"experience_score"`
	GlobalScore        float64 `json:"global_score"`

	HasCompleteQuestionnaire bool `json:"has_complete_questionnaire"`
	HasLocationData          bool `json:"has_location_data"`
	HasComplexSkills         bool `json:"has_complex_skills"`
	IsSeniorProfile          bool `json:"is_senior_profile"`

	Warnings []string `json:"warnings,omitempty"`
}

// AnalyzerConfig carries the richness weights and flag thresholds. Weights
// must sum to 1.0.
type AnalyzerConfig struct {
	QuestionnaireWeight float64
	LocationWeight      float64
	SkillsWeight        float64
	ExperienceWeight    float64

	ComplexSkillsThreshold    int
	SeniorExperienceThreshold int
}

func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		QuestionnaireWeight:       0.4,
		LocationWeight:            0.2,
		SkillsWeight:              0.2,
		ExperienceWeight:          0.2,
		ComplexSkillsThreshold:    5,
		SeniorExperienceThreshold: 7,
	}
}

func (c AnalyzerConfig) Validate() error {
	sum := c.QuestionnaireWeight + c.LocationWeight + c.SkillsWeight + c.ExperienceWeight
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("richness weights must sum to 1.0, got %.4f", sum)
	}
	if c.ComplexSkillsThreshold <= 0 || c.SeniorExperienceThreshold <= 0 {
		return fmt.Errorf("analyzer thresholds must be positive")
	}
	return nil
}

// Analyze computes the richness profile for one candidate against a job set.
// Pure function of its inputs and config.
func Analyze(candidate CandidateProfile, jobs []JobOffer, cfg AnalyzerConfig) RichnessProfile {
	skills := NormalizedSkills(candidate.Skills)

	p := RichnessProfile{
		QuestionnaireScore: questionnaireScore(candidate.Questionnaire),
		LocationScore:      locationScore(candidate, jobs),
		SkillsScore:        skillsScore(len(skills), jobs),
		ExperienceScore:    experienceScore(candidate.Experience()),
	}

	p.GlobalScore = Clamp(
		cfg.QuestionnaireWeight*p.QuestionnaireScore+
			cfg.LocationWeight*p.LocationScore+
			cfg.SkillsWeight*p.SkillsScore+
			cfg.ExperienceWeight*p.ExperienceScore,
		0, 100)

	p.HasCompleteQuestionnaire = candidate.Questionnaire != nil && candidate.Questionnaire.Complete
	p.HasLocationData = candidate.HasLocation()
	p.HasComplexSkills = len(skills) >= cfg.ComplexSkillsThreshold
	p.IsSeniorProfile = candidate.Experience() >= cfg.SeniorExperienceThreshold

	if p.QuestionnaireScore < 50 {
		p.Warnings = append(p.Warnings, fmt.Sprintf("questionnaire data is sparse (score %.1f)", p.QuestionnaireScore))
	}
	if !p.HasLocationData {
		p.Warnings = append(p.Warnings, "candidate location is missing, geo scoring will be weak")
	}
	if len(skills) < 3 {
		p.Warnings = append(p.Warnings, fmt.Sprintf("only %d distinct skills provided", len(skills)))
	}

	return p
}

func questionnaireScore(q *Questionnaire) float64 {
	if q == nil {
		return 0
	}
	var score float64
	if q.Complete {
		score += 40
	}
	if len(q.BehavioralProfile) > 0 {
		score += 20
	}
	if len(q.DetailedPreferences) > 0 {
		score += 20
	}
	score += 0.2 * Clamp(q.Completeness, 0, 100)
	return Clamp(score, 0, 100)
}

func locationScore(candidate CandidateProfile, jobs []JobOffer) float64 {
	var score float64
	if candidate.HasLocation() {
		score += 30
	}
	if candidate.MobilityRadiusKM != nil {
		score += 25
	}
	for _, j := range jobs {
		if j.Location != nil && *j.Location != "" {
			score += 45
			break
		}
	}
	return Clamp(score, 0, 100)
}

func skillsScore(skillCount int, jobs []JobOffer) float64 {
	base := math.Min(100, float64(skillCount)/10*100)

	// Demanding offers push the complexity up a little.
	if len(jobs) > 0 {
		var total int
		for _, j := range jobs {
			total += len(NormalizedSkills(j.RequiredSkills))
		}
		avg := float64(total) / float64(len(jobs))
		base += math.Min(20, avg*2)
	}
	return Clamp(base, 0, 100)
}

func experienceScore(years int) float64 {
	if years < 0 {
		return 0
	}
	return math.Min(100, float64(years)/20*100)
}
