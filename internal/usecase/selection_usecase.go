package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"smartmatch/internal/config"
	"smartmatch/internal/domain/matching"
	"smartmatch/internal/pkg/fingerprint"
)

// Store is the subset of the cache the usecases need.
type Store interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// SelectionUsecase chooses which scoring backend should handle a request.
// Select never fails: on malformed input it degrades to basic-fallback.
type SelectionUsecase interface {
	Select(ctx context.Context, candidate matching.CandidateProfile, jobs []matching.JobOffer, force *matching.Algorithm) matching.AlgorithmSelection
}

type Selection struct {
	cfg      config.SelectorConfig
	analyzer matching.AnalyzerConfig
	store    Store
	ttl      time.Duration
	logger   *log.Logger
}

func NewSelectionUsecase(cfg config.SelectorConfig, store Store, ttl time.Duration, logger *log.Logger) (*Selection, error) {
	ac := matching.AnalyzerConfig{
		QuestionnaireWeight:       cfg.QuestionnaireWeight,
		LocationWeight:            cfg.LocationWeight,
		SkillsWeight:              cfg.SkillsWeight,
		ExperienceWeight:          cfg.ExperienceWeight,
		ComplexSkillsThreshold:    cfg.ComplexSkillsThreshold,
		SeniorExperienceThreshold: cfg.SeniorExperienceThreshold,
	}
	if err := ac.Validate(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Selection{cfg: cfg, analyzer: ac, store: store, ttl: ttl, logger: logger}, nil
}

func (s *Selection) Select(ctx context.Context, candidate matching.CandidateProfile, jobs []matching.JobOffer, force *matching.Algorithm) matching.AlgorithmSelection {
	if force != nil && force.Valid() {
		return matching.AlgorithmSelection{
			Algorithm:     *force,
			Score:         100,
			Forced:        true,
			Reasons:       []string{fmt.Sprintf("algorithm %s forced by caller", *force)},
			FallbackOrder: matching.FallbackOrder(*force),
		}
	}

	if reason, ok := validateSelectionInput(candidate, jobs); !ok {
		if s.logger != nil {
			s.logger.Printf("[Selector] degraded to basic-fallback | reason=%q", reason)
		}
		return matching.AlgorithmSelection{
			Algorithm:     matching.AlgorithmBasic,
			Score:         0,
			Reasons:       []string{"degraded to basic-fallback: " + reason},
			FallbackOrder: matching.FallbackOrder(matching.AlgorithmBasic),
		}
	}

	key := selectionCacheKey(candidate, jobs)
	if s.store != nil {
		var cached matching.AlgorithmSelection
		if hit, err := s.store.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached
		}
	}

	profile := matching.Analyze(candidate, jobs, s.analyzer)
	algo, reasons := s.applyRules(profile, len(jobs))

	sel := matching.AlgorithmSelection{
		Algorithm:     algo,
		Score:         profile.GlobalScore,
		Reasons:       reasons,
		Profile:       profile,
		FallbackOrder: matching.FallbackOrder(algo),
	}

	if s.store != nil {
		if err := s.store.SetJSON(ctx, key, sel, s.ttl); err != nil && s.logger != nil {
			s.logger.Printf("[Selector] cache write failed | key=%s err=%v", key, err)
		}
	}
	return sel
}

// applyRules walks the ordered decision rules; first match wins.
func (s *Selection) applyRules(p matching.RichnessProfile, jobCount int) (matching.Algorithm, []string) {
	if p.GlobalScore >= s.cfg.NextenMinScore && p.HasCompleteQuestionnaire {
		return matching.AlgorithmML, []string{
			fmt.Sprintf("global richness %.1f >= %.1f and questionnaire is complete", p.GlobalScore, s.cfg.NextenMinScore),
		}
	}

	if jobCount >= 20 {
		need := validationNeed(jobCount, p.IsSeniorProfile)
		if need >= 0.8 {
			return matching.AlgorithmHybrid, []string{
				fmt.Sprintf("%d jobs with validation need %.2f >= 0.80", jobCount, need),
			}
		}
	}

	if p.IsSeniorProfile && p.ExperienceScore >= 60 {
		return matching.AlgorithmExperience, []string{
			fmt.Sprintf("senior profile with experience score %.1f >= 60", p.ExperienceScore),
		}
	}

	if p.HasLocationData && p.LocationScore > 50 {
		return matching.AlgorithmGeo, []string{
			fmt.Sprintf("location data present with location score %.1f > 50", p.LocationScore),
		}
	}

	if p.HasComplexSkills && p.SkillsScore > 50 {
		return matching.AlgorithmSemantic, []string{
			fmt.Sprintf("complex skill set with skills score %.1f > 50", p.SkillsScore),
		}
	}

	return matching.AlgorithmBasic, []string{"no specialized rule matched, using basic fallback"}
}

func validationNeed(jobCount int, senior bool) float64 {
	need := float64(jobCount) / 20
	if need > 1 {
		need = 1
	}
	if !senior {
		need *= 0.6
	}
	return need
}

func validateSelectionInput(candidate matching.CandidateProfile, jobs []matching.JobOffer) (string, bool) {
	if candidate.YearsExperience != nil && *candidate.YearsExperience < 0 {
		return "negative years of experience", false
	}
	if len(jobs) == 0 {
		return "no jobs provided", false
	}
	for i, j := range jobs {
		if j.ID == "" {
			return fmt.Sprintf("job %d has no id", i), false
		}
	}
	return "", true
}

type selectionKeyInput struct {
	Skills       []string `json:"skills"`
	Experience   int      `json:"experience"`
	Location     string   `json:"location"`
	QComplete    bool     `json:"q_complete"`
	JobSkills    []string `json:"job_skills"`
	JobLocations []string `json:"job_locations"`
	JobCount     int      `json:"job_count"`
}

func selectionCacheKey(candidate matching.CandidateProfile, jobs []matching.JobOffer) string {
	in := selectionKeyInput{
		Skills:     matching.NormalizedSkills(candidate.Skills),
		Experience: candidate.Experience(),
		JobCount:   len(jobs),
	}
	if candidate.Location != nil {
		in.Location = *candidate.Location
	}
	if candidate.Questionnaire != nil {
		in.QComplete = candidate.Questionnaire.Complete
	}

	var jobSkills, jobLocations []string
	for _, j := range jobs {
		jobSkills = append(jobSkills, j.RequiredSkills...)
		if j.Location != nil {
			jobLocations = append(jobLocations, *j.Location)
		}
	}
	in.JobSkills = matching.NormalizedSkills(jobSkills)
	in.JobLocations = matching.NormalizedSkills(jobLocations)

	return fingerprint.Key("selection:", in)
}

var _ SelectionUsecase = (*Selection)(nil)
