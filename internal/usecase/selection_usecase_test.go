package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"smartmatch/internal/config"
	"smartmatch/internal/domain/matching"
)

func testSelectorConfig() config.SelectorConfig {
	return config.SelectorConfig{
		NextenMinScore:            80,
		SeniorExperienceThreshold: 7,
		ComplexSkillsThreshold:    5,
		QuestionnaireWeight:       0.4,
		LocationWeight:            0.2,
		SkillsWeight:              0.2,
		ExperienceWeight:          0.2,
	}
}

type memStore struct {
	m    map[string][]byte
	sets int
}

func newMemStore() *memStore { return &memStore{m: make(map[string][]byte)} }

func (s *memStore) GetJSON(_ context.Context, key string, out any) (bool, error) {
	raw, ok := s.m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (s *memStore) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.m[key] = raw
	s.sets++
	return nil
}

func newTestSelector(t *testing.T, store Store) *Selection {
	t.Helper()
	s, err := NewSelectionUsecase(testSelectorConfig(), store, time.Minute, nil)
	if err != nil {
		t.Fatalf("NewSelectionUsecase: %v", err)
	}
	return s
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func fullQuestionnaire() *matching.Questionnaire {
	return &matching.Questionnaire{
		Complete:            true,
		BehavioralProfile:   map[string]any{"style": "collaborative"},
		DetailedPreferences: map[string]any{"remote": "hybrid"},
		Completeness:        90,
	}
}

func jobsWithLocation(n int) []matching.JobOffer {
	out := make([]matching.JobOffer, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, matching.JobOffer{
			ID:             string(rune('a'+i%26)) + "-job",
			Title:          "Engineer",
			Company:        "Acme",
			Location:       strPtr("Lyon"),
			RequiredSkills: []string{"go", "sql"},
		})
	}
	return out
}

func TestSelect_RichProfileGoesML(t *testing.T) {
	s := newTestSelector(t, nil)

	candidate := matching.CandidateProfile{
		Name:             "Jordan",
		Skills:           []string{"go", "python", "kubernetes", "postgres", "redis", "terraform"},
		YearsExperience:  intPtr(9),
		Location:         strPtr("Paris"),
		MobilityRadiusKM: intPtr(25),
		Questionnaire:    fullQuestionnaire(),
	}

	sel := s.Select(context.Background(), candidate, jobsWithLocation(3), nil)
	if sel.Algorithm != matching.AlgorithmML {
		t.Fatalf("expected ml-backend, got %s (reasons %v)", sel.Algorithm, sel.Reasons)
	}
	if sel.Forced {
		t.Fatalf("selection must not be marked forced")
	}
	if len(sel.Reasons) == 0 {
		t.Fatalf("expected at least one reason")
	}
}

func TestSelect_LargeSeniorBatchGoesHybrid(t *testing.T) {
	s := newTestSelector(t, nil)

	// Senior, but questionnaire is incomplete so the ML rule cannot fire.
	candidate := matching.CandidateProfile{
		Name:            "Sam",
		Skills:          []string{"go"},
		YearsExperience: intPtr(8),
	}

	sel := s.Select(context.Background(), candidate, jobsWithLocation(20), nil)
	if sel.Algorithm != matching.AlgorithmHybrid {
		t.Fatalf("expected hybrid, got %s (reasons %v)", sel.Algorithm, sel.Reasons)
	}
}

func TestSelect_JuniorLargeBatchSkipsHybrid(t *testing.T) {
	s := newTestSelector(t, nil)

	// 20 jobs but junior: validation need = 1.0 * 0.6 = 0.6 < 0.8.
	candidate := matching.CandidateProfile{
		Name:            "Kim",
		Skills:          []string{"go"},
		YearsExperience: intPtr(2),
	}

	sel := s.Select(context.Background(), candidate, jobsWithLocation(20), nil)
	if sel.Algorithm == matching.AlgorithmHybrid {
		t.Fatalf("junior batch must not trigger hybrid")
	}
}

func TestSelect_SeniorGoesExperienceWeighted(t *testing.T) {
	s := newTestSelector(t, nil)

	// 13 years gives experience score 65 > 60.
	candidate := matching.CandidateProfile{
		Name:            "Robin",
		Skills:          []string{"go"},
		YearsExperience: intPtr(13),
	}

	sel := s.Select(context.Background(), candidate, jobsWithLocation(3), nil)
	if sel.Algorithm != matching.AlgorithmExperience {
		t.Fatalf("expected experience-weighted, got %s (reasons %v)", sel.Algorithm, sel.Reasons)
	}
}

func TestSelect_TwelveYearSeniorHitsExperienceBoundary(t *testing.T) {
	s := newTestSelector(t, nil)

	// 12 years lands exactly on the experience score boundary (60). With no
	// location, no questionnaire and one skill, no other rule can serve a
	// senior profile, so the boundary must count as a match.
	candidate := matching.CandidateProfile{
		Name:            "Noa",
		Skills:          []string{"go"},
		YearsExperience: intPtr(12),
	}
	jobs := []matching.JobOffer{{ID: "j1", Title: "Engineer", Company: "Acme"}}

	sel := s.Select(context.Background(), candidate, jobs, nil)
	if sel.Algorithm != matching.AlgorithmExperience {
		t.Fatalf("expected experience-weighted at the score boundary, got %s (reasons %v)", sel.Algorithm, sel.Reasons)
	}
}

func TestSelect_LocationRichGoesGeo(t *testing.T) {
	s := newTestSelector(t, nil)

	candidate := matching.CandidateProfile{
		Name:            "Ana",
		Skills:          []string{"go"},
		YearsExperience: intPtr(3),
		Location:        strPtr("Marseille"),
	}

	sel := s.Select(context.Background(), candidate, jobsWithLocation(3), nil)
	if sel.Algorithm != matching.AlgorithmGeo {
		t.Fatalf("expected geo-optimized, got %s (reasons %v)", sel.Algorithm, sel.Reasons)
	}
}

func TestSelect_ComplexSkillsGoSemantic(t *testing.T) {
	s := newTestSelector(t, nil)

	// Six skills, no location, junior: only the semantic rule can fire.
	candidate := matching.CandidateProfile{
		Name:            "Lee",
		Skills:          []string{"go", "python", "rust", "kafka", "redis", "postgres"},
		YearsExperience: intPtr(2),
	}
	jobs := []matching.JobOffer{{ID: "j1", Title: "Engineer", Company: "Acme"}}

	sel := s.Select(context.Background(), candidate, jobs, nil)
	if sel.Algorithm != matching.AlgorithmSemantic {
		t.Fatalf("expected semantic, got %s (reasons %v)", sel.Algorithm, sel.Reasons)
	}
}

func TestSelect_SparseInputGoesBasic(t *testing.T) {
	s := newTestSelector(t, nil)

	candidate := matching.CandidateProfile{Name: "Pat", Skills: []string{"go"}}
	jobs := []matching.JobOffer{{ID: "j1", Title: "Engineer", Company: "Acme"}}

	sel := s.Select(context.Background(), candidate, jobs, nil)
	if sel.Algorithm != matching.AlgorithmBasic {
		t.Fatalf("expected basic-fallback, got %s (reasons %v)", sel.Algorithm, sel.Reasons)
	}
}

func TestSelect_ForcedBypassesAnalysis(t *testing.T) {
	s := newTestSelector(t, nil)

	force := matching.AlgorithmSemantic
	sel := s.Select(context.Background(), matching.CandidateProfile{}, nil, &force)

	if !sel.Forced || sel.Algorithm != matching.AlgorithmSemantic {
		t.Fatalf("expected forced semantic, got %+v", sel)
	}
	if sel.Score != 100 {
		t.Fatalf("forced selection must score 100, got %.1f", sel.Score)
	}
	for _, a := range sel.FallbackOrder {
		if a == matching.AlgorithmSemantic {
			t.Fatalf("fallback order must not repeat the forced algorithm")
		}
	}
}

func TestSelect_DegradesOnBadInput(t *testing.T) {
	s := newTestSelector(t, nil)

	cases := []struct {
		name      string
		candidate matching.CandidateProfile
		jobs      []matching.JobOffer
	}{
		{"no jobs", matching.CandidateProfile{Name: "A"}, nil},
		{"negative experience", matching.CandidateProfile{Name: "A", YearsExperience: intPtr(-1)}, jobsWithLocation(2)},
		{"job without id", matching.CandidateProfile{Name: "A"}, []matching.JobOffer{{Title: "x", Company: "y"}}},
	}
	for _, c := range cases {
		sel := s.Select(context.Background(), c.candidate, c.jobs, nil)
		if sel.Algorithm != matching.AlgorithmBasic {
			t.Fatalf("%s: expected basic-fallback, got %s", c.name, sel.Algorithm)
		}
		if len(sel.Reasons) == 0 {
			t.Fatalf("%s: expected a degradation reason", c.name)
		}
	}
}

func TestSelect_Deterministic(t *testing.T) {
	s := newTestSelector(t, nil)

	candidate := matching.CandidateProfile{
		Name:            "Robin",
		Skills:          []string{"go", "sql"},
		YearsExperience: intPtr(13),
	}
	jobs := jobsWithLocation(4)

	first := s.Select(context.Background(), candidate, jobs, nil)
	for i := 0; i < 5; i++ {
		again := s.Select(context.Background(), candidate, jobs, nil)
		if again.Algorithm != first.Algorithm || again.Score != first.Score {
			t.Fatalf("selection not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestSelect_UsesCache(t *testing.T) {
	store := newMemStore()
	s := newTestSelector(t, store)

	candidate := matching.CandidateProfile{
		Name:            "Robin",
		Skills:          []string{"go", "sql"},
		YearsExperience: intPtr(13),
	}
	jobs := jobsWithLocation(4)

	first := s.Select(context.Background(), candidate, jobs, nil)
	if store.sets != 1 {
		t.Fatalf("expected one cache write, got %d", store.sets)
	}

	second := s.Select(context.Background(), candidate, jobs, nil)
	if store.sets != 1 {
		t.Fatalf("cache hit must not rewrite, got %d writes", store.sets)
	}
	if second.Algorithm != first.Algorithm {
		t.Fatalf("cached selection differs: %s vs %s", second.Algorithm, first.Algorithm)
	}
}

func TestSelect_CandidateNameDoesNotAffectCacheKey(t *testing.T) {
	jobs := jobsWithLocation(4)
	a := selectionCacheKey(matching.CandidateProfile{Name: "Ann", Skills: []string{"go"}}, jobs)
	b := selectionCacheKey(matching.CandidateProfile{Name: "Ben", Skills: []string{"go"}}, jobs)
	if a != b {
		t.Fatalf("cache key must ignore identity fields")
	}

	c := selectionCacheKey(matching.CandidateProfile{Name: "Ann", Skills: []string{"rust"}}, jobs)
	if a == c {
		t.Fatalf("cache key must react to skill changes")
	}
}
