package dto

import (
	"strings"
	"testing"

	"smartmatch/internal/domain/matching"
)

func validRequest() MatchRequest {
	return MatchRequest{
		Candidate: CandidateDTO{Name: "Jordan", Skills: []string{"go"}},
		Jobs: []JobDTO{
			{ID: "j1", Title: "Backend Engineer", Company: "Acme"},
		},
	}
}

func TestMatchRequest_ValidateOK(t *testing.T) {
	if err := validRequest().Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestMatchRequest_ValidateRejections(t *testing.T) {
	neg := -1
	badCompleteness := validRequest()
	badCompleteness.Candidate.Questionnaire = &QuestionnaireDTO{Completeness: 150}

	noJobs := validRequest()
	noJobs.Jobs = nil

	negExp := validRequest()
	negExp.Candidate.YearsExperience = &neg

	blankJobID := validRequest()
	blankJobID.Jobs[0].ID = "  "

	badSalary := validRequest()
	badSalary.Jobs[0].Salary = &SalaryRangeDTO{Min: 90000, Max: 50000}

	badLimit := validRequest()
	badLimit.Options = &OptionsDTO{Limit: -2}

	badMinScore := validRequest()
	badMinScore.Options = &OptionsDTO{MinScore: 140}

	badAlgo := validRequest()
	badAlgo.Options = &OptionsDTO{Algorithm: "quantum"}

	cases := []struct {
		name string
		req  MatchRequest
		want string
	}{
		{"no jobs", noJobs, "jobs"},
		{"negative experience", negExp, "years_experience"},
		{"bad completeness", badCompleteness, "completeness"},
		{"blank job id", blankJobID, "id is required"},
		{"inverted salary", badSalary, "salary"},
		{"negative limit", badLimit, "limit"},
		{"min_score out of range", badMinScore, "min_score"},
		{"unknown algorithm", badAlgo, "algorithm"},
	}
	for _, c := range cases {
		err := c.req.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Fatalf("%s: expected error mentioning %q, got %v", c.name, c.want, err)
		}
	}
}

func TestMatchRequest_ToDomain(t *testing.T) {
	loc := "Paris"
	req := validRequest()
	req.Candidate.Location = &loc
	req.Candidate.Questionnaire = &QuestionnaireDTO{Complete: true, Completeness: 80}
	req.Jobs[0].Salary = &SalaryRangeDTO{Min: 45000, Max: 60000}
	req.Options = &OptionsDTO{Algorithm: "semantic", Limit: 10, MinScore: 40}

	candidate, jobs, opts, force := req.ToDomain()

	if candidate.Name != "Jordan" || candidate.Location == nil || *candidate.Location != "Paris" {
		t.Fatalf("unexpected candidate: %+v", candidate)
	}
	if candidate.Questionnaire == nil || !candidate.Questionnaire.Complete {
		t.Fatalf("questionnaire not mapped: %+v", candidate.Questionnaire)
	}
	if len(jobs) != 1 || jobs[0].Salary == nil || jobs[0].Salary.Max != 60000 {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
	if opts.Limit != 10 || opts.MinScore != 40 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if force == nil || *force != matching.AlgorithmSemantic {
		t.Fatalf("expected forced semantic, got %v", force)
	}
}

func TestMatchRequest_ToDomainWithoutOptions(t *testing.T) {
	_, _, opts, force := validRequest().ToDomain()
	if opts.Limit != 0 || opts.MinScore != 0 {
		t.Fatalf("expected zero options, got %+v", opts)
	}
	if force != nil {
		t.Fatalf("expected no forced algorithm, got %v", *force)
	}
}
