package matching

import "strings"

// Algorithm identifies one of the interchangeable scoring backends.
type Algorithm string

const (
	AlgorithmML         Algorithm = "ml-backend"
	AlgorithmGeo        Algorithm = "geo-optimized"
	AlgorithmExperience Algorithm = "experience-weighted"
	AlgorithmSemantic   Algorithm = "semantic"
	AlgorithmHybrid     Algorithm = "hybrid"
	AlgorithmBasic      Algorithm = "basic-fallback"
)

// fallbackPriority is the static ordering used to build fallback chains.
// Hybrid is excluded: it is a combination strategy, never a fallback target.
var fallbackPriority = []Algorithm{
	AlgorithmML,
	AlgorithmExperience,
	AlgorithmGeo,
	AlgorithmSemantic,
	AlgorithmBasic,
}

func (a Algorithm) Valid() bool {
	switch a {
	case AlgorithmML, AlgorithmGeo, AlgorithmExperience, AlgorithmSemantic, AlgorithmHybrid, AlgorithmBasic:
		return true
	}
	return false
}

func (a Algorithm) String() string {
	return string(a)
}

func ParseAlgorithm(s string) (Algorithm, bool) {
	a := Algorithm(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", false
	}
	return a, true
}

func AllAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmML,
		AlgorithmGeo,
		AlgorithmExperience,
		AlgorithmSemantic,
		AlgorithmHybrid,
		AlgorithmBasic,
	}
}

// FallbackOrder returns the static priority list minus the selected algorithm.
func FallbackOrder(selected Algorithm) []Algorithm {
	out := make([]Algorithm, 0, len(fallbackPriority))
	for _, a := range fallbackPriority {
		if a == selected {
			continue
		}
		out = append(out, a)
	}
	return out
}
