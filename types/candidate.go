package types

import (
	"strconv"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// idLength matches the teacher pack's opaque-id convention: a fixed
// 21-character nanoid body regardless of prefix.
const idLength = 21

// SeedCandidateID is the literal id of the candidate created from the
// seed prompt at run start.
const SeedCandidateID = "seed"

// NewCandidateID generates an opaque candidate id of the form
// "cand_<21 random chars>". Panics only if the underlying CSPRNG fails,
// which go-nanoid documents as a fatal process condition.
func NewCandidateID() string {
	id, err := gonanoid.New(idLength)
	if err != nil {
		panic("types: failed to generate candidate id: " + err.Error())
	}
	return "cand_" + id
}

// IterationCandidateID builds the conventional id for a candidate accepted
// at a given iteration, e.g. "candidate-3".
func IterationCandidateID(iteration int) string {
	return "candidate-" + strconv.Itoa(iteration)
}

// PromptCandidate is a prompt text plus its scores and provenance within
// a run.
type PromptCandidate struct {
	ID                    string       `json:"id"`
	Prompt                string       `json:"prompt"`
	Metrics               MetricScores `json:"metrics"`
	Parents               []string     `json:"parents,omitempty"`
	OverallScore          float64      `json:"overallScore"`
	DiscoveredAtIteration int          `json:"discoveredAtIteration"`
}
