// Package events defines the optimization loop's progress record and the
// sink contract a host injects to receive it.
package events

import "github.com/weave-labs/gepa/types"

// Kind identifies the shape of an Event's kind-specific fields.
type Kind string

const (
	KindStart             Kind = "start"
	KindSeedEvaluated     Kind = "seed_evaluated"
	KindIterationStart    Kind = "iteration_start"
	KindSampleGenerated   Kind = "sample_generated"
	KindSampleJudged      Kind = "sample_judged"
	KindIterationAccepted Kind = "iteration_accepted"
	KindIterationRejected Kind = "iteration_rejected"
	KindIterationError    Kind = "iteration_error"
	KindReflectionFailed  Kind = "reflection_failed"
	KindComplete          Kind = "complete"
	KindError             Kind = "error"
)

// Event is one progress record emitted by the optimization loop. Fields
// not meaningful for a given Kind are left zero.
type Event struct {
	Kind      Kind   `json:"kind"`
	Iteration int    `json:"iteration"`
	Message   string `json:"message"`

	// Acceptance / rejection fields.
	BatchScore      float64            `json:"batchScore,omitempty"`
	ImprovedScore   float64            `json:"improvedScore,omitempty"`
	BestScore       float64            `json:"bestScore,omitempty"`
	Metrics         types.MetricScores `json:"metrics,omitempty"`
	CandidatePrompt string             `json:"candidatePrompt,omitempty"`

	// Sample-level fields.
	SampleIndex int `json:"sampleIndex,omitempty"`

	// Completion fields.
	FinalPrompt    string                    `json:"finalPrompt,omitempty"`
	CollectionSize int                       `json:"collectionSize,omitempty"`
	Candidates     []types.PromptCandidate   `json:"candidates,omitempty"`

	// Error fields.
	Reason string `json:"reason,omitempty"`
}

// Sink receives Events in emission order. Implementations must not block
// the loop indefinitely; a host exposing a stream over HTTP is expected to
// buffer internally.
type Sink interface {
	Emit(Event)
}

// ChannelSink forwards every Event onto a channel, letting a host consume
// the stream asynchronously (e.g. to frame it over SSE).
type ChannelSink struct {
	ch chan Event
}

// NewChannelSink builds a ChannelSink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{ch: make(chan Event, buffer)}
}

func (s *ChannelSink) Emit(e Event) { s.ch <- e }

// Events exposes the receive side of the channel.
func (s *ChannelSink) Events() <-chan Event { return s.ch }

// Close closes the underlying channel. Callers must stop emitting before
// calling Close.
func (s *ChannelSink) Close() { close(s.ch) }

// SliceSink accumulates every Event in memory, in order. Used in tests and
// by hosts that persist the event log after a run completes.
type SliceSink struct {
	Events []Event
}

func (s *SliceSink) Emit(e Event) { s.Events = append(s.Events, e) }
