package types

import "fmt"

// Polarity is the human rating attached to a Sample.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// Feedback is the optional human judgment recorded against a Sample.
type Feedback struct {
	Comment string   `json:"comment,omitempty"`
	Rating  Polarity `json:"rating"`
}

// Sample is an immutable input unit: a recorded conversation plus an
// optional human rating, used as training signal for one evaluation.
// Samples are loaded once at run start and never mutated.
type Sample struct {
	ID       string     `json:"id"       validate:"required"`
	Messages []Message  `json:"messages" validate:"required,min=1"`
	Feedback *Feedback  `json:"feedback,omitempty"`
}

// HasUserMessage reports whether the sample contains at least one message
// with role user, the minimum shape an evaluable sample requires.
func (s Sample) HasUserMessage() bool {
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants Sample requires before it can
// be used in a run: the struct-tag constraints (non-empty id, at least one
// message) plus the domain rule a struct tag can't express, that at least
// one of those messages carries the user role.
func (s Sample) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	if !s.HasUserMessage() {
		return fmt.Errorf("sample %s: no user message", s.ID)
	}
	return nil
}

// EffectivePolarity returns the sample's feedback rating, defaulting to
// positive when no feedback was recorded — absence of feedback falls back
// to treating the sample's turns as a reference, not an anti-example.
func (s Sample) EffectivePolarity() Polarity {
	if s.Feedback == nil || s.Feedback.Rating == "" {
		return PolarityPositive
	}
	return s.Feedback.Rating
}
