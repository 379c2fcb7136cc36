// Package gepa is the single importable entry point for the prompt
// optimization core: construct a Runner with NewRunner and call Run
// against a seed prompt and a sample set.
package gepa

import (
	"context"

	"github.com/weave-labs/gepa/config"
	"github.com/weave-labs/gepa/events"
	"github.com/weave-labs/gepa/llmclient"
	"github.com/weave-labs/gepa/optimize"
	"github.com/weave-labs/gepa/types"
	"github.com/weave-labs/gepa/utils"
)

// Re-exported types so a caller only needs to import this package for the
// common path; the subpackages remain importable directly for anything
// more specific.
type (
	Sample          = types.Sample
	Message         = types.Message
	Part            = types.Part
	Trajectory      = types.Trajectory
	PromptCandidate = types.PromptCandidate
	MetricScores    = types.MetricScores

	RunConfig      = config.RunConfig
	ProviderConfig = config.ProviderConfig
	Dimension      = config.Dimension
	Dimensions     = config.Dimensions

	ModelClient = llmclient.ModelClient

	Event = events.Event
	Sink  = events.Sink

	Options = optimize.Options
)

// DefaultDimensions re-exports config.DefaultDimensions.
func DefaultDimensions() Dimensions { return config.DefaultDimensions() }

// Runner owns one optimization run's configuration and wraps an
// optimize.Loop, so a library caller never needs to import the optimize
// package directly for the common case.
type Runner struct {
	loop *optimize.Loop
}

// NewRunner builds a Runner. task and reflection are the ModelClient
// implementations for the task model and reflection model respectively;
// sink receives the run's event stream (nil discards events); logger and
// debug are both optional.
func NewRunner(cfg *RunConfig, dims Dimensions, task, reflection ModelClient, sink Sink, logger utils.Logger, debug *utils.DebugManager) *Runner {
	loop := optimize.NewLoop(cfg, dims, optimize.Clients{Task: task, Reflection: reflection}, sink, logger, debug)
	return &Runner{loop: loop}
}

// Run executes the optimization loop against samples starting from
// seedPrompt and returns the best prompt found plus the full candidate
// collection discovered during the run.
func (r *Runner) Run(ctx context.Context, samples []Sample, seedPrompt string, opts Options) (string, []PromptCandidate) {
	return r.loop.Execute(ctx, samples, seedPrompt, opts)
}
