// Package optimize orchestrates the full GEPA-variant algorithm: seed
// evaluation, iterative reflection-guided rewriting with strict-acceptance
// testing, Pareto frontier maintenance, and event emission.
package optimize

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/invopop/jsonschema"

	"github.com/weave-labs/gepa/config"
	"github.com/weave-labs/gepa/evaluator"
	"github.com/weave-labs/gepa/events"
	"github.com/weave-labs/gepa/judge"
	"github.com/weave-labs/gepa/llmclient"
	"github.com/weave-labs/gepa/pareto"
	reflectstep "github.com/weave-labs/gepa/reflect"
	"github.com/weave-labs/gepa/trajectory"
	"github.com/weave-labs/gepa/types"
	"github.com/weave-labs/gepa/utils"
)

// Clients bundles the task-model and reflection-model clients a run needs.
type Clients struct {
	Task       llmclient.ModelClient
	Reflection llmclient.ModelClient
}

// Options configures one run beyond what config.RunConfig carries: the
// optional external schema (required iff UseStructuredOutput) and any
// tools exposed to the task model in text mode.
type Options struct {
	Schema *jsonschema.Schema
	Tools  []types.Tool
}

// Loop owns one optimization run's state and executes the algorithm.
type Loop struct {
	Evaluator *evaluator.Evaluator
	Rewriter  *reflectstep.Rewriter
	Sink      events.Sink
	Logger    utils.Logger
	Rand      *rand.Rand

	cfg        *config.RunConfig
	dims       config.Dimensions
	clients    Clients
	frontier   *pareto.Frontier
	selector   pareto.Selector
	candidates []types.PromptCandidate
}

// NewLoop builds a Loop ready to execute one run. debug, if non-nil, wires
// prompt/response tracing into the judge and reflection rewriter.
func NewLoop(cfg *config.RunConfig, dims config.Dimensions, clients Clients, sink events.Sink, logger utils.Logger, debug *utils.DebugManager) *Loop {
	if logger == nil {
		logger = utils.NewLogger(utils.LogLevelOff)
	}
	gen := trajectory.NewGenerator(cfg.MaxSteps, logger)
	j := judge.NewJudge(logger)
	j.Debug = debug
	ev := evaluator.NewEvaluator(gen, j, cfg.MaxParallel, cfg.CallTimeout(), logger)
	ev.WithRateLimit(float64(cfg.MaxParallel), cfg.MaxParallel)

	rewriter := reflectstep.NewRewriter(logger)
	rewriter.Debug = debug

	var selector pareto.Selector = pareto.CurrentBestSelector{}
	if cfg.Selector == config.SelectorPareto {
		selector = pareto.ParetoSelector{}
	}

	return &Loop{
		Evaluator: ev,
		Rewriter:  rewriter,
		Sink:      sink,
		Logger:    logger,
		cfg:       cfg,
		dims:      dims,
		clients:   clients,
		selector:  selector,
	}
}

func (l *Loop) emit(e events.Event) {
	if l.Sink != nil {
		l.Sink.Emit(e)
	}
}

// Execute runs the full algorithm against samples starting from seedPrompt
// and returns the best candidate's prompt plus the full candidate
// collection. It never returns a Go error: configuration failures are
// reported as an error event and the call returns the seed prompt
// unchanged.
func (l *Loop) Execute(ctx context.Context, samples []types.Sample, seedPrompt string, opts Options) (string, []types.PromptCandidate) {
	if len(samples) == 0 {
		l.emit(events.Event{Kind: events.KindError, Reason: "no_samples", Message: "no samples supplied"})
		return seedPrompt, nil
	}
	if l.cfg.UseStructuredOutput && opts.Schema == nil {
		l.emit(events.Event{Kind: events.KindError, Reason: "missing_schema", Message: "structured mode requires a schema"})
		return seedPrompt, nil
	}

	l.frontier = pareto.NewFrontier(len(samples))
	l.candidates = nil

	l.emit(events.Event{Kind: events.KindStart, Message: "run starting"})

	mode := trajectory.ModeText
	if l.cfg.UseStructuredOutput {
		mode = trajectory.ModeStructured
	}

	seedBatch, seedIndices := l.drawBatch(samples)
	seedResult, seedPerSample := l.evaluateBatch(ctx, seedBatch, seedPrompt, mode, opts, 0)

	seedCandidate := types.PromptCandidate{
		ID:                    types.SeedCandidateID,
		Prompt:                seedPrompt,
		Metrics:               seedResult.Metrics,
		OverallScore:          seedResult.OverallScore,
		DiscoveredAtIteration: 0,
	}
	l.candidates = append(l.candidates, seedCandidate)
	l.frontier.Observe(seedCandidate.ID, scoresByOriginalIndex(seedIndices, seedPerSample))
	l.frontier.UpdateFrontier(seedCandidate, l.dims.Names())

	bestOverall := seedCandidate.OverallScore
	bestCandidateID := seedCandidate.ID

	l.emit(events.Event{
		Kind:      events.KindSeedEvaluated,
		BatchScore: seedResult.OverallScore,
		BestScore:  bestOverall,
		Metrics:    seedResult.Metrics,
	})

	for iteration := 1; iteration <= l.cfg.NumRollouts; iteration++ {
		if ctx.Err() != nil {
			break
		}

		l.emit(events.Event{Kind: events.KindIterationStart, Iteration: iteration, Message: fmt.Sprintf("starting iteration %d", iteration)})

		accepted, newBest, newBestID := l.runIteration(ctx, samples, iteration, mode, opts, bestOverall, bestCandidateID)
		if accepted {
			bestOverall = newBest
			bestCandidateID = newBestID
		}
	}

	finalPrompt := seedPrompt
	if c, ok := l.frontier.Candidate(bestCandidateID); ok {
		finalPrompt = c.Prompt
	}

	l.emit(events.Event{
		Kind:           events.KindComplete,
		FinalPrompt:    finalPrompt,
		BestScore:      bestOverall,
		CollectionSize: len(l.candidates),
		Candidates:     l.candidates,
		Message:        "run complete",
	})

	return finalPrompt, l.candidates
}

// runIteration executes one candidate-generation iteration. It returns
// whether a candidate was accepted and, if so, the updated best score/id.
func (l *Loop) runIteration(ctx context.Context, samples []types.Sample, iteration int, mode trajectory.Mode, opts Options, bestOverall float64, bestCandidateID string) (accepted bool, newBest float64, newBestID string) {
	defer func() {
		if r := recover(); r != nil {
			l.emit(events.Event{Kind: events.KindIterationError, Iteration: iteration, Message: fmt.Sprintf("iteration panicked: %v", r)})
			accepted = false
		}
	}()

	parentID := l.selector.Select(l.frontier)
	parent, ok := l.frontier.Candidate(parentID)
	if !ok {
		l.emit(events.Event{Kind: events.KindIterationError, Iteration: iteration, Message: "no parent candidate available"})
		return false, bestOverall, bestCandidateID
	}

	batch, indices := l.drawBatch(samples)
	parentResult, _ := l.evaluateBatch(ctx, batch, parent.Prompt, mode, opts, iteration)

	if ctx.Err() != nil {
		return false, bestOverall, bestCandidateID
	}

	improvedPrompt, failed := l.Rewriter.Rewrite(ctx, l.clients.Reflection, l.cfg.ReflectionModel, parent.Prompt, parentResult.Feedbacks, parentResult.Suggestions)
	if failed {
		l.emit(events.Event{Kind: events.KindReflectionFailed, Iteration: iteration, Message: "reflection call failed; reusing current prompt"})
	}

	improvedResult, improvedPerSample := l.evaluateBatch(ctx, batch, improvedPrompt, mode, opts, iteration)

	if improvedResult.OverallScore > parentResult.OverallScore {
		candidate := types.PromptCandidate{
			ID:                    types.IterationCandidateID(iteration),
			Prompt:                improvedPrompt,
			Metrics:               improvedResult.Metrics,
			Parents:               []string{parent.ID},
			OverallScore:          improvedResult.OverallScore,
			DiscoveredAtIteration: iteration,
		}
		l.candidates = append(l.candidates, candidate)
		l.frontier.Observe(candidate.ID, scoresByOriginalIndex(indices, improvedPerSample))
		l.frontier.UpdateFrontier(candidate, l.dims.Names())

		newBest, newBestID = bestOverall, bestCandidateID
		if candidate.OverallScore > bestOverall {
			newBest, newBestID = candidate.OverallScore, candidate.ID
		}

		l.emit(events.Event{
			Kind:            events.KindIterationAccepted,
			Iteration:       iteration,
			BatchScore:      parentResult.OverallScore,
			ImprovedScore:   improvedResult.OverallScore,
			BestScore:       newBest,
			Metrics:         improvedResult.Metrics,
			CandidatePrompt: improvedPrompt,
		})
		return true, newBest, newBestID
	}

	l.emit(events.Event{
		Kind:          events.KindIterationRejected,
		Iteration:     iteration,
		BatchScore:    parentResult.OverallScore,
		ImprovedScore: improvedResult.OverallScore,
		BestScore:     bestOverall,
	})
	return false, bestOverall, bestCandidateID
}

// evaluateBatch runs the evaluator and also returns the raw per-sample
// overall scores, in batch-position order, for frontier observation.
func (l *Loop) evaluateBatch(ctx context.Context, batch []types.Sample, prompt string, mode trajectory.Mode, opts Options, iteration int) (evaluator.Result, []float64) {
	perSample := make([]float64, len(batch))
	result := l.Evaluator.Evaluate(ctx, batch, prompt, l.clients.Task, l.clients.Reflection, evaluator.Options{
		Schema:          opts.Schema,
		Tools:           opts.Tools,
		Mode:            mode,
		TaskModel:       l.cfg.OptimizationModel,
		ReflectionModel: l.cfg.ReflectionModel,
		Dimensions:      l.dims,
		OnSample: func(index int, traj types.Trajectory, judged judge.Result) {
			perSample[index] = judged.OverallScore
			l.emit(events.Event{Kind: events.KindSampleGenerated, Iteration: iteration, SampleIndex: index})
			l.emit(events.Event{Kind: events.KindSampleJudged, Iteration: iteration, SampleIndex: index, Metrics: judged.Metrics})
		},
	})
	return result, perSample
}

// drawBatch samples BatchSize samples uniformly with replacement,
// returning both the drawn samples and the original index each was drawn
// from, so frontier observation can attribute scores to the right
// sample-set position.
func (l *Loop) drawBatch(samples []types.Sample) ([]types.Sample, []int) {
	r := l.Rand
	if r == nil {
		r = rand.New(rand.NewSource(1))
		l.Rand = r
	}
	n := l.cfg.BatchSize
	batch := make([]types.Sample, n)
	indices := make([]int, n)
	for i := 0; i < n; i++ {
		idx := r.Intn(len(samples))
		batch[i] = samples[idx]
		indices[i] = idx
	}
	return batch, indices
}

func scoresByOriginalIndex(indices []int, perSample []float64) map[int]float64 {
	out := make(map[int]float64, len(indices))
	for i, idx := range indices {
		out[idx] = perSample[i]
	}
	return out
}
