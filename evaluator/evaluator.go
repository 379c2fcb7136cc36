// Package evaluator runs a prompt against a batch of samples, bounding
// intra-batch concurrency, and aggregates per-sample judge results into a
// single batch score.
package evaluator

import (
	"context"
	"sync"
	"time"

	"github.com/invopop/jsonschema"
	"golang.org/x/time/rate"

	"github.com/weave-labs/gepa/config"
	"github.com/weave-labs/gepa/judge"
	"github.com/weave-labs/gepa/llmclient"
	"github.com/weave-labs/gepa/trajectory"
	"github.com/weave-labs/gepa/types"
	"github.com/weave-labs/gepa/utils"
)

// Result is a batch evaluation's aggregate output.
type Result struct {
	Metrics      types.MetricScores
	Feedbacks    []string
	Suggestions  []string
	OverallScore float64
}

// SampleObserver is notified after each sample in a batch finishes
// generation and judging, so the optimization loop can emit
// sample_generated/sample_judged events without the evaluator owning the
// event sink. Calls arrive in completion order, not input order, one at a
// time; index gives the sample's position in the batch.
type SampleObserver func(index int, traj types.Trajectory, judged judge.Result)

// Evaluator evaluates a prompt against a batch of samples.
type Evaluator struct {
	Generator *trajectory.Generator
	Judge     *judge.Judge
	Logger    utils.Logger

	MaxParallel int
	CallTimeout time.Duration
	Limiter     *rate.Limiter
}

// NewEvaluator builds an Evaluator bounding intra-batch fan-out to
// maxParallel concurrent (generate, judge) pairs. callTimeout, if
// positive, bounds each sample's combined generate+judge work; zero
// disables the per-call deadline, leaving enforcement to the ModelClient.
func NewEvaluator(gen *trajectory.Generator, j *judge.Judge, maxParallel int, callTimeout time.Duration, logger utils.Logger) *Evaluator {
	if maxParallel <= 0 {
		maxParallel = 4
	}
	if logger == nil {
		logger = utils.NewLogger(utils.LogLevelOff)
	}
	return &Evaluator{
		Generator:   gen,
		Judge:       j,
		Logger:      logger,
		MaxParallel: maxParallel,
		CallTimeout: callTimeout,
	}
}

// WithRateLimit attaches a token-bucket limiter pacing sample dispatch to
// ratePerSecond with the given burst, in addition to the MaxParallel
// concurrency bound. A non-positive ratePerSecond leaves the evaluator
// unlimited (the zero value already behaves this way).
func (e *Evaluator) WithRateLimit(ratePerSecond float64, burst int) *Evaluator {
	if ratePerSecond > 0 {
		e.Limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	return e
}

// Options configures one Evaluate call.
type Options struct {
	Schema          *jsonschema.Schema
	Tools           []types.Tool
	Mode            trajectory.Mode
	TaskModel       string
	ReflectionModel string
	Dimensions      config.Dimensions
	OnSample        SampleObserver
}

// Evaluate runs prompt against every sample in batch, bounding fan-out by
// MaxParallel, and returns the batch's aggregated metrics, overall score,
// and per-sample feedback/suggestion strings in input order. An empty
// batch returns overallScore 0 and empty metrics.
func (e *Evaluator) Evaluate(ctx context.Context, batch []types.Sample, prompt string, taskClient, reflectionClient llmclient.ModelClient, opts Options) Result {
	n := len(batch)
	if n == 0 {
		return Result{Metrics: types.MetricScores{}, OverallScore: 0}
	}

	perSample := make([]judge.Result, n)
	feedbacks := make([]string, n)
	suggestions := make([]string, n)

	sem := make(chan struct{}, e.MaxParallel)
	var wg sync.WaitGroup
	var observeMu sync.Mutex

	for i, sample := range batch {
		i, sample := i, sample
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			sampleCtx := ctx
			if e.CallTimeout > 0 {
				var cancel context.CancelFunc
				sampleCtx, cancel = context.WithTimeout(ctx, e.CallTimeout)
				defer cancel()
			}

			if e.Limiter != nil {
				if err := e.Limiter.Wait(sampleCtx); err != nil {
					perSample[i] = judge.Result{Metrics: types.MetricScores{}}
					return
				}
			}

			traj := e.Generator.Generate(sampleCtx, sample, prompt, opts.TaskModel, taskClient, trajectory.Options{
				Schema: opts.Schema,
				Tools:  opts.Tools,
				Mode:   opts.Mode,
			})

			if err := ctx.Err(); err != nil {
				perSample[i] = judge.Result{Metrics: types.MetricScores{}}
				return
			}

			result := e.Judge.Score(sampleCtx, reflectionClient, opts.ReflectionModel, sample, traj, opts.Dimensions)
			perSample[i] = result
			feedbacks[i] = result.DetailedFeedback
			suggestions[i] = result.SuggestedImprovements

			if opts.OnSample != nil {
				observeMu.Lock()
				opts.OnSample(i, traj, result)
				observeMu.Unlock()
			}
		}()
	}
	wg.Wait()

	scores := make([]types.MetricScores, n)
	overall := make([]float64, n)
	for i, r := range perSample {
		scores[i] = r.Metrics
		overall[i] = r.OverallScore
	}

	return Result{
		Metrics:      types.MeanAcross(scores),
		OverallScore: types.MeanOverallScore(overall),
		Feedbacks:    feedbacks,
		Suggestions:  suggestions,
	}
}
