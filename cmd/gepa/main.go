// Command gepa drives one prompt-optimization run against a JSONL sample
// file and prints the resulting event stream to stdout, one JSON record
// per line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	_ "go.uber.org/automaxprocs"

	"github.com/weave-labs/gepa/config"
	"github.com/weave-labs/gepa/events"
	"github.com/weave-labs/gepa/llmclient"
	"github.com/weave-labs/gepa/optimize"
	"github.com/weave-labs/gepa/providers"
	"github.com/weave-labs/gepa/types"
	"github.com/weave-labs/gepa/utils"
)

// cmdFlags holds all command-line flags, matching the teacher's flat
// cmdFlags-plus-flag.StringVar style rather than a CLI framework.
type cmdFlags struct {
	samplesPath        string
	seedPrompt         string
	provider           string
	taskModel          string
	reflectionModel    string
	selectedMetrics    string
	selector           string
	debugLevel         string
	debugOutputDir     string
	batchSize          int
	numRollouts        int
	maxParallel        int
	maxSteps           int
	callTimeoutSeconds int
	useStructured      bool
	debug              bool
}

func parseFlags() *cmdFlags {
	flags := &cmdFlags{}
	flag.StringVar(&flags.samplesPath, "samples", "", "Path to a JSONL file of samples (required)")
	flag.StringVar(&flags.seedPrompt, "seed-prompt", "", "Initial prompt text to optimize (required)")
	flag.StringVar(&flags.provider, "provider", "openai", "LLM provider (openai, anthropic, groq, ollama)")
	flag.StringVar(&flags.taskModel, "task-model", "", "Model id for trajectory generation")
	flag.StringVar(&flags.reflectionModel, "reflection-model", "", "Model id for judging and reflection")
	flag.StringVar(&flags.selectedMetrics, "metrics", "", "Comma-separated dimension names to score; only the built-in accuracy dimension is configured, so other names fall back to it")
	flag.StringVar(&flags.selector, "selector", "current_best", "Candidate selector (current_best, pareto)")
	flag.StringVar(&flags.debugLevel, "debug-level", "warn", "Log level (debug, info, warn, error, off)")
	flag.StringVar(&flags.debugOutputDir, "debug-output-dir", "./debug_output", "Directory for debug traces when -debug is set")
	flag.IntVar(&flags.batchSize, "batch-size", 3, "Samples drawn per iteration")
	flag.IntVar(&flags.numRollouts, "num-rollouts", 10, "Number of reflection iterations")
	flag.IntVar(&flags.maxParallel, "max-parallel", 4, "Max concurrent (generate, judge) pairs per batch")
	flag.IntVar(&flags.maxSteps, "max-steps", 5, "Max tool-call steps per trajectory")
	flag.IntVar(&flags.callTimeoutSeconds, "call-timeout-seconds", 60, "Per-sample wall-clock timeout")
	flag.BoolVar(&flags.useStructured, "structured-output", false, "Generate trajectories via structured output instead of free text")
	flag.BoolVar(&flags.debug, "debug", false, "Record prompt/response traces to -debug-output-dir")
	flag.Parse()
	return flags
}

func main() {
	flags := parseFlags()

	if flags.samplesPath == "" || flags.seedPrompt == "" {
		exitWithError("Usage: %s -samples <file.jsonl> -seed-prompt <text> [flags]\n", os.Args[0])
	}

	samples, err := loadSamples(flags.samplesPath)
	if err != nil {
		exitWithError("Error loading samples: %v\n", err)
	}

	providerCfg, err := config.LoadProviderConfig()
	if err != nil {
		exitWithError("Error loading provider config: %v\n", err)
	}

	runCfg := buildRunConfig(flags)
	if err := runCfg.Validate(); err != nil {
		exitWithError("Invalid configuration: %v\n", err)
	}
	logger := utils.NewLogger(parseLogLevel(flags.debugLevel))

	clients, err := buildClients(flags, providerCfg, logger)
	if err != nil {
		exitWithError("Error constructing model clients: %v\n", err)
	}

	var debugManager *utils.DebugManager
	if flags.debug {
		debugManager = utils.NewDebugManager(utils.DebugOptions{
			Enabled:      true,
			OutputDir:    flags.debugOutputDir,
			SaveToFile:   true,
			LogPrompts:   true,
			LogResponses: true,
		})
	}

	dims := config.DefaultDimensions().Active(splitMetrics(flags.selectedMetrics))
	sink := events.NewChannelSink(16)

	loop := optimize.NewLoop(runCfg, dims, clients, sink, logger, debugManager)

	go func() {
		defer sink.Close()
		loop.Execute(context.Background(), samples, flags.seedPrompt, optimize.Options{})
	}()

	printEvents(sink)
}

func loadSamples(path string) ([]types.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open samples file: %w", err)
	}
	defer f.Close()
	return config.LoadSamplesJSONL(f)
}

func buildRunConfig(flags *cmdFlags) *config.RunConfig {
	return &config.RunConfig{
		OptimizationModel:   flags.taskModel,
		ReflectionModel:     flags.reflectionModel,
		SelectedMetrics:     splitMetrics(flags.selectedMetrics),
		Selector:            config.Selector(flags.selector),
		BatchSize:           flags.batchSize,
		NumRollouts:         flags.numRollouts,
		MaxParallel:         flags.maxParallel,
		MaxSteps:            flags.maxSteps,
		CallTimeoutSeconds:  flags.callTimeoutSeconds,
		UseStructuredOutput: flags.useStructured,
	}
}

func buildClients(flags *cmdFlags, providerCfg *config.ProviderConfig, logger utils.Logger) (optimize.Clients, error) {
	registry := providers.GetDefaultRegistry()
	apiKey := providerCfg.APIKeys[flags.provider]

	taskProvider, err := registry.Get(flags.provider, apiKey, flags.taskModel, providerCfg.ExtraHeaders)
	if err != nil {
		return optimize.Clients{}, fmt.Errorf("task provider: %w", err)
	}
	reflectionProvider, err := registry.Get(flags.provider, apiKey, flags.reflectionModel, providerCfg.ExtraHeaders)
	if err != nil {
		return optimize.Clients{}, fmt.Errorf("reflection provider: %w", err)
	}

	taskProvider.SetLogger(logger)
	reflectionProvider.SetLogger(logger)
	taskProvider.SetOption(providers.KeyTemperature, providerCfg.Temperature)
	reflectionProvider.SetOption(providers.KeyTemperature, providerCfg.Temperature)
	taskProvider.SetOption(providers.KeyMaxTokens, providerCfg.MaxTokens)
	reflectionProvider.SetOption(providers.KeyMaxTokens, providerCfg.MaxTokens)

	taskClient := llmclient.NewHTTPModelClient(taskProvider, logger, providerCfg.Timeout, providerCfg.MaxRetries, providerCfg.RetryDelay)
	reflectionClient := llmclient.NewHTTPModelClient(reflectionProvider, logger, providerCfg.Timeout, providerCfg.MaxRetries, providerCfg.RetryDelay)

	return optimize.Clients{Task: taskClient, Reflection: reflectionClient}, nil
}

func printEvents(sink *events.ChannelSink) {
	enc := json.NewEncoder(os.Stdout)
	for event := range sink.Events() {
		if err := enc.Encode(event); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error encoding event: %v\n", err)
		}
	}
}

func splitMetrics(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}

func parseLogLevel(level string) utils.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return utils.LogLevelDebug
	case "info":
		return utils.LogLevelInfo
	case "error":
		return utils.LogLevelError
	case "off":
		return utils.LogLevelOff
	default:
		return utils.LogLevelWarn
	}
}

func exitWithError(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
