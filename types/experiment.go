package types

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/lmazzoli/web2048-rl/util"
)

// EpisodeSink receives the outcome of every completed episode.
// Used to persist run results outside the process (e.g. a sqlite store).
type EpisodeSink interface {
	SaveEpisode(experiment string, run int, eCtx *EpisodeContext) error
}

type experimentRunConfig struct {
	// execution configuration
	CurrentRun int
	Episodes   int
	Horizon    int
	Timeout    time.Duration
	Context    context.Context

	// thresholds to abort the experiment
	ConsecutiveTimeoutsAbort int
	ConsecutiveErrorsAbort   int

	// record flags
	RecordTraces   bool
	ReportSavePath string
	Sink           EpisodeSink

	// analyzers instantiated for this experiment in this run
	Analyzers []Analyzer

	// misc
	LongestExpNameLen int
}

// Experiment encapsulates a named policy/environment pair together with
// optional trace properties checked on every episode
type Experiment struct {
	Name        string
	policy      Policy
	environment Environment

	Properties      map[string]*Monitor
	PropertiesStats map[string]int
}

// NewExperiment creates a new experiment instance
func NewExperiment(name string, policy Policy, environment Environment) *Experiment {
	return &Experiment{
		Name:            name,
		policy:          policy,
		environment:     environment,
		Properties:      make(map[string]*Monitor),
		PropertiesStats: make(map[string]int),
	}
}

// AddProperty registers a trace monitor checked after every episode
func (e *Experiment) AddProperty(name string, m *Monitor) {
	e.Properties[name] = m
	e.PropertiesStats[name] = 0
}

func (e *Experiment) recordTrace(rConfig *experimentRunConfig, trace *Trace) {
	tracesFile := path.Join(rConfig.ReportSavePath, "traces", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)+".jsonl")
	bs, err := json.Marshal(trace)
	if err != nil {
		return
	}
	util.AppendLines(tracesFile, string(bs))
}

// Run the experiment for the specified number of episodes,
// checking the registered properties on every trace
func (e *Experiment) Run(rConfig *experimentRunConfig) {
	select {
	case <-rConfig.Context.Done():
		return
	default:
	}

	totalTimeout := 0
	totalWithError := 0
	consecutiveTimeouts := 0
	consecutiveErrors := 0

	totalTerminal := 0 // episodes ended in a terminal state
	totalHorizon := 0  // episodes ended by reaching the horizon
	totalEpisodes := 0

	agent := NewAgent(&AgentConfig{
		Episodes:    rConfig.Episodes,
		Horizon:     rConfig.Horizon,
		Policy:      e.policy,
		Environment: e.environment,
	})

	EPPadding := len(strconv.Itoa(rConfig.Episodes))
	NamePadding := rConfig.LongestExpNameLen

	for totalEpisodes < rConfig.Episodes {
		select {
		case <-rConfig.Context.Done():
			return
		default:
		}

		eCtx := NewEpisodeContext(totalEpisodes, e.Name, rConfig.Timeout)
		e.runEpisode(eCtx, agent)
		totalEpisodes += 1

		if eCtx.TimedOut {
			totalTimeout += 1
			consecutiveTimeouts += 1
		} else {
			consecutiveTimeouts = 0
		}

		if eCtx.Err != nil {
			totalWithError += 1
			consecutiveErrors += 1
		} else {
			consecutiveErrors = 0
		}

		if !eCtx.TimedOut && eCtx.Err == nil {
			if eCtx.Terminal {
				totalTerminal += 1
			} else if eCtx.HorizonEnd {
				totalHorizon += 1
			}
		}

		// analyze the trace, even if the episode timed out or ended with an error
		for _, a := range rConfig.Analyzers {
			a.Analyze(rConfig.CurrentRun, eCtx.Episode, e.Name, eCtx.Trace)
		}

		for name, prop := range e.Properties {
			if _, ok := prop.Check(eCtx.Trace); ok {
				e.PropertiesStats[name] += 1
			}
		}

		if rConfig.RecordTraces {
			e.recordTrace(rConfig, eCtx.Trace)
		}
		if rConfig.Sink != nil {
			rConfig.Sink.SaveEpisode(e.Name, rConfig.CurrentRun, eCtx)
		}

		if rConfig.ConsecutiveTimeoutsAbort > 0 && consecutiveTimeouts >= rConfig.ConsecutiveTimeoutsAbort {
			fmt.Printf("\nAborting experiment %s : %d consecutive timeouts\n", e.Name, consecutiveTimeouts)
			break
		}
		if rConfig.ConsecutiveErrorsAbort > 0 && consecutiveErrors >= rConfig.ConsecutiveErrorsAbort {
			fmt.Printf("\nAborting experiment %s : %d consecutive errors\n", e.Name, consecutiveErrors)
			break
		}

		// terminal execution display
		fmt.Printf("\rExp:%*s || Eps:%*d/%d, TOut:%*d, Err:%*d || Terminal:%*d, Horizon:%*d",
			NamePadding, e.Name,
			EPPadding, totalEpisodes, rConfig.Episodes,
			EPPadding, totalTimeout, EPPadding, totalWithError,
			EPPadding, totalTerminal, EPPadding, totalHorizon)
	}
	fmt.Println("")

	for name, count := range e.PropertiesStats {
		fmt.Printf("Property %q satisfied in %d episodes\n", name, count)
	}
}

// runEpisode executes one agent episode, guarding against the episode
// timeout and panics inside the environment
func (e *Experiment) runEpisode(eCtx *EpisodeContext, agent *Agent) {
	defer func() {
		if r := recover(); r != nil {
			eCtx.SetError(fmt.Errorf("%v", r))
		}
	}()

	done := make(chan struct{})

	go func() {
		start := time.Now()
		agent.RunEpisode(eCtx)
		eCtx.RunDuration = time.Since(start)
		close(done)
	}()

	select {
	case <-eCtx.Context.Done():
		if deadline, ok := eCtx.Context.Deadline(); ok && time.Now().After(deadline) {
			eCtx.SetTimedOut()
		}
	case <-done:
	}
	eCtx.Cancel()
}

// Reset cleans the policy state between runs
func (e *Experiment) Reset() {
	e.policy.Reset()
	for name := range e.PropertiesStats {
		e.PropertiesStats[name] = 0
	}
}

// Generic Dataset that contains information after processing the traces
type DataSet interface{}

// Analyzer compresses the information in the traces to a DataSet
type Analyzer interface {
	// Run, episode, experiment name, trace
	Analyze(int, int, string, *Trace)
	// Resulting dataset
	DataSet() DataSet
	// Reset the analyzer
	Reset()
}

// Comparator differentiates between datasets with associated experiment names
// run, experiment names, datasets
type Comparator func(int, []string, []DataSet)

type analysis struct {
	Name        string
	NewAnalyzer func() Analyzer
	Comparator  Comparator
}

type ComparisonConfig struct {
	Runs     int
	Episodes int
	Horizon  int
	Timeout  time.Duration

	RecordPath   string
	RecordTraces bool
	Sink         EpisodeSink

	ConsecutiveTimeoutsAbort int
	ConsecutiveErrorsAbort   int
}

// Comparison runs a set of experiments with the same budget and compares
// the resulting datasets of each registered analysis
type Comparison struct {
	config      *ComparisonConfig
	experiments []*Experiment
	analyses    []analysis
}

func NewComparison(config *ComparisonConfig) *Comparison {
	return &Comparison{
		config:      config,
		experiments: make([]*Experiment, 0),
		analyses:    make([]analysis, 0),
	}
}

// AddAnalysis adds an analyzer factory and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, newAnalyzer func() Analyzer, comparator Comparator) {
	c.analyses = append(c.analyses, analysis{Name: name, NewAnalyzer: newAnalyzer, Comparator: comparator})
}

func (c *Comparison) AddExperiment(e *Experiment) {
	c.experiments = append(c.experiments, e)
}

func (c *Comparison) recordConfig() {
	if c.config.RecordPath == "" {
		return
	}
	bs, err := json.MarshalIndent(c.config, "", "  ")
	if err != nil {
		return
	}
	util.WriteLines(path.Join(c.config.RecordPath, "config.json"), string(bs))
}

func (c *Comparison) Run(ctx context.Context) {
	if c.config.RecordPath != "" {
		os.MkdirAll(c.config.RecordPath, os.ModePerm)
	}
	c.recordConfig()

	longestName := 0
	names := make([]string, len(c.experiments))
	for i, e := range c.experiments {
		names[i] = e.Name
		if len(e.Name) > longestName {
			longestName = len(e.Name)
		}
	}

	for run := 0; run < c.config.Runs; run++ {
		select {
		case <-ctx.Done():
			return
		default:
		}
		fmt.Printf("Run %d/%d\n", run+1, c.config.Runs)

		// one analyzer instance per (analysis, experiment)
		analyzers := make(map[string][]Analyzer)
		for _, an := range c.analyses {
			analyzers[an.Name] = make([]Analyzer, len(c.experiments))
			for i := range c.experiments {
				analyzers[an.Name][i] = an.NewAnalyzer()
			}
		}

		for i, e := range c.experiments {
			e.Reset()
			expAnalyzers := make([]Analyzer, 0, len(c.analyses))
			for _, an := range c.analyses {
				expAnalyzers = append(expAnalyzers, analyzers[an.Name][i])
			}
			e.Run(&experimentRunConfig{
				CurrentRun:               run,
				Episodes:                 c.config.Episodes,
				Horizon:                  c.config.Horizon,
				Timeout:                  c.config.Timeout,
				Context:                  ctx,
				ConsecutiveTimeoutsAbort: c.config.ConsecutiveTimeoutsAbort,
				ConsecutiveErrorsAbort:   c.config.ConsecutiveErrorsAbort,
				RecordTraces:             c.config.RecordTraces,
				ReportSavePath:           c.config.RecordPath,
				Sink:                     c.config.Sink,
				Analyzers:                expAnalyzers,
				LongestExpNameLen:        longestName,
			})
		}

		for _, an := range c.analyses {
			datasets := make([]DataSet, len(c.experiments))
			for i := range c.experiments {
				datasets[i] = analyzers[an.Name][i].DataSet()
			}
			an.Comparator(run, names, datasets)
		}
	}
}
