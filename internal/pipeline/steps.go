package pipeline

import (
	"context"
	"log/slog"

	"github.com/swiftaudit/swiftaudit/internal/analyzer"
	"github.com/swiftaudit/swiftaudit/internal/config"
	"github.com/swiftaudit/swiftaudit/internal/depgraph"
	"github.com/swiftaudit/swiftaudit/internal/model"
	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// State carries data between steps within a single scan. The report
// holds only serializable results; parsed sources stay here so they are
// read from disk once and never leak into the report JSON.
type State struct {
	// Sources are the parsed Swift files produced by discovery.
	Sources []*walker.Source
}

// DiscoverStep walks the project root and loads every Swift file.
type DiscoverStep struct {
	state   *State
	project config.ProjectConfig
	maxSize int64
	logger  *slog.Logger
}

// DiscoverStepOption configures a DiscoverStep.
type DiscoverStepOption func(*DiscoverStep)

// WithDiscoverMaxFileSize sets the per-file size limit.
func WithDiscoverMaxFileSize(size int64) DiscoverStepOption {
	return func(s *DiscoverStep) {
		s.maxSize = size
	}
}

// WithDiscoverLogger sets a custom logger for the discovery step.
func WithDiscoverLogger(logger *slog.Logger) DiscoverStepOption {
	return func(s *DiscoverStep) {
		s.logger = logger
	}
}

// NewDiscoverStep creates a discovery step writing into state.
func NewDiscoverStep(state *State, project config.ProjectConfig, opts ...DiscoverStepOption) *DiscoverStep {
	s := &DiscoverStep{
		state:   state,
		project: project,
		maxSize: config.DefaultMaxFileSize,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *DiscoverStep) Name() string {
	return "discover"
}

// Do walks the root and records discovery statistics on the report.
func (s *DiscoverStep) Do(ctx context.Context, report *model.ScanReport) error {
	w := walker.New(
		walker.WithExcludedDirs(s.project.ExcludedDirs),
		walker.WithExcludedFiles(s.project.ExcludedFiles),
		walker.WithMaxFileSize(s.maxSize),
		walker.WithLogger(s.logger),
	)

	result, err := w.Walk(ctx, report.Root)
	if err != nil {
		return err
	}

	s.state.Sources = result.Sources
	report.FilesScanned = len(result.Sources)
	report.FilesSkipped = result.Skipped

	s.logger.Info("discovery complete",
		"root", report.Root,
		"files", len(result.Sources),
		"skipped", result.Skipped,
	)
	return nil
}

// AnalyzeStep runs the rule analyzers over the discovered sources.
type AnalyzeStep struct {
	state *State
	rules []string
}

// NewAnalyzeStep creates an analysis step reading from state.
// An empty rules list runs every registered analyzer.
func NewAnalyzeStep(state *State, rules []string) *AnalyzeStep {
	return &AnalyzeStep{state: state, rules: rules}
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do runs the coordinator and folds its findings into the report.
func (s *AnalyzeStep) Do(ctx context.Context, report *model.ScanReport) error {
	// A misspelled rule must fail the scan, not shrink it to a vacuously
	// clean report.
	if err := analyzer.ValidateRules(s.rules); err != nil {
		return err
	}

	coordinator := analyzer.NewCoordinator(analyzer.WithEnabledRules(s.rules))

	findings, err := coordinator.Run(ctx, s.state.Sources)
	if err != nil {
		// Partial findings from a cancelled run still belong in the report.
		for _, f := range findings {
			report.AddFinding(f)
		}
		return err
	}

	for _, f := range findings {
		report.AddFinding(f)
	}
	return nil
}

// DepGraphStep builds the dependency graph and reports its cycles and
// layer violations.
type DepGraphStep struct {
	state   *State
	project config.ProjectConfig
}

// NewDepGraphStep creates a dependency-graph step reading from state.
func NewDepGraphStep(state *State, project config.ProjectConfig) *DepGraphStep {
	return &DepGraphStep{state: state, project: project}
}

// Name returns the step name.
func (s *DepGraphStep) Name() string {
	return "depgraph"
}

// Do extracts the graph and folds cycle and layer findings into the report.
func (s *DepGraphStep) Do(ctx context.Context, report *model.ScanReport) error {
	graph, err := depgraph.Build(ctx, s.state.Sources,
		depgraph.WithManagers(s.project.Managers))
	if err != nil {
		return err
	}

	featureLayer := s.project.LayerRoots["features"]
	if featureLayer == "" {
		featureLayer = "Features"
	}
	coreLayer := s.project.LayerRoots["core"]
	if coreLayer == "" {
		coreLayer = "Core"
	}

	findings, summary := graph.Findings(featureLayer, coreLayer)
	for _, f := range findings {
		report.AddFinding(f)
	}
	report.Graph = summary
	return nil
}

// SummarizeStep finalizes the report after all checks have run.
type SummarizeStep struct {
	logger *slog.Logger
}

// NewSummarizeStep creates a summarize step.
func NewSummarizeStep(logger *slog.Logger) *SummarizeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummarizeStep{logger: logger}
}

// Name returns the step name.
func (s *SummarizeStep) Name() string {
	return "summarize"
}

// Do syncs the simple report and logs the outcome counters.
func (s *SummarizeStep) Do(ctx context.Context, report *model.ScanReport) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	report.Finalize()
	s.logger.Info("scan summarized",
		"root", report.Root,
		"findings", report.SimpleReport.TotalFindings(),
		"critical", report.SimpleReport.CriticalCount,
		"high", report.SimpleReport.HighCount,
	)
	return nil
}

// DefaultPipeline assembles the standard scan pipeline for a root:
// discover, analyze, depgraph, summarize.
func DefaultPipeline(cfg *config.Config, root string, logger *slog.Logger) (*Pipeline, *State) {
	if logger == nil {
		logger = slog.Default()
	}

	project := cfg.ProjectConfig(root)
	state := &State{}

	// CLI rule selection wins over the configuration file.
	rules := cfg.Rules
	if len(rules) == 0 {
		rules = project.Rules
	}

	p := New(
		WithLogger(logger),
		WithContinueOnError(true),
	)
	p.AddSteps(
		NewDiscoverStep(state, project,
			WithDiscoverMaxFileSize(cfg.MaxFileSize),
			WithDiscoverLogger(logger),
		),
		NewAnalyzeStep(state, rules),
		NewDepGraphStep(state, project),
		NewSummarizeStep(logger),
	)
	return p, state
}
