package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/swiftaudit/swiftaudit/internal/model"
	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// Analyzer category constants.
const (
	// CategorySafety groups rules that detect likely runtime crashes.
	CategorySafety = "safety"
	// CategoryStyle groups rules that detect design-system drift.
	CategoryStyle = "style"
	// CategoryStructure groups rules about imports, naming, and navigation.
	CategoryStructure = "structure"
)

// CheckAnalyzer defines the interface for individual rule analyzers.
// Each analyzer focuses on one family of heuristics.
//
// Design decision: We use an interface rather than concrete types because:
//  1. It allows easy extension with new rules
//  2. It enables testing with mock analyzers
//  3. The coordinator can treat all rules uniformly
type CheckAnalyzer interface {
	// Name returns the analyzer's rule identifier for logging and filtering.
	Name() string

	// Category returns the analyzer's category.
	Category() string

	// Analyze runs the analysis on a single source file.
	Analyze(ctx context.Context, src *walker.Source) ([]model.Finding, error)
}

// Finisher is implemented by analyzers that accumulate cross-file state
// and emit additional findings once all sources have been seen.
type Finisher interface {
	Finish() []model.Finding
}

// Coordinator runs registered analyzers over a set of sources and
// aggregates their findings.
//
// Design decision: We use a coordinator rather than running analyzers
// independently because:
//  1. Some rules need cross-file state (navigation consistency)
//  2. Unified deduplication across all findings
//  3. Consistent context and cancellation handling
type Coordinator struct {
	// analyzers is the list of registered analyzers to run.
	analyzers []CheckAnalyzer

	// enabled restricts execution to the named analyzers.
	// Empty means all registered analyzers run.
	enabled map[string]bool
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithEnabledRules restricts execution to the named analyzers.
func WithEnabledRules(names []string) CoordinatorOption {
	return func(c *Coordinator) {
		if len(names) == 0 {
			return
		}
		c.enabled = make(map[string]bool, len(names))
		for _, n := range names {
			c.enabled[n] = true
		}
	}
}

// builtinAnalyzers returns a fresh instance of every built-in analyzer in
// run order. Fresh instances matter: some analyzers accumulate cross-file
// state that must not leak between coordinators.
func builtinAnalyzers() []CheckAnalyzer {
	return []CheckAnalyzer{
		// Safety
		NewForceUnwrapAnalyzer(),
		NewRetainCycleAnalyzer(),
		NewAsyncPatternAnalyzer(),

		// Style
		NewHardcodedStringAnalyzer(),
		NewStyleAnalyzer(),

		// Structure
		NewImportAnalyzer(),
		NewNamingAnalyzer(),
		NewOnChangeAnalyzer(),
		NewNavigationAnalyzer(),
	}
}

// RuleNames returns the identifiers of all built-in analyzers.
func RuleNames() []string {
	analyzers := builtinAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name()
	}
	return names
}

// ValidateRules checks that every name matches a built-in analyzer.
// A silently ignored typo would run fewer rules than the user asked for
// and report a cleaner project than the scan actually proved.
func ValidateRules(names []string) error {
	known := make(map[string]bool)
	for _, n := range RuleNames() {
		known[n] = true
	}
	for _, n := range names {
		if !known[n] {
			return fmt.Errorf("unknown rule %q (valid rules: %s)", n, strings.Join(RuleNames(), ", "))
		}
	}
	return nil
}

// NewCoordinator creates a Coordinator with all built-in analyzers registered.
func NewCoordinator(opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{}

	for _, opt := range opts {
		opt(c)
	}

	for _, a := range builtinAnalyzers() {
		c.Register(a)
	}

	return c
}

// Register adds an analyzer. Disabled analyzers are dropped here so the
// run loop never sees them.
func (c *Coordinator) Register(a CheckAnalyzer) {
	if c.enabled != nil && !c.enabled[a.Name()] {
		return
	}
	c.analyzers = append(c.analyzers, a)
}

// Names returns the names of the registered analyzers in run order.
func (c *Coordinator) Names() []string {
	names := make([]string, len(c.analyzers))
	for i, a := range c.analyzers {
		names[i] = a.Name()
	}
	return names
}

// Run executes all registered analyzers over the sources.
// Analyzer errors on one file are swallowed so the remaining rules and
// files still run; this matches the tool's best-effort contract.
func (c *Coordinator) Run(ctx context.Context, sources []*walker.Source) ([]model.Finding, error) {
	var all []model.Finding

	for _, src := range sources {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		for _, a := range c.analyzers {
			findings, err := a.Analyze(ctx, src)
			if err != nil {
				continue
			}
			all = append(all, findings...)
		}
	}

	for _, a := range c.analyzers {
		if f, ok := a.(Finisher); ok {
			all = append(all, f.Finish()...)
		}
	}

	return deduplicateFindings(all), nil
}

// deduplicateFindings removes duplicate findings based on rule, file,
// line, and value. Multiple analyzers can flag the same token (e.g. a
// force cast matched both as a cast and as a bare "!" pattern); we keep
// the more severe instance.
func deduplicateFindings(findings []model.Finding) []model.Finding {
	type key struct {
		rule, file, value string
		line              int
	}
	seen := make(map[key]int)
	result := make([]model.Finding, 0, len(findings))

	for _, f := range findings {
		k := key{rule: f.Rule, file: f.File, value: f.Value, line: f.Line}
		if idx, exists := seen[k]; exists {
			if f.Severity > result[idx].Severity {
				result[idx] = f
			}
			continue
		}
		seen[k] = len(result)
		result = append(result, f)
	}

	return result
}
