package analyzer

import (
	"context"
	"regexp"
	"strings"

	"github.com/swiftaudit/swiftaudit/internal/model"
	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// RetainCycleAnalyzer detects escaping closures that capture self strongly.
type RetainCycleAnalyzer struct {
	escapingStarts []*regexp.Regexp
	selfUse        *regexp.Regexp
	weakCapture    *regexp.Regexp
}

// NewRetainCycleAnalyzer creates a RetainCycleAnalyzer.
func NewRetainCycleAnalyzer() *RetainCycleAnalyzer {
	return &RetainCycleAnalyzer{
		escapingStarts: []*regexp.Regexp{
			regexp.MustCompile(`\bTask\s*\{`),
			regexp.MustCompile(`\bTask\.detached\s*\{`),
			regexp.MustCompile(`DispatchQueue\.\w+(\.\w+)*\.async\s*\{`),
			regexp.MustCompile(`\.asyncAfter\([^)]*\)\s*\{`),
			regexp.MustCompile(`\bcompletion:\s*\{`),
			regexp.MustCompile(`\.sink\s*(\([^)]*\))?\s*\{`),
			regexp.MustCompile(`\bwithAnimation\s*(\([^)]*\))?\s*\{`),
		},
		selfUse:     regexp.MustCompile(`\bself\s*[.\?]`),
		weakCapture: regexp.MustCompile(`\[\s*(weak|unowned)\s+self\b`),
	}
}

// Name returns the analyzer name.
func (a *RetainCycleAnalyzer) Name() string {
	return "retaincycle"
}

// Category returns the analyzer category.
func (a *RetainCycleAnalyzer) Category() string {
	return CategorySafety
}

// closureWindow is how many lines past a closure open brace we scan for a
// strong self reference before giving up. Deep closures beyond this are
// usually broken apart into methods anyway.
const closureWindow = 12

// Analyze scans for retain-cycle candidates.
func (a *RetainCycleAnalyzer) Analyze(ctx context.Context, src *walker.Source) ([]model.Finding, error) {
	var findings []model.Finding

	// withAnimation does not escape in practice, but strong self inside
	// Task and dispatch closures keeps view models alive past dismissal.
	for i, line := range src.Lines {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") {
			continue
		}

		for _, start := range a.escapingStarts {
			loc := start.FindStringIndex(line)
			if loc == nil {
				continue
			}
			if a.weakCapture.MatchString(line[loc[0]:]) {
				break
			}
			if strongSelfLine, ok := a.findStrongSelf(src.Lines, i); ok {
				findings = append(findings, model.NewFinding(
					"retain_cycle",
					"Potential Retain Cycle",
					"Escaping closure captures self strongly; use [weak self].",
					src.Path, strongSelfLine+1,
				).WithSnippet(strings.TrimSpace(src.Lines[strongSelfLine])))
			}
			break
		}
	}

	return findings, nil
}

// findStrongSelf looks for a strong self reference inside the closure that
// opens on startLine, stopping at a weak capture list or the window edge.
func (a *RetainCycleAnalyzer) findStrongSelf(lines []string, startLine int) (int, bool) {
	depth := 0
	end := min(startLine+closureWindow, len(lines))
	for i := startLine; i < end; i++ {
		line := lines[i]
		if a.weakCapture.MatchString(line) {
			return 0, false
		}
		if a.selfUse.MatchString(line) {
			return i, true
		}
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if i > startLine && depth <= 0 {
			break
		}
	}
	return 0, false
}
