package analyzer

import (
	"context"
	"regexp"
	"strings"

	"github.com/swiftaudit/swiftaudit/internal/model"
	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// AsyncPatternAnalyzer detects blocking calls and unawaited async-looking
// calls inside concurrency contexts.
type AsyncPatternAnalyzer struct {
	mainSync     *regexp.Regexp
	threadSleep  *regexp.Regexp
	asyncContext *regexp.Regexp
	asyncCall    *regexp.Regexp
}

// NewAsyncPatternAnalyzer creates an AsyncPatternAnalyzer.
func NewAsyncPatternAnalyzer() *AsyncPatternAnalyzer {
	return &AsyncPatternAnalyzer{
		mainSync:     regexp.MustCompile(`DispatchQueue\.main\.sync\b`),
		threadSleep:  regexp.MustCompile(`Thread\.sleep\b`),
		asyncContext: regexp.MustCompile(`\basync\b|\bTask\s*\{|\bawait\b`),
		// Verb prefixes that name async operations in practice. Calls
		// starting with one of these and no await in front are suspects.
		asyncCall: regexp.MustCompile(`\b(?:fetch|load|save|sync|analyze)\w*\(`),
	}
}

// Name returns the analyzer name.
func (a *AsyncPatternAnalyzer) Name() string {
	return "asyncpattern"
}

// Category returns the analyzer category.
func (a *AsyncPatternAnalyzer) Category() string {
	return CategorySafety
}

// Analyze scans for blocking calls and missing awaits in async scopes.
func (a *AsyncPatternAnalyzer) Analyze(ctx context.Context, src *walker.Source) ([]model.Finding, error) {
	var findings []model.Finding

	inAsyncScope := false

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

		if a.asyncContext.MatchString(line) {
			inAsyncScope = true
		}
		if trimmed == "}" {
			inAsyncScope = false
		}

		if a.mainSync.MatchString(line) {
			findings = append(findings, model.NewFinding(
				"main_sync",
				"Synchronous Main-Queue Dispatch",
				"DispatchQueue.main.sync deadlocks when already on the main queue.",
				src.Path, i+1,
			).WithSnippet(trimmed))
		}

		if a.threadSleep.MatchString(line) && inAsyncScope {
			findings = append(findings, model.NewFinding(
				"thread_sleep",
				"Thread Sleep in Async Context",
				"Thread.sleep blocks a cooperative-pool thread; use Task.sleep instead.",
				src.Path, i+1,
			).WithSnippet(trimmed))
		}

		if inAsyncScope && !strings.Contains(line, "func ") {
			if call, ok := a.unawaitedCall(line); ok {
				findings = append(findings, model.NewFinding(
					"missing_await",
					"Possibly Missing Await",
					"Call looks asynchronous but has no await; the result may be a forgotten Task or an unstarted operation.",
					src.Path, i+1,
				).WithSnippet(trimmed).WithValue(call))
			}
		}
	}

	return findings, nil
}

// unawaitedCall returns the first async-looking call on the line with no
// await anywhere before it.
func (a *AsyncPatternAnalyzer) unawaitedCall(line string) (string, bool) {
	for _, loc := range a.asyncCall.FindAllStringIndex(line, -1) {
		if strings.Contains(line[:loc[0]], "await") {
			continue
		}
		return strings.TrimSuffix(line[loc[0]:loc[1]], "("), true
	}
	return "", false
}
