package analyzer

import (
	"context"
	"regexp"
	"strings"

	"github.com/swiftaudit/swiftaudit/internal/model"
	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// ImportAnalyzer flags imports whose module is never referenced, and
// framework usage without a corresponding import.
type ImportAnalyzer struct {
	importPattern *regexp.Regexp
}

// moduleSymbols maps a framework to token patterns that prove usage even
// when the module name itself never appears. Foundation is absent on
// purpose: half its surface has no recognizable prefix, so flagging it
// produces more churn than it removes.
var moduleSymbols = map[string]*regexp.Regexp{
	"UIKit":             regexp.MustCompile(`\bUI[A-Z]\w*|\bCGFloat\b|\bCGRect\b|\bCGSize\b|\bCGPoint\b`),
	"SwiftUI":           regexp.MustCompile(`\bView\b|\bText\(|\bVStack\b|\bHStack\b|\bZStack\b|\bColor\b|\bImage\(|@State\b|@Binding\b|@Environment\b|\bsome View\b`),
	"Combine":           regexp.MustCompile(`\bAnyCancellable\b|\bPublisher\b|\bPassthroughSubject\b|\bCurrentValueSubject\b|@Published\b|\.sink\b|\.eraseToAnyPublisher\b`),
	"CoreData":          regexp.MustCompile(`\bNSManagedObject\w*|\bNSPersistent\w*|\bNSFetchRequest\b`),
	"CoreLocation":      regexp.MustCompile(`\bCL[A-Z]\w*`),
	"AVFoundation":      regexp.MustCompile(`\bAV[A-Z]\w*`),
	"MapKit":            regexp.MustCompile(`\bMK[A-Z]\w*|\bMap\(`),
	"PhotosUI":          regexp.MustCompile(`\bPhotosPicker\b|\bPHPicker\w*`),
	"WidgetKit":         regexp.MustCompile(`\bWidget\b|\bTimelineProvider\b|\bTimelineEntry\b`),
	"UserNotifications": regexp.MustCompile(`\bUN[A-Z]\w*`),
	"StoreKit":          regexp.MustCompile(`\bSK[A-Z]\w*|\bProduct\b|\bTransaction\b`),
	"OSLog":             regexp.MustCompile(`\bLogger\b|\bOSLog\b|\bos_log\b`),
	"Charts":            regexp.MustCompile(`\bChart\b|\b\w*Mark\(`),
}

// missingImportSymbols holds stricter patterns for the missing-import
// check. CG types and @Published are deliberately excluded: SwiftUI
// re-exports them, so their presence proves nothing.
var missingImportSymbols = map[string]*regexp.Regexp{
	"UIKit":   regexp.MustCompile(`\bUIView\b|\bUIViewController\b|\bUIApplication\b|\bUIImage\(|\bUIColor\b|\bUIDevice\b`),
	"Combine": regexp.MustCompile(`\bAnyCancellable\b|\bPassthroughSubject\b|\bCurrentValueSubject\b|\.eraseToAnyPublisher\b`),
}

// NewImportAnalyzer creates an ImportAnalyzer.
func NewImportAnalyzer() *ImportAnalyzer {
	return &ImportAnalyzer{
		importPattern: regexp.MustCompile(`^\s*(?:@testable\s+)?import\s+(\w+)`),
	}
}

// Name returns the analyzer name.
func (a *ImportAnalyzer) Name() string {
	return "unusedimport"
}

// Category returns the analyzer category.
func (a *ImportAnalyzer) Category() string {
	return CategoryStructure
}

// Analyze checks each import against the rest of the file.
func (a *ImportAnalyzer) Analyze(ctx context.Context, src *walker.Source) ([]model.Finding, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	imports := map[string]int{} // module -> 1-based line
	var bodyLines []string
	for i, line := range src.Lines {
		if m := a.importPattern.FindStringSubmatch(line); m != nil {
			imports[m[1]] = i + 1
			continue
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") {
			continue
		}
		bodyLines = append(bodyLines, line)
	}
	body := strings.Join(bodyLines, "\n")

	var findings []model.Finding

	for module, lineNo := range imports {
		if module == "Foundation" {
			continue
		}
		if strings.Contains(body, module+".") || strings.Contains(body, module+"(") {
			continue
		}
		if re, ok := moduleSymbols[module]; ok && re.MatchString(body) {
			continue
		}
		if _, known := moduleSymbols[module]; !known {
			// Project-local modules: require only the bare name somewhere.
			if regexp.MustCompile(`\b` + regexp.QuoteMeta(module) + `\b`).MatchString(body) {
				continue
			}
		}
		findings = append(findings, model.NewFinding(
			"unused_import",
			"Unused Import",
			"Imported module is never referenced in this file.",
			src.Path, lineNo,
		).WithValue(module))
	}

	for module, re := range missingImportSymbols {
		if _, ok := imports[module]; ok {
			continue
		}
		if re.MatchString(body) {
			findings = append(findings, model.NewFinding(
				"missing_import",
				"Missing Import",
				"Framework symbols used without importing the framework.",
				src.Path, 1,
			).WithValue(module))
		}
	}

	return findings, nil
}
