package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/swiftaudit/swiftaudit/internal/model"
	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// NavigationAnalyzer checks how detail views receive their subject. Views
// holding a whole model object go stale when the store updates; views
// holding an identifier resolve fresh data on each render. Per file it
// flags the object-passing style, and across the scan it flags projects
// that mix both styles.
type NavigationAnalyzer struct {
	detailType  *regexp.Regexp
	storedProp  *regexp.Regexp
	idProp      *regexp.Regexp
	wrapperLine *regexp.Regexp

	mu          sync.Mutex
	objectFiles []string
	idFiles     []string
}

// primitiveTypes are property types that never indicate object-based
// navigation. SwiftUI and store types are included because holding an
// environment object is not passing a model.
var primitiveTypes = map[string]bool{
	"String": true, "Int": true, "Double": true, "Bool": true,
	"UUID": true, "Date": true, "URL": true, "Data": true,
	"CGFloat": true, "TimeInterval": true,
}

// dependencyType reports whether a type name is a collaborator rather
// than a navigation subject.
func dependencyType(name string) bool {
	for _, suffix := range []string{"ViewModel", "Store", "Manager", "Service", "Router", "Coordinator", "Formatter"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// NewNavigationAnalyzer creates a NavigationAnalyzer.
func NewNavigationAnalyzer() *NavigationAnalyzer {
	return &NavigationAnalyzer{
		detailType:  regexp.MustCompile(`\bstruct\s+(\w*Detail\w*View)\s*:`),
		storedProp:  regexp.MustCompile(`^\s*(?:@\w+(?:\([^)]*\))?\s+)?(?:let|var)\s+(\w+)\s*:\s*(\[?)([A-Z]\w*)`),
		idProp:      regexp.MustCompile(`\b(?:let|var)\s+\w*[iI][dD]\s*:\s*(String|UUID|Int)\b`),
		wrapperLine: regexp.MustCompile(`@(EnvironmentObject|Environment|StateObject|ObservedObject|Query|FetchRequest)\b`),
	}
}

// Name returns the analyzer name.
func (a *NavigationAnalyzer) Name() string {
	return "navigation"
}

// Category returns the analyzer category.
func (a *NavigationAnalyzer) Category() string {
	return CategoryStructure
}

// Analyze classifies detail views as object-passing or ID-passing and
// flags the object style. Non-detail views are ignored.
func (a *NavigationAnalyzer) Analyze(ctx context.Context, src *walker.Source) ([]model.Finding, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	inDetail := false
	usesObject := false
	usesID := false
	var findings []model.Finding

	for i, line := range src.Lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") {
			continue
		}

		if a.detailType.MatchString(line) {
			inDetail = true
			continue
		}
		if !inDetail {
			continue
		}
		// Stop classifying once the body starts; navigation inputs are
		// the stored properties at the top of the struct.
		if strings.Contains(line, "var body") {
			inDetail = false
			continue
		}

		if a.idProp.MatchString(line) {
			usesID = true
			continue
		}
		if a.wrapperLine.MatchString(line) {
			continue
		}
		if m := a.storedProp.FindStringSubmatch(line); m != nil {
			typeName := m[3]
			if primitiveTypes[typeName] || m[2] == "[" || dependencyType(typeName) {
				continue
			}
			usesObject = true
			findings = append(findings, model.NewFinding(
				"navigation_object",
				"Object-Based Navigation",
				fmt.Sprintf("Detail view stores a %s instead of its identifier.", typeName),
				src.Path, i+1,
			).WithValue(m[1]).WithSnippet(trimmed))
		}
	}

	a.mu.Lock()
	if usesObject {
		a.objectFiles = append(a.objectFiles, src.Path)
	}
	if usesID && !usesObject {
		a.idFiles = append(a.idFiles, src.Path)
	}
	a.mu.Unlock()

	return findings, nil
}

// Finish emits one project-level finding when detail views disagree on
// navigation style. It is pinned to the first object-passing file so the
// location is stable across runs.
func (a *NavigationAnalyzer) Finish() []model.Finding {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.objectFiles) == 0 || len(a.idFiles) == 0 {
		return nil
	}
	sort.Strings(a.objectFiles)

	f := model.NewFinding(
		"navigation_mixed",
		"Mixed Navigation Styles",
		fmt.Sprintf("%d detail views pass model objects while %d pass identifiers.",
			len(a.objectFiles), len(a.idFiles)),
		a.objectFiles[0], 1,
	)
	return []model.Finding{f}
}
