package analyzer

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/swiftaudit/swiftaudit/internal/model"
	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// NamingAnalyzer checks declarations against Swift API design guidelines:
// lowerCamelCase for variables and functions, UpperCamelCase for types.
type NamingAnalyzer struct {
	varDecl  *regexp.Regexp
	funcDecl *regexp.Regexp
	typeDecl *regexp.Regexp
}

// NewNamingAnalyzer creates a NamingAnalyzer.
func NewNamingAnalyzer() *NamingAnalyzer {
	return &NamingAnalyzer{
		varDecl:  regexp.MustCompile(`\b(?:let|var)\s+(\w+)`),
		funcDecl: regexp.MustCompile(`\bfunc\s+(\w+)`),
		typeDecl: regexp.MustCompile(`\b(?:class|struct|enum|protocol|actor|typealias)\s+(\w+)`),
	}
}

// Name returns the analyzer name.
func (a *NamingAnalyzer) Name() string {
	return "naming"
}

// Category returns the analyzer category.
func (a *NamingAnalyzer) Category() string {
	return CategoryStructure
}

// Analyze reports declarations that break the project naming convention.
func (a *NamingAnalyzer) Analyze(ctx context.Context, src *walker.Source) ([]model.Finding, error) {
	var findings []model.Finding

	for i, line := range src.Lines {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.Contains(line, "case ") {
			continue
		}

		for _, re := range [](*regexp.Regexp){a.varDecl, a.funcDecl} {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				name := m[1]
				if validLowerCamel(name) {
					continue
				}
				findings = append(findings, model.NewFinding(
					"naming_variable",
					"Non-Standard Variable Name",
					"Variables and functions should be lowerCamelCase.",
					src.Path, i+1,
				).WithValue(name))
			}
		}

		if m := a.typeDecl.FindStringSubmatch(line); m != nil {
			name := m[1]
			if !validUpperCamel(name) {
				findings = append(findings, model.NewFinding(
					"naming_type",
					"Non-Standard Type Name",
					"Types should be UpperCamelCase.",
					src.Path, i+1,
				).WithValue(name))
			}
		}
	}

	return findings, nil
}

// validLowerCamel accepts lowerCamelCase, a leading underscore for
// property-wrapper backing storage, and single-letter names.
func validLowerCamel(name string) bool {
	trimmed := strings.TrimPrefix(name, "_")
	if trimmed == "" {
		return false
	}
	if strings.Contains(trimmed, "_") {
		return false
	}
	return unicode.IsLower(rune(trimmed[0])) || unicode.IsDigit(rune(trimmed[0]))
}

func validUpperCamel(name string) bool {
	if name == "" || strings.Contains(name, "_") {
		return false
	}
	return unicode.IsUpper(rune(name[0]))
}
