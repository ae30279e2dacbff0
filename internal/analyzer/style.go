package analyzer

import (
	"context"
	"regexp"
	"strings"

	"github.com/swiftaudit/swiftaudit/internal/model"
	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// StyleAnalyzer detects SwiftUI styling values that bypass the AppTheme
// design system: raw colors, system fonts with literal sizes, and literal
// padding and spacing values.
type StyleAnalyzer struct {
	rawColor     *regexp.Regexp
	namedColor   *regexp.Regexp
	builtinColor *regexp.Regexp
	systemFont   *regexp.Regexp
	fontWeight   *regexp.Regexp
	padding      *regexp.Regexp
	spacing      *regexp.Regexp
	cornerRadius *regexp.Regexp
	usesSwiftUI  *regexp.Regexp
	themeRef     *regexp.Regexp
}

// NewStyleAnalyzer creates a StyleAnalyzer.
func NewStyleAnalyzer() *StyleAnalyzer {
	return &StyleAnalyzer{
		rawColor:     regexp.MustCompile(`Color\(\s*(red|hue|white|\.sRGB|uiColor)\s*:`),
		namedColor:   regexp.MustCompile(`Color\("([^"]+)"\)`),
		builtinColor: regexp.MustCompile(`\.(foregroundColor|foregroundStyle|background|fill|tint|stroke)\(\s*(Color)?\.(red|green|blue|orange|yellow|pink|purple|gray|black|white|brown|cyan|indigo|mint|teal)\b`),
		systemFont:   regexp.MustCompile(`\.font\(\s*\.system\(\s*size:\s*(\d+)`),
		fontWeight:   regexp.MustCompile(`Font\.system\(\s*size:\s*(\d+)`),
		padding:      regexp.MustCompile(`\.padding\(\s*(?:\.\w+,\s*)?(\d+)\s*\)`),
		spacing:      regexp.MustCompile(`\bspacing:\s*(\d+)\b`),
		cornerRadius: regexp.MustCompile(`\.cornerRadius\(\s*(\d+)\s*\)`),
		usesSwiftUI:  regexp.MustCompile(`\bimport\s+SwiftUI\b`),
		themeRef:     regexp.MustCompile(`\bAppTheme\.`),
	}
}

// Name returns the analyzer name.
func (a *StyleAnalyzer) Name() string {
	return "hardcodedstyle"
}

// Category returns the analyzer category.
func (a *StyleAnalyzer) Category() string {
	return CategoryStyle
}

// Analyze scans for hardcoded style values line by line, then reports a
// single file-level finding when a SwiftUI view never touches AppTheme.
func (a *StyleAnalyzer) Analyze(ctx context.Context, src *walker.Source) ([]model.Finding, error) {
	var findings []model.Finding

	isSwiftUI := false
	touchesTheme := false
	styledLines := 0

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
		if a.usesSwiftUI.MatchString(line) {
			isSwiftUI = true
		}
		if a.themeRef.MatchString(line) {
			touchesTheme = true
			continue
		}

		if m := a.colorValue(line); m != "" {
			styledLines++
			findings = append(findings, model.NewFinding(
				"hardcoded_color",
				"Hardcoded Color",
				"Color defined inline instead of via AppTheme.Colors.",
				src.Path, i+1,
			).WithValue(m).WithSnippet(trimmed))
		}

		if m := firstGroup(a.systemFont, line); m == "" {
			m = firstGroup(a.fontWeight, line)
			if m != "" {
				styledLines++
				findings = append(findings, a.fontFinding(src, i, m, trimmed))
			}
		} else {
			styledLines++
			findings = append(findings, a.fontFinding(src, i, m, trimmed))
		}

		for _, sp := range [](*regexp.Regexp){a.padding, a.spacing, a.cornerRadius} {
			if m := firstGroup(sp, line); m != "" {
				styledLines++
				findings = append(findings, model.NewFinding(
					"hardcoded_spacing",
					"Hardcoded Spacing",
					"Literal spacing value instead of AppTheme.Spacing.",
					src.Path, i+1,
				).WithValue(m).WithSnippet(trimmed))
			}
		}
	}

	// Views with real styling but zero theme references have drifted off
	// the design system entirely.
	if isSwiftUI && !touchesTheme && styledLines >= 3 {
		findings = append(findings, model.NewFinding(
			"missing_apptheme",
			"View Does Not Use AppTheme",
			"SwiftUI view styles itself without referencing AppTheme.",
			src.Path, 1,
		))
	}

	return findings, nil
}

func (a *StyleAnalyzer) colorValue(line string) string {
	if m := a.rawColor.FindStringSubmatch(line); m != nil {
		return "Color(" + m[1] + ":)"
	}
	if m := a.namedColor.FindStringSubmatch(line); m != nil {
		return `Color("` + m[1] + `")`
	}
	if m := a.builtinColor.FindStringSubmatch(line); m != nil {
		return "." + m[3]
	}
	return ""
}

func (a *StyleAnalyzer) fontFinding(src *walker.Source, i int, size, snippet string) model.Finding {
	return model.NewFinding(
		"hardcoded_font",
		"Hardcoded Font",
		"System font with a literal size instead of AppTheme.Typography.",
		src.Path, i+1,
	).WithValue(size).WithSnippet(snippet)
}

// firstGroup returns the first capture group of the first match, or "".
func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}
