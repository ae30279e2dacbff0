package rewrite

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// colorNames maps raw SwiftUI color names to their theme equivalents.
var colorNames = map[string]string{
	"red":       "error",
	"green":     "success",
	"blue":      "primary",
	"orange":    "warning",
	"yellow":    "warning",
	"gray":      "onSurface.opacity(0.6)",
	"black":     "onBackground",
	"white":     "background",
	"purple":    "secondary",
	"pink":      "accent",
	"clear":     "clear",
	"primary":   "primary",
	"secondary": "onSurface.opacity(0.6)",
}

// namedFonts maps built-in text styles to typography tokens. The three
// title variants collapse to one token and so do the two captions; the
// design system does not distinguish them.
var namedFonts = map[string]string{
	"largeTitle":  "largeTitle",
	"title":       "title",
	"title2":      "title",
	"title3":      "title",
	"headline":    "headline",
	"body":        "body",
	"callout":     "callout",
	"subheadline": "subheadline",
	"footnote":    "footnote",
	"caption":     "caption",
	"caption2":    "caption",
}

// spacingTokens maps literal point values to spacing tokens. Values not
// listed are left untouched; zero stays zero.
var spacingTokens = map[string]string{
	"4":  "AppTheme.Spacing.tiny",
	"8":  "AppTheme.Spacing.small",
	"12": "AppTheme.Spacing.small",
	"16": "AppTheme.Spacing.medium",
	"20": "AppTheme.Spacing.medium",
	"24": "AppTheme.Spacing.large",
	"32": "AppTheme.Spacing.extraLarge",
	"40": "AppTheme.Spacing.extraLarge",
	"48": "AppTheme.Spacing.huge",
}

var cornerRadiusTokens = map[string]string{
	"4":  "AppTheme.CornerRadius.small",
	"8":  "AppTheme.CornerRadius.medium",
	"12": "AppTheme.CornerRadius.large",
	"16": "AppTheme.CornerRadius.extraLarge",
	"20": "AppTheme.CornerRadius.extraLarge",
	"24": "AppTheme.CornerRadius.huge",
}

var (
	colorToken      = regexp.MustCompile(`(?:Color)?\.(red|green|blue|orange|yellow|gray|black|white|purple|pink|primary|secondary)\b`)
	fontSizeWeight  = regexp.MustCompile(`\.font\(\.system\(size:\s*(\d+),\s*weight:\s*\.(\w+)\)\)`)
	fontSize        = regexp.MustCompile(`\.font\(\.system\(size:\s*(\d+)\)\)`)
	fontNamed       = regexp.MustCompile(`\.font\(\.(largeTitle|title2|title3|title|headline|body|callout|subheadline|footnote|caption2|caption)\)`)
	paddingLiteral  = regexp.MustCompile(`\.padding\((\.\w+,\s*)?(\d+)\)`)
	spacingLiteral  = regexp.MustCompile(`\bspacing:\s*(\d+)\b`)
	cornerLiteral   = regexp.MustCompile(`\.cornerRadius\((\d+)\)`)
	heavyWeights    = map[string]bool{"bold": true, "semibold": true, "heavy": true}
)

// ColorPass replaces raw color references with AppTheme.Colors tokens.
type ColorPass struct{}

// Name returns the pass name.
func (ColorPass) Name() string { return "colors" }

// Apply rewrites color tokens. Matches already preceded by the theme
// namespace are left alone so the pass is idempotent even inside the
// theme definition file itself.
func (ColorPass) Apply(content string) (string, int) {
	var b strings.Builder
	last, count := 0, 0

	for _, loc := range colorToken.FindAllStringSubmatchIndex(content, -1) {
		start, end := loc[0], loc[1]
		if start < last || strings.HasSuffix(content[:start], "AppTheme.Colors") {
			continue
		}
		name := content[loc[2]:loc[3]]
		b.WriteString(content[last:start])
		b.WriteString("AppTheme.Colors." + colorNames[name])
		last = end
		count++
	}
	b.WriteString(content[last:])
	return b.String(), count
}

// FontPass replaces system fonts and built-in text styles with
// typography tokens. Literal sizes map to the nearest token; a heavy
// weight promotes the mapping one bucket up.
type FontPass struct{}

// Name returns the pass name.
func (FontPass) Name() string { return "fonts" }

// Apply rewrites font modifiers.
func (FontPass) Apply(content string) (string, int) {
	count := 0

	content = fontSizeWeight.ReplaceAllStringFunc(content, func(m string) string {
		sm := fontSizeWeight.FindStringSubmatch(m)
		size, _ := strconv.Atoi(sm[1])
		count++
		if heavyWeights[sm[2]] {
			return fmt.Sprintf(".font(AppTheme.Typography.%s)", boldToken(size))
		}
		return fmt.Sprintf(".font(AppTheme.Typography.%s)", sizeToken(size))
	})

	content = fontSize.ReplaceAllStringFunc(content, func(m string) string {
		sm := fontSize.FindStringSubmatch(m)
		size, _ := strconv.Atoi(sm[1])
		count++
		return fmt.Sprintf(".font(AppTheme.Typography.%s)", sizeToken(size))
	})

	content = fontNamed.ReplaceAllStringFunc(content, func(m string) string {
		sm := fontNamed.FindStringSubmatch(m)
		count++
		return fmt.Sprintf(".font(AppTheme.Typography.%s)", namedFonts[sm[1]])
	})

	return content, count
}

// sizeToken buckets a literal point size into a typography token.
func sizeToken(size int) string {
	switch {
	case size <= 12:
		return "caption"
	case size <= 14:
		return "footnote"
	case size <= 16:
		return "body"
	case size <= 18:
		return "callout"
	case size <= 20:
		return "headline"
	case size <= 24:
		return "title"
	default:
		return "largeTitle"
	}
}

// boldToken buckets a bold or heavier font one level up.
func boldToken(size int) string {
	switch {
	case size <= 16:
		return "headline"
	case size <= 20:
		return "title"
	default:
		return "largeTitle"
	}
}

// SpacingPass replaces literal padding, stack spacing, and corner radius
// values with their tokens.
type SpacingPass struct {
	// Tolerance snaps off-scale values within this distance onto the
	// spacing scale. Zero means exact matches only.
	Tolerance int
}

// Name returns the pass name.
func (SpacingPass) Name() string { return "spacing" }

// Apply rewrites spacing literals.
func (p SpacingPass) Apply(content string) (string, int) {
	count := 0

	content = paddingLiteral.ReplaceAllStringFunc(content, func(m string) string {
		sm := paddingLiteral.FindStringSubmatch(m)
		token, ok := nearbyToken(spacingTokens, sm[2], p.Tolerance)
		if !ok {
			return m
		}
		count++
		return fmt.Sprintf(".padding(%s%s)", sm[1], token)
	})

	content = spacingLiteral.ReplaceAllStringFunc(content, func(m string) string {
		sm := spacingLiteral.FindStringSubmatch(m)
		token, ok := nearbyToken(spacingTokens, sm[1], p.Tolerance)
		if !ok {
			return m
		}
		count++
		return "spacing: " + token
	})

	content = cornerLiteral.ReplaceAllStringFunc(content, func(m string) string {
		sm := cornerLiteral.FindStringSubmatch(m)
		token, ok := cornerRadiusTokens[sm[1]]
		if !ok {
			return m
		}
		count++
		return fmt.Sprintf(".cornerRadius(%s)", token)
	})

	return content, count
}

// nearbyToken resolves a literal against a token map, snapping to a
// value within the tolerance when the exact one is absent. Snapping
// prefers the closer value and never touches zero.
func nearbyToken(tokens map[string]string, lit string, tolerance int) (string, bool) {
	if t, ok := tokens[lit]; ok {
		return t, true
	}
	if tolerance <= 0 {
		return "", false
	}
	n, err := strconv.Atoi(lit)
	if err != nil || n == 0 {
		return "", false
	}
	for d := 1; d <= tolerance; d++ {
		if t, ok := tokens[strconv.Itoa(n-d)]; ok {
			return t, true
		}
		if t, ok := tokens[strconv.Itoa(n+d)]; ok {
			return t, true
		}
	}
	return "", false
}
