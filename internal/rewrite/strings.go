package rewrite

import (
	"sort"
	"strings"

	"github.com/swiftaudit/swiftaudit/internal/model"
)

// buttonMappings are the common button titles worth consolidating.
var buttonMappings = map[string]string{
	"Save":     "AppStrings.Common.save",
	"Cancel":   "AppStrings.Common.cancel",
	"Delete":   "AppStrings.Common.delete",
	"OK":       "AppStrings.Common.ok",
	"Done":     "AppStrings.Common.done",
	"Edit":     "AppStrings.Common.edit",
	"Add":      "AppStrings.Common.add",
	"Update":   "AppStrings.Common.update",
	"Close":    "AppStrings.Common.close",
	"Continue": "AppStrings.Common.continue",
	"Back":     "AppStrings.Common.back",
	"Next":     "AppStrings.Common.next",
	"Submit":   "AppStrings.Common.submit",
	"Confirm":  "AppStrings.Common.confirm",
}

// statusMappings are transient status messages.
var statusMappings = map[string]string{
	"Loading...":     "AppStrings.Common.loading",
	"Saving...":      "AppStrings.Common.saving",
	"Updating...":    "AppStrings.Common.updating",
	"Syncing...":     "AppStrings.Common.syncing",
	"Please wait...": "AppStrings.Common.pleaseWait",
	"Processing...":  "AppStrings.Common.processing",
}

// StringsPass replaces duplicated literals with AppStrings constants.
// It only touches literals the frequency report proved are duplicated:
// single-use strings are cheaper to migrate by hand when the code is
// next edited, and rewriting them churns files for no consolidation win.
type StringsPass struct {
	replacements map[string]string
	additions    map[string]string
}

// NewStringsPass derives the replacement set from a strings report.
func NewStringsPass(report *model.StringsReport) *StringsPass {
	p := &StringsPass{
		replacements: make(map[string]string),
		additions:    make(map[string]string),
	}
	if report == nil {
		return p
	}

	isDuplicate := func(literal string) bool {
		if _, ok := report.Duplicates[literal]; ok {
			return true
		}
		_, ok := report.Duplicates[strings.TrimSuffix(literal, "...")]
		return ok
	}

	for literal, constant := range buttonMappings {
		if isDuplicate(literal) {
			p.replacements[`"`+literal+`"`] = constant
			p.additions[swiftIdentifier(constantLeaf(constant))] = literal
		}
	}
	for literal, constant := range statusMappings {
		if isDuplicate(literal) {
			p.replacements[`"`+literal+`"`] = constant
			p.additions[swiftIdentifier(constantLeaf(constant))] = literal
		}
	}
	return p
}

// Name returns the pass name.
func (p *StringsPass) Name() string { return "strings" }

// Apply substitutes the quoted literals. Lines that already reference
// AppStrings are skipped so re-runs stay no-ops.
func (p *StringsPass) Apply(content string) (string, int) {
	if len(p.replacements) == 0 {
		return content, 0
	}

	lines := strings.Split(content, "\n")
	count := 0
	for i, line := range lines {
		if strings.Contains(line, "AppStrings.") || strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		for quoted, constant := range p.replacements {
			if !strings.Contains(line, quoted) {
				continue
			}
			lines[i] = strings.ReplaceAll(lines[i], quoted, constant)
			count++
		}
	}
	return strings.Join(lines, "\n"), count
}

// Additions returns the constant-name to literal pairs the AppStrings
// catalog needs to gain for the rewritten code to compile, sorted by
// constant name.
func (p *StringsPass) Additions() []StringAddition {
	additions := make([]StringAddition, 0, len(p.additions))
	for name, literal := range p.additions {
		additions = append(additions, StringAddition{Name: name, Literal: literal})
	}
	sort.Slice(additions, func(i, j int) bool { return additions[i].Name < additions[j].Name })
	return additions
}

// StringAddition is one constant the AppStrings catalog must define.
type StringAddition struct {
	Name    string
	Literal string
}

// constantLeaf returns the last path component of an AppStrings constant.
func constantLeaf(constant string) string {
	parts := strings.Split(constant, ".")
	return parts[len(parts)-1]
}

// swiftKeywords are reserved words that cannot name a declaration
// without backticks. Member access after a dot does not need them,
// so only the Additions output is escaped.
var swiftKeywords = map[string]bool{
	"continue": true, "default": true, "return": true, "in": true,
	"for": true, "do": true, "case": true, "break": true,
	"switch": true, "repeat": true, "while": true, "import": true,
}

// swiftIdentifier backticks a name when Swift reserves it.
func swiftIdentifier(name string) string {
	if swiftKeywords[name] {
		return "`" + name + "`"
	}
	return name
}
