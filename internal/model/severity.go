package model

// Severity represents the risk level of an audit finding.
// This allows categorizing findings by how likely they are to cause a
// runtime crash or a maintenance problem in the analyzed codebase.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates advisory findings with no direct correctness impact.
	// Examples: naming style deviations, navigation patterns flagged for review.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues with limited impact.
	// Examples: unused imports, deprecated onChange closures, views that
	// never reference the shared theme.
	SeverityLow

	// SeverityMedium indicates moderate issues that warrant attention.
	// Examples: hardcoded UI strings and styling values, implicitly
	// unwrapped optionals, architecture layer violations.
	SeverityMedium

	// SeverityHigh indicates serious issues that risk runtime crashes or
	// structural decay. Examples: force unwrapping, force casts, escaping
	// closures capturing self strongly, missing imports.
	SeverityHigh

	// SeverityCritical indicates severe issues that will crash the app on
	// the failure path or lock the architecture into a cycle.
	// Examples: try! on throwing calls, dependency cycles between managers.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a severity name (case-insensitive) to a Severity.
// It returns SeverityInfo and false when the name is unknown.
func ParseSeverity(name string) (Severity, bool) {
	switch {
	case equalFold(name, "info"):
		return SeverityInfo, true
	case equalFold(name, "low"):
		return SeverityLow, true
	case equalFold(name, "medium"):
		return SeverityMedium, true
	case equalFold(name, "high"):
		return SeverityHigh, true
	case equalFold(name, "critical"):
		return SeverityCritical, true
	default:
		return SeverityInfo, false
	}
}

// equalFold is a small ASCII-only case-insensitive comparison.
// Severity names are ASCII, so we avoid pulling in strings for a hot path
// that the analyzers call per finding.
func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// RuleInfo contains metadata about a rule including severity,
// impact description, and remediation recommendation.
type RuleInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// ruleInfoMapping maps rule identifiers to their metadata.
// This centralized mapping ensures consistent risk assessment across the application.
//
// Design decision: We use a map rather than embedding severity in each analyzer
// because:
// 1. It allows updating risk assessments without modifying analyzer code
// 2. It provides a single source of truth for risk levels
// 3. It makes it easy to generate rule documentation
var ruleInfoMapping = map[string]RuleInfo{
	// CRITICAL - crashes on the failure path, or structural lock-in
	"force_try": {
		Severity:       SeverityCritical,
		Impact:         "try! crashes the process whenever the wrapped call throws, with no recovery path.",
		Recommendation: "Use do/catch or try? and handle the failure explicitly.",
	},
	"dependency_cycle": {
		Severity:       SeverityCritical,
		Impact:         "Files reference each other in a cycle, preventing modularization and causing initialization-order bugs.",
		Recommendation: "Break the cycle by introducing a protocol or moving the shared type into a lower layer.",
	},

	// HIGH - likely crashes or structural decay
	"force_unwrap": {
		Severity:       SeverityHigh,
		Impact:         "Force unwrapping crashes at runtime when the optional is nil.",
		Recommendation: "Use if let, guard let, or nil-coalescing instead of the ! operator.",
	},
	"force_cast": {
		Severity:       SeverityHigh,
		Impact:         "as! crashes at runtime when the value has a different dynamic type.",
		Recommendation: "Use as? with an explicit failure branch.",
	},
	"retain_cycle": {
		Severity:       SeverityHigh,
		Impact:         "An escaping closure captures self strongly, which can leak the owning object.",
		Recommendation: "Capture [weak self] and upgrade with guard let self at the top of the closure.",
	},
	"missing_import": {
		Severity:       SeverityHigh,
		Impact:         "The file references framework symbols without importing the framework, so it will not compile in isolation.",
		Recommendation: "Add the missing import statement.",
	},

	// MEDIUM - maintenance and consistency problems
	"implicitly_unwrapped_optional": {
		Severity:       SeverityMedium,
		Impact:         "Implicitly unwrapped optionals crash on first access when left nil.",
		Recommendation: "Declare the property as a regular optional or inject it at initialization.",
	},
	"hardcoded_string": {
		Severity:       SeverityMedium,
		Impact:         "User-facing text embedded in code cannot be localized or audited in one place.",
		Recommendation: "Move the literal into AppStrings and reference the constant.",
	},
	"hardcoded_color": {
		Severity:       SeverityMedium,
		Impact:         "Literal colors drift from the design system and break dark-mode support.",
		Recommendation: "Use the matching AppTheme.Colors constant.",
	},
	"hardcoded_font": {
		Severity:       SeverityMedium,
		Impact:         "Literal font sizes bypass Dynamic Type and the shared typography scale.",
		Recommendation: "Use the matching AppTheme.Typography constant.",
	},
	"hardcoded_spacing": {
		Severity:       SeverityMedium,
		Impact:         "Literal padding and spacing values drift from the shared spacing scale.",
		Recommendation: "Use the matching AppTheme.Spacing constant.",
	},
	"layer_violation": {
		Severity:       SeverityMedium,
		Impact:         "A feature module depends directly on core managers, inverting the intended layering.",
		Recommendation: "Route the dependency through an injected protocol owned by the feature layer.",
	},
	"main_sync": {
		Severity:       SeverityMedium,
		Impact:         "DispatchQueue.main.sync deadlocks when called from the main thread.",
		Recommendation: "Use async dispatch or structured concurrency.",
	},
	"thread_sleep": {
		Severity:       SeverityMedium,
		Impact:         "Thread.sleep blocks a cooperative thread pool thread inside async code.",
		Recommendation: "Use Task.sleep, which suspends instead of blocking.",
	},
	"missing_await": {
		Severity:       SeverityMedium,
		Impact:         "An async-looking call without await either never runs or silently drops its result.",
		Recommendation: "Add await, or rename the function if it is synchronous.",
	},
	"navigation_object": {
		Severity:       SeverityMedium,
		Impact:         "Detail views holding whole model objects go stale when the store updates; sibling views use ID lookups.",
		Recommendation: "Pass the model identifier and resolve the object from the store.",
	},
	"navigation_mixed": {
		Severity:       SeverityMedium,
		Impact:         "Detail views mix ID-based and object-based navigation, so deep links behave inconsistently.",
		Recommendation: "Standardize on ID-based navigation for all detail views.",
	},

	// LOW - cleanups
	"unused_import": {
		Severity:       SeverityLow,
		Impact:         "Unused imports add compile time and suggest stale dependencies.",
		Recommendation: "Delete the import statement.",
	},
	"deprecated_onchange": {
		Severity:       SeverityLow,
		Impact:         "The single-parameter onChange(of:) closure is deprecated since iOS 17.",
		Recommendation: "Adopt the two-parameter (oldValue, newValue) closure form.",
	},
	"missing_apptheme": {
		Severity:       SeverityLow,
		Impact:         "The view builds UI without referencing AppTheme, so it cannot follow theme changes.",
		Recommendation: "Style the view through AppTheme constants.",
	},

	// INFO - advisory
	"naming_variable": {
		Severity:       SeverityInfo,
		Impact:         "Variable names deviate from lowerCamelCase.",
		Recommendation: "Rename to lowerCamelCase without underscores.",
	},
	"naming_type": {
		Severity:       SeverityInfo,
		Impact:         "Type names deviate from UpperCamelCase.",
		Recommendation: "Rename to UpperCamelCase.",
	},
	"onchange_review": {
		Severity:       SeverityInfo,
		Impact:         "An onChange call spans multiple lines and could not be classified automatically.",
		Recommendation: "Review the closure signature manually.",
	},
}

// GetSeverity returns the severity level for a rule.
// Returns SeverityInfo if the rule is not in the mapping.
func GetSeverity(rule string) Severity {
	if info, ok := ruleInfoMapping[rule]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetRuleInfo returns the full rule information for a rule identifier.
// Returns a default RuleInfo with SeverityInfo if the rule is not in the mapping.
func GetRuleInfo(rule string) RuleInfo {
	if info, ok := ruleInfoMapping[rule]; ok {
		return info
	}
	return RuleInfo{
		Severity:       SeverityInfo,
		Impact:         "Unknown rule. Review manually.",
		Recommendation: "Investigate the finding and assess risk.",
	}
}

// KnownRules returns the identifiers of all rules with registered metadata.
// The order is unspecified; callers that need stable output should sort.
func KnownRules() []string {
	rules := make([]string, 0, len(ruleInfoMapping))
	for rule := range ruleInfoMapping {
		rules = append(rules, rule)
	}
	return rules
}
