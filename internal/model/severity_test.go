package model

import "testing"

// TestSeverityString tests the String method of Severity.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		severity Severity
		expected string
	}{
		{SeverityInfo, "INFO"},
		{SeverityLow, "LOW"},
		{SeverityMedium, "MEDIUM"},
		{SeverityHigh, "HIGH"},
		{SeverityCritical, "CRITICAL"},
		{Severity(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.severity.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.severity.String(), tc.expected)
			}
		})
	}
}

// TestParseSeverity tests severity name parsing.
func TestParseSeverity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		expected Severity
		ok       bool
	}{
		{"info", SeverityInfo, true},
		{"low", SeverityLow, true},
		{"medium", SeverityMedium, true},
		{"high", SeverityHigh, true},
		{"critical", SeverityCritical, true},
		{"HIGH", SeverityHigh, true},
		{"Critical", SeverityCritical, true},
		{"severe", SeverityInfo, false},
		{"", SeverityInfo, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result, ok := ParseSeverity(tc.name)
			if ok != tc.ok {
				t.Errorf("ParseSeverity(%q) ok = %v, expected %v", tc.name, ok, tc.ok)
			}
			if result != tc.expected {
				t.Errorf("ParseSeverity(%q) = %v, expected %v", tc.name, result, tc.expected)
			}
		})
	}
}

// TestGetSeverity tests the GetSeverity function.
func TestGetSeverity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		rule     string
		expected Severity
	}{
		// Critical findings
		{"force_try", SeverityCritical},
		{"dependency_cycle", SeverityCritical},

		// High findings
		{"force_unwrap", SeverityHigh},
		{"force_cast", SeverityHigh},
		{"retain_cycle", SeverityHigh},
		{"missing_import", SeverityHigh},

		// Medium findings
		{"hardcoded_string", SeverityMedium},
		{"layer_violation", SeverityMedium},
		{"navigation_mixed", SeverityMedium},

		// Low findings
		{"unused_import", SeverityLow},
		{"deprecated_onchange", SeverityLow},

		// Info findings
		{"naming_variable", SeverityInfo},
		{"onchange_review", SeverityInfo},

		// Unknown rule defaults to Info
		{"unknown_rule", SeverityInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.rule, func(t *testing.T) {
			t.Parallel()
			result := GetSeverity(tc.rule)
			if result != tc.expected {
				t.Errorf("GetSeverity(%q) = %v, expected %v", tc.rule, result, tc.expected)
			}
		})
	}
}

// TestSeverityOrdering tests that severity levels are ordered correctly.
// Info < Low < Medium < High < Critical
func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	if !(SeverityInfo < SeverityLow &&
		SeverityLow < SeverityMedium &&
		SeverityMedium < SeverityHigh &&
		SeverityHigh < SeverityCritical) {
		t.Error("severity levels are not ordered Info < Low < Medium < High < Critical")
	}
}

// TestGetRuleInfo tests rule metadata lookup.
func TestGetRuleInfo(t *testing.T) {
	t.Parallel()

	t.Run("known rule has impact and recommendation", func(t *testing.T) {
		t.Parallel()
		info := GetRuleInfo("force_unwrap")
		if info.Severity != SeverityHigh {
			t.Errorf("expected HIGH severity, got %v", info.Severity)
		}
		if info.Impact == "" {
			t.Error("expected non-empty impact")
		}
		if info.Recommendation == "" {
			t.Error("expected non-empty recommendation")
		}
	})

	t.Run("unknown rule gets a review default", func(t *testing.T) {
		t.Parallel()
		info := GetRuleInfo("no_such_rule")
		if info.Severity != SeverityInfo {
			t.Errorf("expected INFO severity, got %v", info.Severity)
		}
		if info.Impact == "" || info.Recommendation == "" {
			t.Error("expected default impact and recommendation")
		}
	})
}

// TestKnownRules tests that every registered rule has complete metadata.
func TestKnownRules(t *testing.T) {
	t.Parallel()

	rules := KnownRules()
	if len(rules) == 0 {
		t.Fatal("expected registered rules")
	}

	for _, rule := range rules {
		info := GetRuleInfo(rule)
		if info.Impact == "" {
			t.Errorf("rule %q has empty impact", rule)
		}
		if info.Recommendation == "" {
			t.Errorf("rule %q has empty recommendation", rule)
		}
	}
}
