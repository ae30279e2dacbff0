package analyzer

import (
	"context"
	"testing"

	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// TestStringsCollector tests strings report assembly.
func TestStringsCollector(t *testing.T) {
	t.Parallel()

	sources := []*walker.Source{
		testSource("Features/Save/SaveView.swift",
			`Button("Save Changes") {}`+"\n"+
				`Text("Save Changes")`+"\n"+
				`Text("One Off Label")`+"\n"),
		testSource("Features/Errors/ErrorView.swift",
			`Text("Failed to save")`+"\n"+
				`Text("Failed to load")`+"\n"+
				`Text("Failed to sync")`+"\n"),
	}

	c := NewStringsCollector()
	report, err := c.Collect(context.Background(), "/project", sources)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("summary counters", func(t *testing.T) {
		if report.Summary.TotalOccurrences != 6 {
			t.Errorf("expected 6 occurrences, got %d", report.Summary.TotalOccurrences)
		}
		if report.Summary.TotalUniqueStrings != 5 {
			t.Errorf("expected 5 unique strings, got %d", report.Summary.TotalUniqueStrings)
		}
		if report.Summary.DuplicateStrings != 1 {
			t.Errorf("expected 1 duplicate, got %d", report.Summary.DuplicateStrings)
		}
		if report.Summary.SingleUseStrings != 4 {
			t.Errorf("expected 4 single-use strings, got %d", report.Summary.SingleUseStrings)
		}
	})

	t.Run("duplicates carry locations", func(t *testing.T) {
		dup, ok := report.Duplicates["Save Changes"]
		if !ok {
			t.Fatalf("expected Save Changes in duplicates, got %v", report.Duplicates)
		}
		if dup.Count != 2 {
			t.Errorf("expected count 2, got %d", dup.Count)
		}
		if len(dup.SampleLocations) != 2 {
			t.Fatalf("expected 2 sample locations, got %d", len(dup.SampleLocations))
		}
		if dup.SampleLocations[0].File != "Features/Save/SaveView.swift" || dup.SampleLocations[0].Line != 1 {
			t.Errorf("unexpected first location %+v", dup.SampleLocations[0])
		}
	})

	t.Run("interpolation candidates grouped by prefix", func(t *testing.T) {
		if len(report.InterpolationCandidates) != 1 {
			t.Fatalf("expected one candidate group, got %+v", report.InterpolationCandidates)
		}
		group := report.InterpolationCandidates[0]
		if group.Prefix != "Failed" {
			t.Errorf("expected prefix Failed, got %q", group.Prefix)
		}
		if len(group.Strings) != 3 {
			t.Errorf("expected 3 strings in group, got %v", group.Strings)
		}
	})

	t.Run("hot files ranked by count", func(t *testing.T) {
		if n := report.FilesWithMostStrings["Features/Save/SaveView.swift"]; n != 3 {
			t.Errorf("expected 3 strings in SaveView, got %d", n)
		}
		if n := report.FilesWithMostStrings["Features/Errors/ErrorView.swift"]; n != 3 {
			t.Errorf("expected 3 strings in ErrorView, got %d", n)
		}
	})

	t.Run("suggestions categorized", func(t *testing.T) {
		errs := report.Suggestions["error messages"]
		if len(errs) != 3 {
			t.Errorf("expected 3 error-message suggestions, got %v", errs)
		}
		buttons := report.Suggestions["button titles"]
		if len(buttons) != 1 || buttons[0] != "Save Changes" {
			t.Errorf("expected Save Changes under button titles, got %v", buttons)
		}
	})
}

// TestStringsCollectorLimitsSamples tests the sample-location cap.
func TestStringsCollectorLimitsSamples(t *testing.T) {
	t.Parallel()

	content := ""
	for range 7 {
		content += `Text("Try Again")` + "\n"
	}

	c := NewStringsCollector()
	report, err := c.Collect(context.Background(), "/project",
		[]*walker.Source{testSource("RetryView.swift", content)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dup := report.Duplicates["Try Again"]
	if dup.Count != 7 {
		t.Errorf("expected count 7, got %d", dup.Count)
	}
	if len(dup.SampleLocations) != maxSampleLocations {
		t.Errorf("expected %d sample locations, got %d", maxSampleLocations, len(dup.SampleLocations))
	}
}
