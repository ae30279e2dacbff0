package rewrite

import (
	"testing"

	"github.com/swiftaudit/swiftaudit/internal/model"
)

func reportWithDuplicates(literals ...string) *model.StringsReport {
	report := model.NewStringsReport("/project")
	for _, l := range literals {
		report.Duplicates[l] = model.DuplicateString{Count: 2}
	}
	return report
}

// TestNewStringsPass tests replacement derivation from the report.
func TestNewStringsPass(t *testing.T) {
	t.Parallel()

	t.Run("only duplicated mappings are active", func(t *testing.T) {
		t.Parallel()
		p := NewStringsPass(reportWithDuplicates("Save", "Loading..."))

		content := `Button("Save") {}` + "\n" +
			`Button("Cancel") {}` + "\n" +
			`Text("Loading...")` + "\n"
		got, count := p.Apply(content)

		want := `Button(AppStrings.Common.save) {}` + "\n" +
			`Button("Cancel") {}` + "\n" +
			`Text(AppStrings.Common.loading)` + "\n"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
		if count != 2 {
			t.Errorf("expected 2 substitutions, got %d", count)
		}
	})

	t.Run("ellipsis variants match their base literal", func(t *testing.T) {
		t.Parallel()
		// The report records "Saving" while the mapping key is "Saving...".
		p := NewStringsPass(reportWithDuplicates("Saving"))

		got, count := p.Apply(`Text("Saving...")`)
		if got != "Text(AppStrings.Common.saving)" {
			t.Errorf("unexpected output %q", got)
		}
		if count != 1 {
			t.Errorf("expected 1 substitution, got %d", count)
		}
	})

	t.Run("nil report disables the pass", func(t *testing.T) {
		t.Parallel()
		p := NewStringsPass(nil)
		content := `Button("Save") {}`
		got, count := p.Apply(content)
		if got != content || count != 0 {
			t.Errorf("expected no-op, got %q with %d substitutions", got, count)
		}
	})
}

// TestStringsPassApply tests line-level skip rules.
func TestStringsPassApply(t *testing.T) {
	t.Parallel()

	p := NewStringsPass(reportWithDuplicates("Save"))

	t.Run("migrated lines are left alone", func(t *testing.T) {
		t.Parallel()
		content := `Button(AppStrings.Common.save) { save("Save") }`
		got, count := p.Apply(content)
		if got != content || count != 0 {
			t.Errorf("expected no-op on migrated line, got %q", got)
		}
	})

	t.Run("comment lines are left alone", func(t *testing.T) {
		t.Parallel()
		content := `// shows "Save" in the toolbar`
		got, count := p.Apply(content)
		if got != content || count != 0 {
			t.Errorf("expected no-op on comment, got %q", got)
		}
	})

	t.Run("repeated application is a no-op", func(t *testing.T) {
		t.Parallel()
		once, _ := p.Apply(`Button("Save") {}`)
		twice, count := p.Apply(once)
		if twice != once || count != 0 {
			t.Errorf("expected stable output, got %q", twice)
		}
	})
}

// TestStringsPassAdditions tests the catalog addition list.
func TestStringsPassAdditions(t *testing.T) {
	t.Parallel()

	p := NewStringsPass(reportWithDuplicates("Save", "Cancel", "Loading..."))
	additions := p.Additions()

	if len(additions) != 3 {
		t.Fatalf("expected 3 additions, got %+v", additions)
	}
	// Sorted by constant name.
	if additions[0].Name != "cancel" || additions[1].Name != "loading" || additions[2].Name != "save" {
		t.Errorf("unexpected order %+v", additions)
	}
	if additions[2].Literal != "Save" {
		t.Errorf("expected literal Save, got %q", additions[2].Literal)
	}
}

// TestSwiftIdentifier tests backticking of reserved words.
func TestSwiftIdentifier(t *testing.T) {
	t.Parallel()

	t.Run("reserved word declarations are backticked", func(t *testing.T) {
		t.Parallel()
		p := NewStringsPass(reportWithDuplicates("Continue"))

		additions := p.Additions()
		if len(additions) != 1 {
			t.Fatalf("expected 1 addition, got %+v", additions)
		}
		if additions[0].Name != "`continue`" {
			t.Errorf("expected backticked name, got %q", additions[0].Name)
		}
		if additions[0].Literal != "Continue" {
			t.Errorf("expected literal Continue, got %q", additions[0].Literal)
		}

		// Member access after a dot does not need the backticks.
		got, count := p.Apply(`Button("Continue") {}`)
		if got != "Button(AppStrings.Common.continue) {}" || count != 1 {
			t.Errorf("unexpected rewrite %q with %d substitutions", got, count)
		}
	})

	t.Run("ordinary names pass through", func(t *testing.T) {
		t.Parallel()
		if got := swiftIdentifier("save"); got != "save" {
			t.Errorf("expected save, got %q", got)
		}
		if got := swiftIdentifier("default"); got != "`default`" {
			t.Errorf("expected backticked default, got %q", got)
		}
	})
}
