package analyzer

import (
	"context"
	"testing"
)

// TestNavigationAnalyzer tests detail-view navigation style checks.
func TestNavigationAnalyzer(t *testing.T) {
	t.Parallel()

	t.Run("flags detail view storing a model object", func(t *testing.T) {
		t.Parallel()
		content := "import SwiftUI\n" +
			"struct OrderDetailView: View {\n" +
			"    let order: Order\n" +
			"    var body: some View { Text(order.title) }\n" +
			"}\n"
		a := NewNavigationAnalyzer()
		findings, err := a.Analyze(context.Background(), testSource("OrderDetailView.swift", content))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		objects := findByRule(findings, "navigation_object")
		if len(objects) != 1 {
			t.Fatalf("expected one navigation_object finding, got %+v", findings)
		}
		if objects[0].Value != "order" {
			t.Errorf("expected property name order, got %q", objects[0].Value)
		}
		if objects[0].Line != 3 {
			t.Errorf("expected line 3, got %d", objects[0].Line)
		}
	})

	t.Run("ID-based detail view is clean", func(t *testing.T) {
		t.Parallel()
		content := "struct OrderDetailView: View {\n" +
			"    let orderID: UUID\n" +
			"    var body: some View { EmptyView() }\n" +
			"}\n"
		a := NewNavigationAnalyzer()
		findings, err := a.Analyze(context.Background(), testSource("OrderDetailView.swift", content))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 0 {
			t.Errorf("expected no findings, got %+v", findings)
		}
	})

	t.Run("collaborators and wrappers are exempt", func(t *testing.T) {
		t.Parallel()
		content := "struct ItemDetailView: View {\n" +
			"    @StateObject var store: ItemStore\n" +
			"    let viewModel: ItemViewModel\n" +
			"    let tags: [Tag]\n" +
			"    let count: Int\n" +
			"    var body: some View { EmptyView() }\n" +
			"}\n"
		a := NewNavigationAnalyzer()
		findings, err := a.Analyze(context.Background(), testSource("ItemDetailView.swift", content))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findByRule(findings, "navigation_object")) != 0 {
			t.Errorf("expected no navigation_object findings, got %+v", findings)
		}
	})

	t.Run("non-detail views are ignored", func(t *testing.T) {
		t.Parallel()
		content := "struct OrderRow: View {\n" +
			"    let order: Order\n" +
			"    var body: some View { Text(order.title) }\n" +
			"}\n"
		a := NewNavigationAnalyzer()
		findings, err := a.Analyze(context.Background(), testSource("OrderRow.swift", content))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 0 {
			t.Errorf("expected no findings, got %+v", findings)
		}
	})

	t.Run("properties after body are not classified", func(t *testing.T) {
		t.Parallel()
		content := "struct OrderDetailView: View {\n" +
			"    let orderID: UUID\n" +
			"    var body: some View {\n" +
			"        let formatted: Order = resolve()\n" +
			"        return Text(formatted.title)\n" +
			"    }\n" +
			"}\n"
		a := NewNavigationAnalyzer()
		findings, err := a.Analyze(context.Background(), testSource("OrderDetailView.swift", content))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findByRule(findings, "navigation_object")) != 0 {
			t.Errorf("expected no navigation_object findings, got %+v", findings)
		}
	})
}

// TestNavigationAnalyzerFinish tests the project-level consistency check.
func TestNavigationAnalyzerFinish(t *testing.T) {
	t.Parallel()

	objectView := "struct OrderDetailView: View {\n" +
		"    let order: Order\n" +
		"    var body: some View { EmptyView() }\n" +
		"}\n"
	idView := "struct UserDetailView: View {\n" +
		"    let userID: String\n" +
		"    var body: some View { EmptyView() }\n" +
		"}\n"

	t.Run("mixed styles produce one project finding", func(t *testing.T) {
		t.Parallel()
		a := NewNavigationAnalyzer()
		ctx := context.Background()
		if _, err := a.Analyze(ctx, testSource("B/OrderDetailView.swift", objectView)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := a.Analyze(ctx, testSource("A/UserDetailView.swift", idView)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		finish := a.Finish()
		if len(finish) != 1 || finish[0].Rule != "navigation_mixed" {
			t.Fatalf("expected one navigation_mixed finding, got %+v", finish)
		}
		if finish[0].File != "B/OrderDetailView.swift" {
			t.Errorf("expected finding pinned to object file, got %s", finish[0].File)
		}
	})

	t.Run("consistent styles produce nothing", func(t *testing.T) {
		t.Parallel()
		a := NewNavigationAnalyzer()
		if _, err := a.Analyze(context.Background(), testSource("UserDetailView.swift", idView)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(a.Finish()) != 0 {
			t.Errorf("expected no project finding, got %+v", a.Finish())
		}
	})
}
