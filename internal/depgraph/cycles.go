package depgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/swiftaudit/swiftaudit/internal/model"
)

// maxCycleDepth bounds the DFS. Cycles longer than this exist only in
// pathological codebases and are subsumed by their shorter segments.
const maxCycleDepth = 8

// Cycles returns every distinct dependency cycle up to maxCycleDepth.
// Each cycle is canonicalized by rotating it so the lexicographically
// smallest node comes first, which makes the output stable and lets the
// same cycle discovered from different entry points collapse to one.
func (g *Graph) Cycles() [][]string {
	seen := map[string]bool{}
	var cycles [][]string

	var dfs func(node string, path []string, onPath map[string]bool)
	dfs = func(node string, path []string, onPath map[string]bool) {
		if len(path) > maxCycleDepth {
			return
		}
		for _, next := range g.Dependencies(node) {
			if onPath[next] {
				start := 0
				for i, p := range path {
					if p == next {
						start = i
						break
					}
				}
				cycle := canonicalize(path[start:])
				key := strings.Join(cycle, "->")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
				continue
			}
			onPath[next] = true
			dfs(next, append(path, next), onPath)
			delete(onPath, next)
		}
	}

	for _, node := range g.sortedNodes() {
		dfs(node, []string{node}, map[string]bool{node: true})
	}

	sort.Slice(cycles, func(i, j int) bool {
		if len(cycles[i]) != len(cycles[j]) {
			return len(cycles[i]) < len(cycles[j])
		}
		return strings.Join(cycles[i], "->") < strings.Join(cycles[j], "->")
	})
	return cycles
}

// canonicalize rotates a cycle so its smallest node comes first.
func canonicalize(cycle []string) []string {
	if len(cycle) == 0 {
		return nil
	}
	smallest := 0
	for i, n := range cycle {
		if n < cycle[smallest] {
			smallest = i
		}
	}
	rotated := make([]string, 0, len(cycle))
	rotated = append(rotated, cycle[smallest:]...)
	rotated = append(rotated, cycle[:smallest]...)
	return rotated
}

// LayerViolation is a feature-layer file reaching directly into a
// core-layer manager.
type LayerViolation struct {
	From string
	To   string
}

// LayerViolations reports feature files that depend on core managers
// directly instead of through an injected abstraction.
func (g *Graph) LayerViolations(featureLayer, coreLayer string) []LayerViolation {
	var violations []LayerViolation
	for _, from := range g.sortedNodes() {
		if g.layers[from] != featureLayer {
			continue
		}
		for _, to := range g.Dependencies(from) {
			if g.layers[to] == coreLayer && g.IsManager(to) {
				violations = append(violations, LayerViolation{From: from, To: to})
			}
		}
	}
	return violations
}

// Findings converts cycles and layer violations into report findings and
// a graph summary.
func (g *Graph) Findings(featureLayer, coreLayer string) ([]model.Finding, *model.GraphSummary) {
	cycles := g.Cycles()
	violations := g.LayerViolations(featureLayer, coreLayer)

	summary := &model.GraphSummary{
		Nodes:           g.NodeCount(),
		Edges:           g.EdgeCount(),
		Cycles:          cycles,
		LayerViolations: len(violations),
	}

	var findings []model.Finding
	for _, cycle := range cycles {
		display := append(cycle, cycle[0])
		first := cycle[0]
		findings = append(findings, model.NewFinding(
			"dependency_cycle",
			"Dependency Cycle",
			fmt.Sprintf("Files form a reference cycle: %s.", strings.Join(display, " -> ")),
			g.Path(first), 1,
		).WithValue(strings.Join(cycle, "->")))
	}
	for _, v := range violations {
		findings = append(findings, model.NewFinding(
			"layer_violation",
			"Layer Violation",
			fmt.Sprintf("%s depends directly on core manager %s.", v.From, v.To),
			g.Path(v.From), 1,
		).WithValue(v.To))
	}

	return findings, summary
}
