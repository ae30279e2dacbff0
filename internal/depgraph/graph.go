package depgraph

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// Graph is a directed reference graph between Swift files, keyed by file
// stem. Edges are derived from imports, singleton access, and typed
// property declarations, so the graph over-approximates the true compile
// dependencies. That is fine for cycle hunting: a reported cycle still
// names real cross-references worth untangling.
type Graph struct {
	nodes  map[string]bool
	edges  map[string]map[string]bool
	layers map[string]string
	paths  map[string]string

	// managers holds explicitly configured manager type names. Empty
	// means autodetect by the *Manager suffix.
	managers map[string]bool

	// managerRef matches type annotations naming a configured manager.
	// Nil falls back to the suffix-based managerPattern.
	managerRef *regexp.Regexp
}

// extraction patterns. Extraction works against stems, so "FooManager.shared"
// links to FooManager.swift when such a file exists.
var (
	importPattern    = regexp.MustCompile(`^\s*(?:@testable\s+)?import\s+(\w+)`)
	singletonPattern = regexp.MustCompile(`\b([A-Z]\w+)\.shared\b`)
	typedPropPattern = regexp.MustCompile(`\b(?:let|var)\s+\w+\s*:\s*([A-Z]\w+)`)
	managerPattern   = regexp.MustCompile(`:\s*([A-Z]\w*Manager)\b`)
)

// Option configures a Graph.
type Option func(*Graph)

// WithManagers sets the explicit manager type names tracked by the
// extraction and the layer checks. An empty list keeps the *Manager
// suffix autodetection.
func WithManagers(names []string) Option {
	return func(g *Graph) {
		if len(names) == 0 {
			return
		}
		quoted := make([]string, len(names))
		for i, n := range names {
			g.managers[n] = true
			quoted[i] = regexp.QuoteMeta(n)
		}
		g.managerRef = regexp.MustCompile(`:\s*(` + strings.Join(quoted, "|") + `)\b`)
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes:    make(map[string]bool),
		edges:    make(map[string]map[string]bool),
		layers:   make(map[string]string),
		paths:    make(map[string]string),
		managers: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Build extracts the reference graph from the given sources. Edges are
// only recorded between files present in the scan; references to system
// frameworks and third-party types fall away on their own.
func Build(ctx context.Context, sources []*walker.Source, opts ...Option) (*Graph, error) {
	g := New(opts...)

	for _, src := range sources {
		stem := src.Stem()
		g.nodes[stem] = true
		g.layers[stem] = src.Layer()
		g.paths[stem] = src.Path
	}

	for _, src := range sources {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		from := src.Stem()
		managerRef := managerPattern
		if g.managerRef != nil {
			managerRef = g.managerRef
		}
		for _, line := range src.Lines {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "//") {
				continue
			}
			for _, re := range [](*regexp.Regexp){importPattern, singletonPattern, typedPropPattern, managerRef} {
				for _, m := range re.FindAllStringSubmatch(line, -1) {
					g.addEdge(from, m[1])
				}
			}
		}
	}

	return g, nil
}

func (g *Graph) addEdge(from, to string) {
	if from == to || !g.nodes[to] {
		return
	}
	if g.edges[from] == nil {
		g.edges[from] = make(map[string]bool)
	}
	g.edges[from][to] = true
}

// NodeCount returns the number of files in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct references.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.edges {
		n += len(targets)
	}
	return n
}

// Dependencies returns the sorted targets of a node.
func (g *Graph) Dependencies(node string) []string {
	targets := make([]string, 0, len(g.edges[node]))
	for t := range g.edges[node] {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// Path returns the file path behind a node, or "" for unknown nodes.
func (g *Graph) Path(node string) string {
	return g.paths[node]
}

// Layer returns the layer (first path component) of a node.
func (g *Graph) Layer(node string) string {
	return g.layers[node]
}

// IsManager reports whether a node counts as a manager for the layer
// checks: membership in the configured list, or the Manager suffix when
// no list was configured.
func (g *Graph) IsManager(node string) bool {
	if len(g.managers) > 0 {
		return g.managers[node]
	}
	return strings.HasSuffix(node, "Manager")
}

// sortedNodes returns node names in stable order for deterministic output.
func (g *Graph) sortedNodes() []string {
	nodes := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}
