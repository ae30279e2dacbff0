// Package main provides the entry point for the swiftaudit CLI.
//
// swiftaudit is a static analysis and code-fix tool for SwiftUI codebases.
// It flags crash-prone force unwraps, retain-cycle-prone closures, hardcoded
// styling and strings, dependency cycles, and layering violations, and can
// rewrite raw styling and duplicated literals into design-system tokens.
//
// Usage:
//
//	swiftaudit scan [project-root...]
//	swiftaudit fix [project-root...]
//	swiftaudit strings [project-root]
//
// See --help for all available options.
package main

// main is the entry point for swiftaudit.
func main() {
	Execute()
}
