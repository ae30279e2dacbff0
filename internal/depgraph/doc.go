// Package depgraph builds a file-level reference graph from Swift sources
// and detects dependency cycles and layering violations.
package depgraph
