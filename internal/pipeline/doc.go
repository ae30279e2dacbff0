// Package pipeline orchestrates audit execution as a sequence of steps.
// Each step receives the accumulated report and the shared scan state,
// allowing discovery, analysis, and summarization to be composed,
// reordered, or skipped per command.
package pipeline
