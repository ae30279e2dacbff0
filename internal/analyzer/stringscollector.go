package analyzer

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/swiftaudit/swiftaudit/internal/model"
	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// StringsCollector builds a frequency report over every UI-plausible
// string literal in a codebase. The report drives the consolidation
// rewrite, so it records exact locations rather than just counts.
type StringsCollector struct {
	stringPattern *regexp.Regexp
	filter        *HardcodedStringAnalyzer
}

// NewStringsCollector creates a StringsCollector.
func NewStringsCollector() *StringsCollector {
	return &StringsCollector{
		stringPattern: regexp.MustCompile(`"([^"]+)"`),
		filter:        NewHardcodedStringAnalyzer(),
	}
}

const (
	maxSampleLocations = 5
	maxHotFiles        = 20
	minPrefixGroup     = 3
)

// Collect scans all sources and assembles the strings report.
func (c *StringsCollector) Collect(ctx context.Context, root string, sources []*walker.Source) (*model.StringsReport, error) {
	report := model.NewStringsReport(root)

	occurrences := map[string][]model.StringLocation{}
	perFile := map[string]int{}

	for _, src := range sources {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for i, line := range src.Lines {
			if SkipStringLine(line) {
				continue
			}
			for _, m := range c.stringPattern.FindAllStringSubmatch(line, -1) {
				literal := m[1]
				if !c.filter.uiString(literal) {
					continue
				}
				occurrences[literal] = append(occurrences[literal], model.StringLocation{
					File: src.Path,
					Line: i + 1,
				})
				perFile[src.Path]++
				report.Summary.TotalOccurrences++
			}
		}
	}
	report.Summary.TotalUniqueStrings = len(occurrences)

	for literal, locs := range occurrences {
		if len(locs) < 2 {
			report.Summary.SingleUseStrings++
			continue
		}
		samples := locs
		if len(samples) > maxSampleLocations {
			samples = samples[:maxSampleLocations]
		}
		report.Duplicates[literal] = model.DuplicateString{
			Count:           len(locs),
			SampleLocations: samples,
		}
		report.Summary.DuplicateStrings++
	}

	report.InterpolationCandidates = c.groupByPrefix(occurrences)
	report.FilesWithMostStrings = topFiles(perFile, maxHotFiles)
	report.Suggestions = categorize(occurrences)

	return report, nil
}

// groupByPrefix clusters strings sharing a leading word. Large clusters
// usually collapse into a single interpolated template.
func (c *StringsCollector) groupByPrefix(occurrences map[string][]model.StringLocation) []model.InterpolationCandidate {
	byPrefix := map[string][]string{}
	for literal := range occurrences {
		fields := strings.Fields(literal)
		if len(fields) < 2 {
			continue
		}
		prefix := fields[0]
		byPrefix[prefix] = append(byPrefix[prefix], literal)
	}

	var candidates []model.InterpolationCandidate
	for prefix, group := range byPrefix {
		if len(group) < minPrefixGroup {
			continue
		}
		sort.Strings(group)
		candidates = append(candidates, model.InterpolationCandidate{
			Prefix:  prefix,
			Strings: group,
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i].Strings) != len(candidates[j].Strings) {
			return len(candidates[i].Strings) > len(candidates[j].Strings)
		}
		return candidates[i].Prefix < candidates[j].Prefix
	})
	return candidates
}

// topFiles keeps only the files with the highest literal counts.
func topFiles(perFile map[string]int, limit int) map[string]int {
	type entry struct {
		file  string
		count int
	}
	entries := make([]entry, 0, len(perFile))
	for file, n := range perFile {
		entries = append(entries, entry{file, n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].file < entries[j].file
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	top := make(map[string]int, len(entries))
	for _, e := range entries {
		top[e.file] = e.count
	}
	return top
}

var suggestionCategories = []struct {
	name    string
	keyword *regexp.Regexp
}{
	{"error messages", regexp.MustCompile(`(?i)\b(failed|error|unable|invalid)\b`)},
	{"button titles", regexp.MustCompile(`(?i)^(save|cancel|delete|done|add|edit|ok|retry)\b`)},
	{"status messages", regexp.MustCompile(`(?i)\b(loading|saving|syncing|success)\b`)},
	{"empty states", regexp.MustCompile(`(?i)^(no |nothing |empty)`)},
}

// categorize groups literals into AppStrings sections they belong in.
func categorize(occurrences map[string][]model.StringLocation) map[string][]string {
	groups := map[string][]string{}
	for literal := range occurrences {
		for _, cat := range suggestionCategories {
			if cat.keyword.MatchString(literal) {
				groups[cat.name] = append(groups[cat.name], literal)
				break
			}
		}
	}
	for name := range groups {
		sort.Strings(groups[name])
	}
	return groups
}
