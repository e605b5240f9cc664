// Package aggregate merges per-document clause outputs into one summary
// file per clause and deduplicates the result.
package aggregate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jonathanvkeller/lease-analysis/internal/observability"
)

// refusalPhrase marks outputs where the model declined to process the
// document; those files carry no clause content and are skipped.
const refusalPhrase = "I'm sorry, I can't assist with that."

// Folders under the output root that hold bookkeeping rather than clause
// outputs.
var skipFolders = map[string]bool{
	"processed": true,
	"summaries": true,
	"aggregate": true,
}

var (
	headerRe    = regexp.MustCompile(`(?m)^##\s+.*$`)
	chunkSizeRe = regexp.MustCompile(`(\d+)\s+tokens\s+with\s+a\s+(\d+)-token\s+overlap`)
	leadDashRe  = regexp.MustCompile(`^[-\s]+`)
	quoteRe     = regexp.MustCompile(`^"+|"+$`)
)

// Aggregator merges clause folders into per-clause aggregate files.
type Aggregator struct {
	log *observability.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(log *observability.Logger) *Aggregator {
	if log == nil {
		log = observability.Nop()
	}
	return &Aggregator{log: log}
}

// Root aggregates every clause folder under outputRoot into
// outputRoot/aggregate, skipping the bookkeeping folders. Returns the paths
// of the aggregate files written.
func (a *Aggregator) Root(outputRoot string) ([]string, error) {
	entries, err := os.ReadDir(outputRoot)
	if err != nil {
		return nil, fmt.Errorf("list output folder: %w", err)
	}

	aggregateDir := filepath.Join(outputRoot, "aggregate")

	var written []string
	for _, entry := range entries {
		if !entry.IsDir() || skipFolders[strings.ToLower(entry.Name())] {
			continue
		}

		folder := filepath.Join(outputRoot, entry.Name())
		a.log.Info().Str("folder", folder).Msg("aggregating clause folder")

		path, err := a.ClauseFolder(folder, aggregateDir)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

// ClauseFolder merges the markdown files of one clause folder into a single
// aggregate file named after the folder. Section content is lowercased,
// sorted, and rendered as bullets; "## chunk size" sections are averaged
// instead of listed.
func (a *Aggregator) ClauseFolder(clauseFolder, aggregateDir string) (string, error) {
	sections, err := a.collectSections(clauseFolder)
	if err != nil {
		return "", err
	}

	content := renderSections(sections)

	if err := os.MkdirAll(aggregateDir, 0o755); err != nil {
		return "", fmt.Errorf("create aggregate folder: %w", err)
	}

	outPath := filepath.Join(aggregateDir, filepath.Base(clauseFolder)+".md")
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write aggregate file %s: %w", outPath, err)
	}

	a.log.Info().Str("path", outPath).Msg("aggregate file created")
	return outPath, nil
}

// collectSections reads every markdown file in a clause folder and groups
// section bodies under their headers.
func (a *Aggregator) collectSections(clauseFolder string) (map[string][]string, error) {
	entries, err := os.ReadDir(clauseFolder)
	if err != nil {
		return nil, fmt.Errorf("list clause folder: %w", err)
	}

	sections := make(map[string][]string)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		path := filepath.Join(clauseFolder, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			a.log.Error().Err(err).Str("path", path).Msg("failed to read clause file")
			continue
		}

		content := string(data)
		if strings.Contains(content, refusalPhrase) {
			continue
		}

		for header, bodies := range splitSections(content) {
			upper := strings.ToUpper(header)
			if upper == "## STATUS" || upper == "## ASSESSMENT" {
				continue
			}
			if _, ok := sections[header]; !ok {
				sections[header] = nil
			}
			sections[header] = append(sections[header], bodies...)
		}
	}

	return sections, nil
}

// splitSections splits markdown content into "## " header → body fragments.
// Content before the first header is dropped.
func splitSections(content string) map[string][]string {
	sections := make(map[string][]string)

	headers := headerRe.FindAllStringIndex(content, -1)
	for i, loc := range headers {
		header := strings.TrimSpace(content[loc[0]:loc[1]])

		end := len(content)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}

		if _, ok := sections[header]; !ok {
			sections[header] = nil
		}

		body := strings.TrimSpace(content[loc[1]:end])
		if body != "" {
			sections[header] = append(sections[header], body)
		}
	}

	return sections
}

// renderSections builds the lowercase, sorted aggregate markdown.
func renderSections(sections map[string][]string) string {
	headers := make([]string, 0, len(sections))
	for header := range sections {
		headers = append(headers, header)
	}
	sort.Slice(headers, func(i, j int) bool {
		return sectionSortKey(headers[i]) < sectionSortKey(headers[j])
	})

	var lines []string
	for _, header := range headers {
		lines = append(lines, strings.ToLower(header), "")

		if strings.EqualFold(header, "## chunk size") {
			if avg := averageChunkSize(sections[header]); avg != "" {
				lines = append(lines, avg)
			}
		} else {
			items := append([]string(nil), sections[header]...)
			sort.Slice(items, func(i, j int) bool {
				return strings.ToLower(items[i]) < strings.ToLower(items[j])
			})

			for _, item := range items {
				sanitized := sanitizeItem(item)
				if sanitized == "" || strings.Contains(sanitized, "n/a") {
					continue
				}
				lines = append(lines, "- "+sanitized)
			}
		}

		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// averageChunkSize collapses chunk-size recommendations into one averaged
// line, or returns "" when no item matches the expected shape.
func averageChunkSize(items []string) string {
	var totalTokens, totalOverlap, count int

	for _, item := range items {
		m := chunkSizeRe.FindStringSubmatch(item)
		if m == nil {
			continue
		}
		totalTokens += atoi(m[1])
		totalOverlap += atoi(m[2])
		count++
	}

	if count == 0 {
		return ""
	}

	return fmt.Sprintf("recommend a chunk size of %d tokens with a %d-token overlap",
		totalTokens/count, totalOverlap/count)
}

// sanitizeItem lowercases a section fragment and strips list markers and
// surrounding quotes.
func sanitizeItem(item string) string {
	s := strings.TrimSpace(strings.ToLower(item))
	s = leadDashRe.ReplaceAllString(s, "")
	s = quoteRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// sectionSortKey sorts headers by their title, ignoring the "## " prefix.
func sectionSortKey(header string) string {
	if strings.HasPrefix(header, "## ") {
		return strings.ToLower(strings.TrimSpace(header[3:]))
	}
	return strings.ToLower(header)
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
