package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// Section headings of a structured summary, in display order.
const (
	headingOverview    = "## Overview\n\n"
	headingAnalysis    = "## Detailed Analysis\n\n"
	headingFindings    = "## Key Findings\n\n"
	headingConnections = "## Context & Connections\n\n"
	headingDetails     = "## Specific Details\n\n"
)

// summaryField maps a JSON key the model emits onto the heading that
// replaces it in partially streamed text.
type summaryField struct {
	pattern *regexp.Regexp
	heading string
}

var summaryFields = []summaryField{
	{regexp.MustCompile(`"overview"\s*:\s*`), headingOverview},
	{regexp.MustCompile(`"detailed_analysis"\s*:\s*`), headingAnalysis},
	{regexp.MustCompile(`"key_findings"\s*:\s*`), headingFindings},
	{regexp.MustCompile(`"context_connections"\s*:\s*`), headingConnections},
	{regexp.MustCompile(`"specific_details"\s*:\s*`), headingDetails},
	{regexp.MustCompile(`"confidence"\s*:\s*`), ""},
	{regexp.MustCompile(`"summary"\s*:\s*`), ""},
}

var (
	streamFenceOpen    = regexp.MustCompile(`(?i)^\s*` + "```" + `json\s*`)
	streamFenceClose   = regexp.MustCompile("```" + `\s*$`)
	finalFenceOpen     = regexp.MustCompile(`(?i)^` + "```" + `json\s*`)
	openBrace          = regexp.MustCompile(`^\s*\{\s*`)
	closeBrace         = regexp.MustCompile(`\s*\}\s*$`)
	openBracket        = regexp.MustCompile(`\[\s*`)
	closeBracket       = regexp.MustCompile(`\s*\]`)
	trailingComma      = regexp.MustCompile(`(?m),\s*$`)
	leadingComma       = regexp.MustCompile(`(?m)^\s*,\s*`)
	quotedLine         = regexp.MustCompile(`(?m)^"([\s\S]*?)"\s*$`)
	quotedAfterHeading = regexp.MustCompile(`## [^\n]+\n\n"`)
	orphanOpenQuote    = regexp.MustCompile(`(?m)^"`)
	orphanCloseQuote   = regexp.MustCompile(`(?m)"\s*$`)
	quotedItem         = regexp.MustCompile(`(?m)^\s*"([^"]+)"\s*$`)
	blankRun           = regexp.MustCompile(`\n{4,}`)
)

// jsonUnescape undoes the escapes of a JSON string body in the same
// order as a sequence of global replacements would.
func jsonUnescape(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	s = strings.ReplaceAll(s, `\t`, "\t")
	return s
}

// CleanStreamingText turns a partially received JSON summary into readable
// markdown. Complete JSON is rendered section by section; anything else is
// reshaped heuristically. It returns text unchanged when cleaning leaves
// nothing.
func CleanStreamingText(text string) string {
	cleaned := streamFenceOpen.ReplaceAllString(text, "")
	cleaned = streamFenceClose.ReplaceAllString(cleaned, "")

	if parsed, ok := parseSummaryObject(cleaned); ok {
		if md := markdownFromParsed(parsed); md != "" {
			return md
		}
	}

	cleaned = openBrace.ReplaceAllString(cleaned, "")
	cleaned = closeBrace.ReplaceAllString(cleaned, "")

	for _, f := range summaryFields {
		cleaned = f.pattern.ReplaceAllLiteralString(cleaned, "\n\n"+f.heading)
	}

	cleaned = openBracket.ReplaceAllString(cleaned, "")
	cleaned = closeBracket.ReplaceAllString(cleaned, "")
	cleaned = trailingComma.ReplaceAllString(cleaned, "")
	cleaned = leadingComma.ReplaceAllString(cleaned, "")

	cleaned = jsonUnescape(cleaned)

	cleaned = quotedLine.ReplaceAllString(cleaned, "$1")
	cleaned = unquoteAfterHeadings(cleaned)
	cleaned = orphanOpenQuote.ReplaceAllString(cleaned, "")
	cleaned = orphanCloseQuote.ReplaceAllString(cleaned, "")
	cleaned = quotedItem.ReplaceAllString(cleaned, "- $1")

	cleaned = blankRun.ReplaceAllString(cleaned, "\n\n\n")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return text
	}
	return cleaned
}

// unquoteAfterHeadings drops the quotes around a value that directly
// follows a heading. The closing quote is the first one that ends a line
// or precedes the next heading; trailing spaces up to the last line end
// are consumed with it.
func unquoteAfterHeadings(s string) string {
	var b strings.Builder
	pos := 0
	for pos < len(s) {
		loc := quotedAheadIndex(s, pos)
		if loc == nil {
			break
		}
		headEnd := loc[1] - 1 // index of the opening quote
		bodyStart := loc[1]

		closeAt, consumedTo := closingQuote(s, bodyStart)
		if closeAt < 0 {
			b.WriteString(s[pos : loc[0]+1])
			pos = loc[0] + 1
			continue
		}

		b.WriteString(s[pos:headEnd])
		b.WriteString(s[bodyStart:closeAt])
		pos = consumedTo
	}
	b.WriteString(s[pos:])
	return b.String()
}

func quotedAheadIndex(s string, from int) []int {
	loc := quotedAfterHeading.FindStringIndex(s[from:])
	if loc == nil {
		return nil
	}
	return []int{loc[0] + from, loc[1] + from}
}

// closingQuote finds the first quote at or after start that either ends a
// line (allowing trailing whitespace) or is followed by a blank line and a
// heading. It returns the quote index and the end of the consumed text.
func closingQuote(s string, start int) (int, int) {
	for i := start; i < len(s); i++ {
		if s[i] != '"' {
			continue
		}

		j := i + 1
		lastBreak := -1
		for j < len(s) && isSpace(s[j]) {
			if s[j] == '\n' {
				lastBreak = j
			}
			j++
		}
		switch {
		case j == len(s):
			return i, len(s)
		case lastBreak >= 0:
			return i, lastBreak
		case strings.HasPrefix(s[i+1:], "\n\n##"):
			return i, i + 1
		}
	}
	return -1, -1
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// parseSummaryObject parses text as a JSON object.
func parseSummaryObject(text string) (map[string]any, bool) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil || parsed == nil {
		return nil, false
	}
	return parsed, true
}

// markdownFromParsed renders the sections present in a parsed summary.
// Without sections it falls back to the free-form summary, then to "".
func markdownFromParsed(parsed map[string]any) string {
	md := SectionsMarkdown(
		textField(parsed, "overview"),
		textField(parsed, "detailed_analysis"),
		listField(parsed, "key_findings"),
		textField(parsed, "context_connections"),
		listField(parsed, "specific_details"),
	)
	if md != "" {
		return md
	}
	return textField(parsed, "summary")
}

// BuildComprehensiveSummary renders a structured summary as markdown.
func BuildComprehensiveSummary(s domain.Summary) string {
	return SectionsMarkdown(s.Overview, s.DetailedAnalysis, s.KeyFindings, s.ContextConnections, s.SpecificDetails)
}

// SectionsMarkdown joins the non-empty summary sections with blank lines.
func SectionsMarkdown(overview, analysis string, findings []string, connections string, details []string) string {
	var sections []string
	if overview != "" {
		sections = append(sections, headingOverview+overview)
	}
	if analysis != "" {
		sections = append(sections, headingAnalysis+analysis)
	}
	if len(findings) > 0 {
		sections = append(sections, headingFindings+bullets(findings))
	}
	if connections != "" {
		sections = append(sections, headingConnections+connections)
	}
	if len(details) > 0 {
		sections = append(sections, headingDetails+bullets(details))
	}
	return strings.Join(sections, "\n\n")
}

func bullets(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

// textField reads a scalar as text. Missing, null, false and empty values
// read as "".
func textField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
		return "true"
	case float64:
		if v == 0 {
			return ""
		}
		return fmt.Sprint(v)
	default:
		return stringify(v)
	}
}

// listField reads an array of items as text. A lone string becomes a
// single item.
func listField(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringify(item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case float64, bool:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// citationsField decodes backend-supplied citations, skipping malformed ones.
func citationsField(m map[string]any) []domain.Citation {
	raw, ok := m["citations"].([]any)
	if !ok {
		return nil
	}
	var out []domain.Citation
	for _, item := range raw {
		b, err := json.Marshal(item)
		if err != nil {
			continue
		}
		var c domain.Citation
		if err := json.Unmarshal(b, &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SummaryFromStream assembles the final display model from the complete
// streamed text. Fenced JSON becomes a structured summary; anything else is
// cleaned into a free-form one.
func SummaryFromStream(accumulated, query string, sourcesUsed int, timestampMs int64) domain.Summary {
	trimmed := strings.TrimSpace(accumulated)
	trimmed = finalFenceOpen.ReplaceAllString(trimmed, "")
	trimmed = streamFenceClose.ReplaceAllString(trimmed, "")
	trimmed = strings.TrimSpace(trimmed)

	parsed, ok := parseSummaryObject(trimmed)
	if !ok {
		return domain.Summary{
			Success:     true,
			Summary:     CleanStreamingText(accumulated),
			Query:       query,
			SourcesUsed: sourcesUsed,
			Timestamp:   timestampMs,
		}
	}

	findings := listField(parsed, "key_findings")
	keyPoints := findings
	if len(keyPoints) == 0 {
		keyPoints = listField(parsed, "key_points")
	}

	return domain.Summary{
		Success:            true,
		Summary:            textField(parsed, "summary"),
		Overview:           textField(parsed, "overview"),
		DetailedAnalysis:   textField(parsed, "detailed_analysis"),
		KeyFindings:        findings,
		ContextConnections: textField(parsed, "context_connections"),
		SpecificDetails:    listField(parsed, "specific_details"),
		KeyPoints:          keyPoints,
		Confidence:         domain.Confidence(textField(parsed, "confidence")).Normalize(),
		Citations:          citationsField(parsed),
		Query:              query,
		SourcesUsed:        sourcesUsed,
		Timestamp:          timestampMs,
	}
}
