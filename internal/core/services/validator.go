package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

var (
	operatorPattern         = regexp.MustCompile(`::&&|::\|\||::!`)
	trailingOperatorPattern = regexp.MustCompile(`(::&&|::\|\||::!)$`)
	typeTokenPattern        = regexp.MustCompile(`::([a-zA-Z0-9]+)`)
	excludedTypePattern     = regexp.MustCompile(`::!([a-zA-Z0-9]+)`)
)

// malformedSequences are operators immediately followed by another separator.
var malformedSequences = []string{"::&&::", "::||::", "::!::"}

// suggestedTypeCount is how many allowed tokens an unknown-type hint lists.
const suggestedTypeCount = 5

// ValidateQuery checks the syntax of a raw query string.
// Blank input yields the empty status with no diagnostics.
func ValidateQuery(query string) domain.Validation {
	if strings.TrimSpace(query) == "" {
		return domain.Validation{Status: domain.StatusNone}
	}

	var diags []domain.Diagnostic

	if m := trailingOperatorPattern.FindStringSubmatch(query); m != nil {
		op := m[1]
		diags = append(diags, domain.Diagnostic{
			Kind:       domain.DiagIncompleteOperator,
			Message:    fmt.Sprintf("Expected search terms after %q", op),
			Suggestion: "Add search terms after " + op,
		})
	}

	diags = append(diags, unknownTypes(query)...)

	for _, seq := range malformedSequences {
		if strings.Contains(query, seq) {
			diags = append(diags, domain.Diagnostic{
				Kind:       domain.DiagMalformedOperator,
				Message:    "Malformed operator syntax",
				Suggestion: "Remove extra :: between operators",
			})
			break
		}
	}

	diags = append(diags, missingTerms(query)...)

	if len(diags) == 0 {
		return domain.Validation{
			Status:  domain.StatusValid,
			Message: domain.ValidationMessage(0),
		}
	}
	return domain.Validation{
		Status:      domain.StatusInvalid,
		Message:     domain.ValidationMessage(len(diags)),
		Diagnostics: diags,
	}
}

func unknownTypes(query string) []domain.Diagnostic {
	allowed := domain.AllowedTypeTokens()
	suggestion := "Try: " + strings.Join(allowed[:suggestedTypeCount], ", ") + "..."

	var tokens []string
	for _, m := range typeTokenPattern.FindAllStringSubmatch(query, -1) {
		tokens = append(tokens, m[1])
	}
	for _, m := range excludedTypePattern.FindAllStringSubmatch(query, -1) {
		tokens = append(tokens, m[1])
	}

	var diags []domain.Diagnostic
	for _, token := range tokens {
		lower := strings.ToLower(token)
		if lower == "image" || contains(allowed, lower) {
			continue
		}
		diags = append(diags, domain.Diagnostic{
			Kind:       domain.DiagInvalidFileType,
			Message:    fmt.Sprintf("Unknown file type: %q", token),
			Suggestion: suggestion,
		})
	}
	return diags
}

// missingTerms reports operators with nothing but whitespace on either side.
func missingTerms(query string) []domain.Diagnostic {
	locs := operatorPattern.FindAllStringIndex(query, -1)

	var diags []domain.Diagnostic
	for i, loc := range locs {
		prevStart := 0
		if i > 0 {
			prevStart = locs[i-1][1]
		}
		nextEnd := len(query)
		if i+1 < len(locs) {
			nextEnd = locs[i+1][0]
		}

		if strings.TrimSpace(query[prevStart:loc[0]]) == "" {
			diags = append(diags, domain.Diagnostic{
				Kind:       domain.DiagMissingTerms,
				Message:    "Missing search terms before operator",
				Suggestion: "Add search terms before the operator",
			})
		}
		if strings.TrimSpace(query[loc[1]:nextEnd]) == "" {
			diags = append(diags, domain.Diagnostic{
				Kind:       domain.DiagMissingTerms,
				Message:    "Missing search terms after operator",
				Suggestion: "Add search terms after the operator",
			})
		}
	}
	return diags
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
