package domain

import "fmt"

// DiagnosticKind classifies a syntax problem.
type DiagnosticKind string

// Diagnostic kinds reported by the syntax validator.
const (
	DiagIncompleteOperator DiagnosticKind = "incomplete_operator"
	DiagInvalidFileType    DiagnosticKind = "invalid_file_type"
	DiagMalformedOperator  DiagnosticKind = "malformed_operator"
	DiagMissingTerms       DiagnosticKind = "missing_terms"
)

// Diagnostic is a user-facing syntax problem with a suggested fix.
type Diagnostic struct {
	Kind       DiagnosticKind `json:"type"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion"`
}

// ValidationStatus is the overall verdict on a query string.
// Blank input yields the empty status.
type ValidationStatus string

// Validation verdicts.
const (
	StatusNone    ValidationStatus = ""
	StatusValid   ValidationStatus = "valid"
	StatusInvalid ValidationStatus = "invalid"
)

// Validation is the validator's full answer.
type Validation struct {
	Status      ValidationStatus `json:"status"`
	Message     string           `json:"message"`
	Diagnostics []Diagnostic     `json:"errors"`
}

// ValidationMessage summarises n issues for display.
func ValidationMessage(n int) string {
	if n == 0 {
		return "Syntax is valid"
	}
	if n == 1 {
		return "1 syntax issue found"
	}
	return fmt.Sprintf("%d syntax issues found", n)
}

// ValidationChoice is the user's answer to the invalid-syntax prompt.
type ValidationChoice string

// Prompt answers. Close behaves like Fix.
const (
	ChoiceContinue ValidationChoice = "continue"
	ChoiceFix      ValidationChoice = "fix"
	ChoiceClose    ValidationChoice = "close"
)

// Proceeds reports whether the search should run anyway.
func (c ValidationChoice) Proceeds() bool {
	return c == ChoiceContinue
}
