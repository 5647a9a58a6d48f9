package services

import (
	"regexp"
	"strings"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// advancedTokenPattern matches operator and ::TYPE tokens of an advanced query.
var advancedTokenPattern = regexp.MustCompile(`::&&|::\|\||::!|::[a-zA-Z0-9]+`)

// leadingWordPattern matches a type name written directly after ::!.
var leadingWordPattern = regexp.MustCompile(`^[a-zA-Z0-9]+`)

// ParseQuery turns a raw search string into its Query variant.
// Image mode wins over everything else, then advanced syntax is detected,
// and anything left is a simple query with at most one filter.
func ParseQuery(raw string) domain.Query {
	if strings.Contains(raw, domain.TokenImage) {
		return domain.Query{
			Kind: domain.QueryKindImage,
			Raw:  raw,
			Text: strings.TrimSpace(strings.Replace(raw, domain.TokenImage, "", 1)),
		}
	}

	if IsAdvancedQuery(raw) {
		return parseAdvanced(raw)
	}

	parts := strings.Split(raw, domain.Separator)
	q := domain.Query{
		Kind: domain.QueryKindSimple,
		Raw:  raw,
		Text: strings.TrimSpace(parts[0]),
	}
	if len(parts) > 1 {
		token := strings.ToLower(strings.TrimSpace(parts[1]))
		if token != "" {
			if _, ok := domain.SourceForToken(token); ok {
				q.SourceFilter = token
			} else {
				q.FileFilter = strings.TrimPrefix(token, ".")
			}
		}
	}
	return q
}

// IsAdvancedQuery reports whether raw uses operators or more than one ::TOKEN.
func IsAdvancedQuery(raw string) bool {
	if strings.Contains(raw, domain.TokenAnd) ||
		strings.Contains(raw, domain.TokenOr) ||
		strings.Contains(raw, domain.TokenNot) {
		return true
	}
	return len(strings.Split(raw, domain.Separator)) > 2
}

// queryPiece is either a matched token or the free text between tokens.
type queryPiece struct {
	text    string
	isToken bool
}

// splitAdvanced splits raw into alternating text and token pieces,
// keeping the tokens.
func splitAdvanced(raw string) []queryPiece {
	var pieces []queryPiece
	last := 0
	for _, loc := range advancedTokenPattern.FindAllStringIndex(raw, -1) {
		if loc[0] > last {
			pieces = append(pieces, queryPiece{text: raw[last:loc[0]]})
		}
		pieces = append(pieces, queryPiece{text: raw[loc[0]:loc[1]], isToken: true})
		last = loc[1]
	}
	if last < len(raw) {
		pieces = append(pieces, queryPiece{text: raw[last:]})
	}
	return pieces
}

func parseAdvanced(raw string) domain.Query {
	var (
		segments []domain.Segment
		current  domain.Segment
		terms    []string
		afterNot bool
	)

	flush := func() {
		current.Terms = strings.Join(terms, " ")
		if !current.IsEmpty() {
			segments = append(segments, current)
		}
	}

	for _, piece := range splitAdvanced(raw) {
		if piece.isToken {
			op := domain.OperatorForToken(piece.text)
			if op != domain.OperatorNone {
				flush()
				current = domain.Segment{Operator: op}
				terms = nil
				afterNot = op == domain.OperatorNot
				continue
			}
			afterNot = false
			typ := strings.ToLower(strings.TrimPrefix(piece.text, domain.Separator))
			if !current.HasType(typ) {
				current.Types = append(current.Types, typ)
			}
			continue
		}

		text := piece.text
		if afterNot {
			// term::!vault excludes the vault type rather than searching for "vault".
			if word := leadingWordPattern.FindString(text); word != "" {
				typ := strings.ToLower(word)
				if !current.HasType(typ) {
					current.Types = append(current.Types, typ)
				}
				text = text[len(word):]
			}
			afterNot = false
		}
		if t := strings.TrimSpace(text); t != "" {
			terms = append(terms, t)
		}
	}
	flush()

	return domain.Query{
		Kind:     domain.QueryKindAdvanced,
		Raw:      raw,
		Segments: foldTermSegments(segments),
	}
}

// foldTermSegments merges segments that carry only terms into the segment
// that follows them, so "foo::&&bar::pdf" searches "foo bar" within PDFs.
// Terms never fold into a NOT segment, and the operator first seen wins.
func foldTermSegments(segments []domain.Segment) []domain.Segment {
	out := make([]domain.Segment, 0, len(segments))
	var carry []string
	carryOp := domain.OperatorNone
	carrying := false

	for i, seg := range segments {
		last := i == len(segments)-1

		if seg.Operator == domain.OperatorNot {
			if carrying {
				out = append(out, domain.Segment{Terms: strings.Join(carry, " "), Operator: carryOp})
				carry, carrying = nil, false
			}
			out = append(out, seg)
			continue
		}

		if len(seg.Types) == 0 && !last {
			if !carrying {
				carryOp = seg.Operator
				carrying = true
			}
			if seg.Terms != "" {
				carry = append(carry, seg.Terms)
			}
			continue
		}

		if carrying {
			if seg.Terms != "" {
				carry = append(carry, seg.Terms)
			}
			seg.Terms = strings.Join(carry, " ")
			if carryOp != domain.OperatorNone || seg.Operator == domain.OperatorNone {
				seg.Operator = carryOp
			}
			carry, carrying = nil, false
		}
		out = append(out, seg)
	}
	return out
}
