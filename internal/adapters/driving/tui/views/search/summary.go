package search

import (
	"fmt"
	"strings"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/components/status"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

const cursorGlyph = "▌"

// setSummary replaces the summary pane contents and keeps the status bar
// in step with the summary phase.
func (v *View) setSummary(view domain.SummaryView) {
	v.summaryView = view
	v.summary.SetContent(v.summaryText())
	if view.Phase == domain.SummaryStreaming {
		v.summary.GotoBottom()
	}

	switch view.Phase {
	case domain.SummaryLoading, domain.SummaryStreaming:
		if v.page != nil {
			v.statusbar.SetState(status.StateSummarising)
		}
	default:
		if v.statusbar.State() == status.StateSummarising {
			v.statusbar.SetState(status.StateResults)
		}
		if view.Phase == domain.SummaryHidden && v.focus == FocusSummary {
			v.focus = FocusResults
		}
	}
}

func (v *View) summaryText() string {
	sv := v.summaryView
	switch sv.Phase {
	case domain.SummaryHidden:
		return ""
	case domain.SummaryLoading:
		return v.styles.Muted.Render("Generating summary...")
	case domain.SummaryFailed:
		msg := sv.Error
		if msg == "" {
			msg = "Could not generate a summary."
		}
		return v.styles.Error.Render(msg)
	}

	var b strings.Builder
	b.WriteString(sv.Markdown)
	if sv.Cursor {
		b.WriteString(cursorGlyph)
	}

	if len(sv.TopSources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Subtitle.Render("Sources"))
		for _, src := range sv.TopSources {
			fmt.Fprintf(&b, "\n  [%d] %s %s", src.ID, src.Title,
				v.styles.Muted.Render(fmt.Sprintf("(%s, cited %d×)", src.FileType, src.Count)))
		}
	}

	if meta := summaryMeta(sv); meta != "" {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render(meta))
	}
	return b.String()
}

func summaryMeta(sv domain.SummaryView) string {
	var meta []string
	if sv.Summary != nil {
		if sv.Summary.ModelUsed != "" {
			meta = append(meta, sv.Summary.ModelUsed)
		}
		if sv.Summary.GenerationTime > 0 {
			meta = append(meta, fmt.Sprintf("%.1fs", sv.Summary.GenerationTime))
		}
		if sv.Summary.Confidence != "" {
			meta = append(meta, "confidence "+string(sv.Summary.Confidence))
		}
	}
	if sv.FromCache {
		meta = append(meta, "cached")
	}
	return strings.Join(meta, " • ")
}

func (v *View) renderSummary() string {
	title := "AI Summary"
	if v.focus == FocusSummary {
		title += "  " + v.styles.Muted.Render("[↑/↓] scroll  [r] refresh  [tab] back")
	}
	box := v.styles.Summary
	if v.focus == FocusSummary {
		box = box.BorderForeground(v.styles.Theme().Accent)
	}
	return box.Render(v.styles.Subtitle.Render(title) + "\n" + v.summary.View())
}
