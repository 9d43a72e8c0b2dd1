package tools

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/HendryAvila/trustlens/internal/assessment"
	"github.com/HendryAvila/trustlens/internal/bank"
	"github.com/HendryAvila/trustlens/internal/lifecycle"
	"github.com/HendryAvila/trustlens/internal/recommend"
	"github.com/HendryAvila/trustlens/internal/trend"
)

// formatRun renders a completed run as a markdown report.
func formatRun(sub *assessment.Subject, run *assessment.Run) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s: %s assessment\n\n", sub.Name, humanize.Ordinal(run.Version))
	fmt.Fprintf(&sb, "**Run**: `%s` | **Bank**: %s | **Status**: %s\n\n", run.ID, run.BankVersion, run.Status)

	if run.OverallScore == nil {
		sb.WriteString("Not scored yet.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "## Overall score: %d/100\n\n", *run.OverallScore)

	sb.WriteString("| Dimension | Score | Drift |\n")
	sb.WriteString("|-----------|-------|-------|\n")
	for _, d := range bank.Dimensions {
		drift := "-"
		if dd, ok := run.DimensionDrift[d]; ok {
			drift = formatDrift(dd)
		}
		fmt.Fprintf(&sb, "| %s | %d | %s |\n", d.Label(), run.DimensionScores[d], drift)
	}
	sb.WriteString("\n")

	if run.DriftFromPrevious != nil && run.DriftFromPrevious.Direction != trend.DirectionNone {
		fmt.Fprintf(&sb, "**Change since previous run**: %s\n\n", formatDrift(*run.DriftFromPrevious))
	}

	fmt.Fprintf(&sb, "**Stability**: %s", run.Stability)
	if run.VarianceLast3 != nil {
		fmt.Fprintf(&sb, " (variance %.2f)", *run.VarianceLast3)
	}
	sb.WriteString("\n\n")

	sb.WriteString("## Risk flags\n\n")
	if len(run.RiskFlags) == 0 {
		sb.WriteString("None.\n\n")
	}
	for _, f := range run.RiskFlags {
		fmt.Fprintf(&sb, "- **%s** (%s, %s): %s\n", f.Label, f.Code, f.Source, f.Description)
	}
	if len(run.RiskFlags) > 0 {
		sb.WriteString("\n")
	}

	high, med := recommend.Count(run.Recommendations)
	fmt.Fprintf(&sb, "## Recommendations (%d high, %d med)\n\n", high, med)
	for _, r := range run.Recommendations {
		fmt.Fprintf(&sb, "- [%s] %s %s: %s\n", r.Priority, r.QuestionID, r.Control, r.Recommendation)
	}
	return sb.String()
}

func formatDrift(d trend.DriftResult) string {
	if d.Direction == trend.DirectionNone {
		return "no change"
	}
	s := fmt.Sprintf("%+.0f", d.Delta)
	if d.Severity != trend.SeverityNone {
		s += fmt.Sprintf(" (%s %s)", d.Severity, d.Direction)
	}
	return s
}

// formatDue phrases a subject's reassessment due date. It reads the same
// clock as the lifecycle expiry check, so the wording always agrees with
// the effective state.
func formatDue(sub assessment.Subject, runs []assessment.Run) string {
	last := assessment.LastCompletedAt(runs)
	due, ok := lifecycle.DueDate(last, sub.ReassessmentFrequencyDays)
	if !ok {
		if sub.ReassessmentFrequencyDays == nil || *sub.ReassessmentFrequencyDays <= 0 {
			return "no reassessment cadence"
		}
		return "due after first completion"
	}
	date := due.Format("2006-01-02")
	days, _ := lifecycle.DaysUntilDue(last, sub.ReassessmentFrequencyDays)

	switch {
	case lifecycle.IsExpired(last, sub.ReassessmentFrequencyDays):
		if days < 0 {
			return fmt.Sprintf("overdue by %s, was due %s", dayCount(-days), date)
		}
		return fmt.Sprintf("overdue, was due %s", date)
	case days == 0:
		return fmt.Sprintf("due today (%s)", date)
	default:
		return fmt.Sprintf("due in %s (%s)", dayCount(days), date)
	}
}

func dayCount(n int) string {
	if n == 1 {
		return "1 day"
	}
	return humanize.Comma(int64(n)) + " days"
}
