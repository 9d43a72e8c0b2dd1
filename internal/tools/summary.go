package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/HendryAvila/trustlens/internal/assessment"
	"github.com/HendryAvila/trustlens/internal/bank"
	"github.com/HendryAvila/trustlens/internal/summary"
	"github.com/mark3labs/mcp-go/mcp"
)

// SummaryTool handles the trust_summary MCP tool.
type SummaryTool struct {
	store        Store
	minResponses func(summary.Module) int
}

// NewSummaryTool creates a SummaryTool. minResponses gives the adequacy
// threshold per assessment kind.
func NewSummaryTool(store Store, minResponses func(summary.Module) int) *SummaryTool {
	return &SummaryTool{store: store, minResponses: minResponses}
}

// Definition returns the MCP tool definition for trust_summary.
func (t *SummaryTool) Definition() mcp.Tool {
	return mcp.NewTool("trust_summary",
		mcp.WithDescription(
			"Compose the executive summary for a completed run: tier, headline, posture, primary drivers, "+
				"top priorities, and confidence and trend notes.",
		),
		mcp.WithString("subject_id",
			mcp.Required(),
			mcp.Description("Subject to summarise"),
		),
		mcp.WithString("run_id",
			mcp.Description("Completed run to summarise (default: latest completed run)"),
		),
		mcp.WithNumber("responses",
			mcp.Description("Number of survey responses behind this run. Pass it: the confidence status is judged on it, "+
				"and when omitted the count of completed runs stands in, which usually understates confidence"),
		),
		mcp.WithString("format",
			mcp.Description("Output format"),
			mcp.Enum("markdown", "json"),
			mcp.DefaultString("markdown"),
		),
	)
}

// Handle processes the trust_summary tool call.
func (t *SummaryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subjectID, errRes := requireString(req, "subject_id")
	if errRes != nil {
		return errRes, nil
	}

	sub, err := t.store.GetSubject(subjectID)
	if err != nil {
		return failure("summarise", err)
	}
	history, err := t.store.CompletedRuns(sub.ID)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	if len(history) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("Subject %s has no completed run yet.", sub.ID)), nil
	}

	run := history[len(history)-1]
	if runID := req.GetString("run_id", ""); runID != "" {
		found := false
		for _, r := range history {
			if r.ID == runID {
				run, found = r, true
				break
			}
		}
		if !found {
			return mcp.NewToolResultError(fmt.Sprintf("Run %s is not a completed run of subject %s.", runID, sub.ID)), nil
		}
	}

	responses := intArg(req, "responses", len(history))
	in, err := assessment.SummaryInput(*sub, run, history, responses, t.minResponses(sub.Kind))
	if err != nil {
		return failure("summarise", err)
	}
	out, err := summary.Build(in)
	if err != nil {
		return nil, fmt.Errorf("composing summary: %w", err)
	}

	if req.GetString("format", "markdown") == "json" {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling summary: %w", err)
		}
		return mcp.NewToolResultText(string(data)), nil
	}
	return mcp.NewToolResultText(formatSummary(sub, run, out)), nil
}

func formatSummary(sub *assessment.Subject, run assessment.Run, out summary.Output) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Executive summary: %s (v%d)\n\n", sub.Name, run.Version)
	fmt.Fprintf(&sb, "**%s**\n\n", out.Headline)
	fmt.Fprintf(&sb, "**Tier**: %s | **Score**: %d/100 | **Confidence**: %s\n\n", out.Tier, *run.OverallScore, out.Status)
	fmt.Fprintf(&sb, "%s\n\n", out.PostureText)

	sb.WriteString("## Primary drivers\n\n")
	for _, d := range out.PrimaryDrivers {
		fmt.Fprintf(&sb, "- **%s** (%.0f, %s): %s\n", d.Label, d.Score, d.Severity, d.Why)
	}

	sb.WriteString("\n## Priorities\n\n")
	for i, p := range out.Priorities {
		fmt.Fprintf(&sb, "%d. **%s** (%s, %.0f). %s\n", i+1, p.Title, p.Label, p.Score, p.Rationale)
		for _, q := range p.Probes {
			fmt.Fprintf(&sb, "   - %s\n", q)
		}
	}

	sb.WriteString("\n## Dimensions\n\n")
	for _, d := range bank.Dimensions {
		fmt.Fprintf(&sb, "- %s: %d (%s)\n", d.Label(), run.DimensionScores[d], out.Severities[d])
	}

	fmt.Fprintf(&sb, "\n_%s_\n", out.ConfidenceNote)
	if out.TrendNote != "" {
		fmt.Fprintf(&sb, "\n**Trend**: %s\n", out.TrendNote)
	}
	return sb.String()
}
