package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/HendryAvila/trustlens/internal/assessment"
	"github.com/HendryAvila/trustlens/internal/lifecycle"
	"github.com/mark3labs/mcp-go/mcp"
)

// StatusTool handles the trust_status MCP tool.
// Without a subject it lists every subject; with one it shows its runs.
type StatusTool struct {
	store Store
}

// NewStatusTool creates a StatusTool with the given store.
func NewStatusTool(store Store) *StatusTool {
	return &StatusTool{store: store}
}

// Definition returns the MCP tool definition for trust_status.
func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("trust_status",
		mcp.WithDescription(
			"Show assessment status. Without subject_id, lists every subject with its lifecycle state and "+
				"reassessment due date. With subject_id, shows that subject's runs and what can happen next.",
		),
		mcp.WithString("subject_id",
			mcp.Description("Subject to inspect. If omitted, lists all subjects."),
		),
	)
}

// Handle processes the trust_status tool call.
func (t *StatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if id := req.GetString("subject_id", ""); id != "" {
		return t.subject(id)
	}

	subs, err := t.store.ListSubjects()
	if err != nil {
		return nil, fmt.Errorf("listing subjects: %w", err)
	}
	if len(subs) == 0 {
		return mcp.NewToolResultText("No subjects yet. Create one with `trust_subject_create`."), nil
	}

	var sb strings.Builder
	sb.WriteString("| Subject | Kind | State | Runs | Reassessment |\n")
	sb.WriteString("|---------|------|-------|------|--------------|\n")
	for _, sub := range subs {
		runs, err := t.store.Runs(sub.ID)
		if err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		fmt.Fprintf(&sb, "| %s (`%s`) | %s | %s | %d | %s |\n",
			sub.Name, sub.ID, sub.Kind, assessment.EffectiveState(sub, runs), len(runs), formatDue(sub, runs))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (t *StatusTool) subject(id string) (*mcp.CallToolResult, error) {
	sub, err := t.store.GetSubject(id)
	if err != nil {
		return failure("show status", err)
	}
	runs, err := t.store.Runs(sub.ID)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	state := assessment.EffectiveState(*sub, runs)
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s (%s)\n\n", sub.Name, sub.Kind)
	fmt.Fprintf(&sb, "**State**: %s", state)
	if state != sub.State {
		fmt.Fprintf(&sb, " (stored as %s)", sub.State)
	}
	fmt.Fprintf(&sb, "\n**Created**: %s\n**Reassessment**: %s\n\n", humanize.Time(sub.CreatedAt), formatDue(*sub, runs))

	if len(runs) > 0 {
		sb.WriteString("| Version | Status | Score | Stability | Completed |\n")
		sb.WriteString("|---------|--------|-------|-----------|-----------|\n")
		for _, r := range runs {
			score, completed := "-", "-"
			if r.OverallScore != nil {
				score = fmt.Sprintf("%d", *r.OverallScore)
			}
			if r.CompletedAt != nil {
				completed = humanize.Time(*r.CompletedAt)
			}
			stability := string(r.Stability)
			if stability == "" {
				stability = "-"
			}
			fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s |\n", r.Version, r.Status, score, stability, completed)
		}
		sb.WriteString("\n")
	}

	next := lifecycle.Next(state)
	names := make([]string, len(next))
	for i, s := range next {
		names[i] = string(s)
	}
	fmt.Fprintf(&sb, "**Next states**: %s\n", strings.Join(names, ", "))
	switch state {
	case lifecycle.NotStarted, lifecycle.Completed, lifecycle.Stable, lifecycle.Expired:
		sb.WriteString("Start a run with `trust_run_start`.\n")
	case lifecycle.InProgress:
		sb.WriteString("Finish answering with `trust_answer`, then `trust_submit`.\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}
