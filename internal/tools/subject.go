package tools

import (
	"context"
	"fmt"

	"github.com/HendryAvila/trustlens/internal/summary"
	"github.com/mark3labs/mcp-go/mcp"
)

// SubjectCreateTool handles the trust_subject_create MCP tool.
type SubjectCreateTool struct {
	store Store
}

// NewSubjectCreateTool creates a SubjectCreateTool with the given store.
func NewSubjectCreateTool(store Store) *SubjectCreateTool {
	return &SubjectCreateTool{store: store}
}

// Definition returns the MCP tool definition for trust_subject_create.
func (t *SubjectCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("trust_subject_create",
		mcp.WithDescription(
			"Register an organisation or AI system to assess. Returns the subject id used by every other trust_* tool.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Display name (e.g. 'Acme Corp', 'Credit scoring model v3')"),
		),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("What is being assessed"),
			mcp.Enum(string(summary.ModuleOrganisation), string(summary.ModuleSystem)),
		),
		mcp.WithNumber("reassessment_frequency_days",
			mcp.Description("Days after a completed run before the subject expires. Omit for no expiry."),
		),
	)
}

// Handle processes the trust_subject_create tool call.
func (t *SubjectCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, errRes := requireString(req, "name")
	if errRes != nil {
		return errRes, nil
	}
	kind := summary.Module(req.GetString("kind", ""))
	if !kind.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("invalid kind %q: must be organisation or system", kind)), nil
	}
	freq := optionalIntArg(req, "reassessment_frequency_days")

	sub, err := t.store.CreateSubject(name, kind, freq)
	if err != nil {
		return nil, fmt.Errorf("creating subject: %w", err)
	}

	response := fmt.Sprintf("Subject created: %q (%s)\nID: %s\nState: %s", sub.Name, sub.Kind, sub.ID, sub.State)
	if sub.ReassessmentFrequencyDays != nil {
		response += fmt.Sprintf("\nReassess every %d days", *sub.ReassessmentFrequencyDays)
	}
	response += "\n\nNext: start the first run with `trust_run_start`."
	return mcp.NewToolResultText(response), nil
}
