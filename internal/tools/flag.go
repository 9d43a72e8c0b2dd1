package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/trustlens/internal/risk"
	"github.com/mark3labs/mcp-go/mcp"
)

// FlagAdminTool handles the trust_flag_admin MCP tool.
type FlagAdminTool struct {
	store Store
}

// NewFlagAdminTool creates a FlagAdminTool with the given store.
func NewFlagAdminTool(store Store) *FlagAdminTool {
	return &FlagAdminTool{store: store}
}

// Definition returns the MCP tool definition for trust_flag_admin.
func (t *FlagAdminTool) Definition() mcp.Tool {
	return mcp.NewTool("trust_flag_admin",
		mcp.WithDescription(
			"Attach an administrator risk flag to a run, for concerns the question bank cannot see. "+
				"A run holds at most one admin flag, and recalculation never removes it.",
		),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Run ID to flag"),
		),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("Short upper-case code (e.g. VENDOR_REVIEW)"),
		),
		mcp.WithString("label",
			mcp.Required(),
			mcp.Description("Human-readable flag label"),
		),
		mcp.WithString("description",
			mcp.Description("Why the flag was raised"),
		),
	)
}

// Handle processes the trust_flag_admin tool call.
func (t *FlagAdminTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, errRes := requireString(req, "run_id")
	if errRes != nil {
		return errRes, nil
	}
	code, errRes := requireString(req, "code")
	if errRes != nil {
		return errRes, nil
	}
	label, errRes := requireString(req, "label")
	if errRes != nil {
		return errRes, nil
	}

	flag := risk.Flag{
		Code:        strings.ToUpper(code),
		Label:       label,
		Description: req.GetString("description", ""),
		Source:      risk.SourceAdmin,
	}
	if err := t.store.AddAdminFlag(runID, flag); err != nil {
		return failure("add admin flag", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Admin flag %s (%q) added to run %s.", flag.Code, flag.Label, runID)), nil
}
