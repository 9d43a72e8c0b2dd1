// Package prompts implements MCP prompt handlers for trust assessments.
//
// Prompts are user-triggered workflows (like slash commands). Each one
// tells the AI which trust_* tools to call and in what order.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// AssessPrompt handles the trust-assess MCP prompt.
// It walks the AI through creating a subject and completing its first run.
type AssessPrompt struct{}

// NewAssessPrompt creates an AssessPrompt.
func NewAssessPrompt() *AssessPrompt {
	return &AssessPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *AssessPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("trust-assess",
		mcp.WithPromptDescription(
			"Run a trust assessment for an organisation or an AI system, "+
				"from creating the subject to reading the executive summary.",
		),
		mcp.WithArgument("subject_name",
			mcp.ArgumentDescription("Name of the organisation or system being assessed"),
		),
		mcp.WithArgument("kind",
			mcp.ArgumentDescription("'organisation' or 'system'. Default: system"),
		),
	)
}

// Handle processes the trust-assess prompt request.
func (p *AssessPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := "my system"
	kind := "system"
	if args := req.Params.Arguments; args != nil {
		if v, ok := args["subject_name"]; ok && v != "" {
			name = v
		}
		if v, ok := args["kind"]; ok && v != "" {
			kind = v
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Trust assessment: %s", name),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to run a trust assessment for the %s '%s'.\n\n"+
						"Please:\n"+
						"1. Run `trust_subject_create` with name='%s' and kind='%s'. Ask me whether it should be reassessed on a schedule.\n"+
						"2. Run `trust_run_start` for the new subject\n"+
						"3. Run `trust_bank` and ask me the questions one dimension at a time\n"+
						"4. Record my answers with `trust_answer`, including any evidence links I give you\n"+
						"5. When every question is answered, run `trust_submit`\n"+
						"6. Finish with `trust_summary` and walk me through the priorities",
					kind, name, name, kind,
				)),
			},
		},
	}, nil
}
