package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReviewPrompt handles the trust-review MCP prompt.
// It asks the AI to report where every subject stands and what is due.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("trust-review",
		mcp.WithPromptDescription(
			"Review assessment status: lifecycle states, overdue reassessments, and drift since the previous run.",
		),
		mcp.WithArgument("subject_id",
			mcp.ArgumentDescription("Review one subject only"),
		),
	)
}

// Handle processes the trust-review prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := "Please run `trust_status` to list every assessment subject.\n\n" +
		"Then:\n" +
		"1. Point out subjects that are expired or overdue for reassessment\n" +
		"2. For each completed subject, run `trust_summary` and report the tier and headline\n" +
		"3. Call out any significant drift or unstable scores\n" +
		"4. Tell me which subject to reassess first and why"

	if args := req.Params.Arguments; args != nil {
		if id, ok := args["subject_id"]; ok && id != "" {
			text = fmt.Sprintf(
				"Please run `trust_status` with subject_id='%s'.\n\n"+
					"Then:\n"+
					"1. Show me its run history and current lifecycle state\n"+
					"2. Run `trust_summary` for the latest completed run\n"+
					"3. Explain what changed since the previous run\n"+
					"4. Tell me whether it is due for reassessment",
				id,
			)
		}
	}

	return &mcp.GetPromptResult{
		Description: "Trust assessment review",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}, nil
}
