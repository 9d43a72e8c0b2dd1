package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/trustlens/internal/bank"
	"github.com/mark3labs/mcp-go/mcp"
)

// BankTool handles the trust_bank MCP tool.
// It lists the question bank so the host can collect answers.
type BankTool struct {
	bank *bank.Bank
}

// NewBankTool creates a BankTool over b.
func NewBankTool(b *bank.Bank) *BankTool {
	return &BankTool{bank: b}
}

// Definition returns the MCP tool definition for trust_bank.
func (t *BankTool) Definition() mcp.Tool {
	return mcp.NewTool("trust_bank",
		mcp.WithDescription(
			"List the assessment question bank: every question id, its dimension, control, prompt, "+
				"answer type and weight. Use it before collecting answers with trust_answer.",
		),
		mcp.WithString("dimension",
			mcp.Description("Only list one dimension (key or label, e.g. human_oversight)"),
		),
	)
}

// Handle processes the trust_bank tool call.
func (t *BankTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dims := bank.Dimensions
	if raw := req.GetString("dimension", ""); raw != "" {
		d, err := bank.ParseDimension(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dims = []bank.Dimension{d}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Question bank %s (%d questions)\n\n", t.bank.Version(), t.bank.Len())
	for _, d := range dims {
		fmt.Fprintf(&sb, "## %s\n\n", d.Label())
		for _, q := range t.bank.ByDimension(d) {
			fmt.Fprintf(&sb, "- `%s` **%s** (%s, weight %.2f): %s\n", q.ID, q.Control, answerHint(q.AnswerType), q.Weight, q.Prompt)
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func answerHint(t bank.AnswerType) string {
	if t == bank.AnswerBoolean {
		return "yes/no"
	}
	levels := make([]string, len(bank.MaturityLevels))
	for i, m := range bank.MaturityLevels {
		levels[i] = string(m)
	}
	return strings.Join(levels, "|")
}
