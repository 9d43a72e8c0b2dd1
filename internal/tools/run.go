package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/HendryAvila/trustlens/internal/assessment"
	"github.com/HendryAvila/trustlens/internal/bank"
	"github.com/HendryAvila/trustlens/internal/scoring"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── RunStartTool ───────────────────────────────────────────────────────────

// RunStartTool handles the trust_run_start MCP tool.
// It opens the first run of a subject, or the next one when reassessing.
type RunStartTool struct {
	store Store
}

// NewRunStartTool creates a RunStartTool with the given store.
func NewRunStartTool(store Store) *RunStartTool {
	return &RunStartTool{store: store}
}

// Definition returns the MCP tool definition for trust_run_start.
func (t *RunStartTool) Definition() mcp.Tool {
	return mcp.NewTool("trust_run_start",
		mcp.WithDescription(
			"Start an assessment run for a subject. The first call opens version 1; later calls reassess "+
				"a completed, stable or expired subject at the next version. Fails while a run is in progress.",
		),
		mcp.WithString("subject_id",
			mcp.Required(),
			mcp.Description("Subject ID from trust_subject_create"),
		),
	)
}

// Handle processes the trust_run_start tool call.
func (t *RunStartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subjectID, errRes := requireString(req, "subject_id")
	if errRes != nil {
		return errRes, nil
	}

	run, err := t.store.StartRun(subjectID)
	if err != nil {
		return failure("start run", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Started the %s run for subject %s.\nRun ID: %s\n\nNext: record answers with `trust_answer`, then call `trust_submit`.",
		humanize.Ordinal(run.Version), subjectID, run.ID,
	)), nil
}

// ─── AnswerTool ─────────────────────────────────────────────────────────────

// AnswerTool handles the trust_answer MCP tool.
type AnswerTool struct {
	store  Store
	engine *assessment.Engine
}

// NewAnswerTool creates an AnswerTool.
func NewAnswerTool(store Store, engine *assessment.Engine) *AnswerTool {
	return &AnswerTool{store: store, engine: engine}
}

// Definition returns the MCP tool definition for trust_answer.
func (t *AnswerTool) Definition() mcp.Tool {
	levels := make([]string, len(bank.MaturityLevels))
	for i, m := range bank.MaturityLevels {
		levels[i] = string(m)
	}
	return mcp.NewTool("trust_answer",
		mcp.WithDescription(
			"Record answers on an in-progress run. Either answer one question with question_id plus maturity or boolean, "+
				"or pass many at once as a JSON object in `answers`. A later answer to the same question replaces the earlier one. "+
				"Evidence is stored for audit and does not change the score.",
		),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Run ID from trust_run_start"),
		),
		mcp.WithString("question_id",
			mcp.Description("Question ID from trust_bank (e.g. HO-02)"),
		),
		mcp.WithString("maturity",
			mcp.Description("Maturity level for maturity questions"),
			mcp.Enum(levels...),
		),
		mcp.WithBoolean("boolean",
			mcp.Description("Answer for yes/no questions"),
		),
		mcp.WithString("evidence_type",
			mcp.Description("Evidence kind (e.g. url, document, ticket)"),
		),
		mcp.WithString("evidence_pointer",
			mcp.Description("Where the evidence lives"),
		),
		mcp.WithString("evidence_note",
			mcp.Description("Optional note about the evidence"),
		),
		mcp.WithString("answers",
			mcp.Description(`Bulk answers as JSON, e.g. {"TR-01":{"maturity":"defined"},"HO-02":{"maturity":"none"}}`),
		),
	)
}

// Handle processes the trust_answer tool call.
func (t *AnswerTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, errRes := requireString(req, "run_id")
	if errRes != nil {
		return errRes, nil
	}

	answers, errRes := answersFromRequest(req)
	if errRes != nil {
		return errRes, nil
	}

	run, err := t.store.GetRun(runID)
	if err != nil {
		return failure("record answers", err)
	}
	if err := t.engine.Answer(run, answers); err != nil {
		return failure("record answers", err)
	}
	if err := t.store.SaveAnswers(run); err != nil {
		return failure("record answers", err)
	}

	response := fmt.Sprintf("Recorded %d answer(s). %d of %d questions answered.",
		len(answers), len(run.Answers), t.engine.Bank.Len())
	var incomplete *scoring.IncompleteAnswersError
	if err := scoring.CheckComplete(t.engine.Bank, run.Answers); errors.As(err, &incomplete) {
		response += "\nStill unanswered: " + strings.Join(incomplete.Missing, ", ")
	} else {
		response += "\n\nAll questions answered. Next: `trust_submit`."
	}
	return mcp.NewToolResultText(response), nil
}

// answersFromRequest builds the answer set from either the bulk JSON or the
// single-question arguments.
func answersFromRequest(req mcp.CallToolRequest) (bank.Answers, *mcp.CallToolResult) {
	if raw := strings.TrimSpace(req.GetString("answers", "")); raw != "" {
		var answers bank.Answers
		if err := json.Unmarshal([]byte(raw), &answers); err != nil {
			return nil, mcp.NewToolResultError(fmt.Sprintf("'answers' is not valid JSON: %v", err))
		}
		if len(answers) == 0 {
			return nil, mcp.NewToolResultError("'answers' is empty")
		}
		return answers, nil
	}

	id := strings.TrimSpace(req.GetString("question_id", ""))
	if id == "" {
		return nil, mcp.NewToolResultError("provide either 'answers' or 'question_id'")
	}

	var a bank.Answer
	if m := req.GetString("maturity", ""); m != "" {
		level := bank.Maturity(m)
		a.Maturity = &level
	}
	a.Boolean = optionalBoolArg(req, "boolean")
	if a.Maturity == nil && a.Boolean == nil {
		return nil, mcp.NewToolResultError("answer needs 'maturity' or 'boolean'")
	}
	if ptr := req.GetString("evidence_pointer", ""); ptr != "" {
		a.Evidence = &bank.Evidence{
			Type:    req.GetString("evidence_type", "link"),
			Pointer: ptr,
			Note:    req.GetString("evidence_note", ""),
		}
	}
	return bank.Answers{id: a}, nil
}

// ─── SubmitTool ─────────────────────────────────────────────────────────────

// SubmitTool handles the trust_submit MCP tool.
// It completes a run: scores it, evaluates flags and trends, persists the
// derived fields and advances the subject's lifecycle.
type SubmitTool struct {
	store  Store
	engine *assessment.Engine
}

// NewSubmitTool creates a SubmitTool.
func NewSubmitTool(store Store, engine *assessment.Engine) *SubmitTool {
	return &SubmitTool{store: store, engine: engine}
}

// Definition returns the MCP tool definition for trust_submit.
func (t *SubmitTool) Definition() mcp.Tool {
	return mcp.NewTool("trust_submit",
		mcp.WithDescription(
			"Complete an in-progress run. Every bank question must be answered. Computes dimension and overall scores, "+
				"risk flags, recommendations, drift from the previous run and stability, then marks the run completed.",
		),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Run ID to complete"),
		),
	)
}

// Handle processes the trust_submit tool call.
func (t *SubmitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, errRes := requireString(req, "run_id")
	if errRes != nil {
		return errRes, nil
	}

	run, err := t.store.GetRun(runID)
	if err != nil {
		return failure("submit run", err)
	}
	sub, err := t.store.GetSubject(run.SubjectID)
	if err != nil {
		return failure("submit run", err)
	}
	history, err := t.store.CompletedRuns(run.SubjectID)
	if err != nil {
		return failure("submit run", err)
	}

	if err := t.engine.Complete(run, history); err != nil {
		return failure("submit run", err)
	}
	states := assessment.CompletionStates(*run)
	if err := t.store.CompleteRun(run, states); err != nil {
		return failure("submit run", err)
	}
	sub.State = states[len(states)-1]

	return mcp.NewToolResultText(formatRun(sub, run) + fmt.Sprintf("\nSubject state: %s", sub.State)), nil
}

// ─── RecalculateTool ────────────────────────────────────────────────────────

// RecalculateTool handles the trust_recalculate MCP tool.
type RecalculateTool struct {
	store  Store
	engine *assessment.Engine
}

// NewRecalculateTool creates a RecalculateTool.
func NewRecalculateTool(store Store, engine *assessment.Engine) *RecalculateTool {
	return &RecalculateTool{store: store, engine: engine}
}

// Definition returns the MCP tool definition for trust_recalculate.
func (t *RecalculateTool) Definition() mcp.Tool {
	return mcp.NewTool("trust_recalculate",
		mcp.WithDescription(
			"Recompute every derived field of a completed run against the current bank, rules and history. "+
				"Answers are never changed and admin flags are kept.",
		),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Completed run ID"),
		),
	)
}

// Handle processes the trust_recalculate tool call.
func (t *RecalculateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, errRes := requireString(req, "run_id")
	if errRes != nil {
		return errRes, nil
	}

	run, err := t.store.GetRun(runID)
	if err != nil {
		return failure("recalculate run", err)
	}
	sub, err := t.store.GetSubject(run.SubjectID)
	if err != nil {
		return failure("recalculate run", err)
	}
	history, err := t.store.CompletedRuns(run.SubjectID)
	if err != nil {
		return failure("recalculate run", err)
	}

	if err := t.engine.Recalculate(run, history); err != nil {
		return failure("recalculate run", err)
	}
	if err := t.store.SaveDerived(run); err != nil {
		return failure("recalculate run", err)
	}
	return mcp.NewToolResultText("Recalculated.\n\n" + formatRun(sub, run)), nil
}
