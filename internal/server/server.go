// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it loads the bank and rule table, opens the
// assessment store and injects them into the tools, prompts and resources.
// No business logic lives here, only wiring.
package server

import (
	"fmt"
	"log"

	"github.com/HendryAvila/trustlens/internal/assessment"
	"github.com/HendryAvila/trustlens/internal/bank"
	"github.com/HendryAvila/trustlens/internal/config"
	"github.com/HendryAvila/trustlens/internal/prompts"
	"github.com/HendryAvila/trustlens/internal/resources"
	"github.com/HendryAvila/trustlens/internal/risk"
	"github.com/HendryAvila/trustlens/internal/store"
	"github.com/HendryAvila/trustlens/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// LoadEngine builds the scoring engine from cfg: the configured bank and
// rule files, or the reference ones when unset, plus the trend thresholds.
func LoadEngine(cfg config.Config) (*assessment.Engine, error) {
	b := bank.Default()
	if cfg.BankFile != "" {
		loaded, err := bank.LoadFile(cfg.BankFile)
		if err != nil {
			return nil, fmt.Errorf("loading question bank: %w", err)
		}
		b = loaded
	}

	rules := risk.DefaultRules()
	if cfg.RulesFile != "" {
		rs, err := risk.LoadRulesFile(b, cfg.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("loading risk rules: %w", err)
		}
		rules = rs.Rules()
	}

	engine, err := assessment.NewEngine(b, rules)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	engine.DriftThreshold = cfg.DriftThreshold
	engine.StabilityTolerance = cfg.StabilityTolerance
	engine.StabilityWindow = cfg.StabilityWindow
	return engine, nil
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the store's database connection
// and must be called on shutdown (typically via defer). It is always
// non-nil and safe to call even if the store failed to open.
func New(cfg config.Config) (*server.MCPServer, func(), error) {
	// --- Create shared dependencies ---

	engine, err := LoadEngine(cfg)
	if err != nil {
		return nil, noop, err
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"trustlens",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// The bank is always browsable, even without a store.
	bankTool := tools.NewBankTool(engine.Bank)
	s.AddTool(bankTool.Definition(), bankTool.Handle)

	// --- Register assessment tools ---
	//
	// If the store fails to open we log a warning and serve the bank only.

	cleanup := noop
	st, storeErr := store.New(store.Config{DataDir: cfg.DataDir})
	if storeErr != nil {
		log.Printf("WARNING: assessment store disabled: %v", storeErr)
	} else {
		cleanup = func() {
			if err := st.Close(); err != nil {
				log.Printf("WARNING: assessment store close: %v", err)
			}
		}
		registerAssessmentTools(s, st, engine, cfg)
	}

	// --- Register prompts ---

	assessPrompt := prompts.NewAssessPrompt()
	s.AddPrompt(assessPrompt.Definition(), assessPrompt.Handle)

	reviewPrompt := prompts.NewReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	// --- Register resources ---

	var subjects resources.SubjectStore
	if storeErr == nil {
		subjects = st
	}
	resourceHandler := resources.NewHandler(engine.Bank, subjects)
	s.AddResource(resourceHandler.BankResource(), resourceHandler.HandleBank)
	if subjects != nil {
		s.AddResource(resourceHandler.SubjectsResource(), resourceHandler.HandleSubjects)
	}

	return s, cleanup, nil
}

// noop is a no-op cleanup function used when the store is disabled.
func noop() {}

// registerAssessmentTools registers every store-backed trust_* tool.
func registerAssessmentTools(s *server.MCPServer, st *store.Store, engine *assessment.Engine, cfg config.Config) {
	// --- Subjects & runs ---
	subjectTool := tools.NewSubjectCreateTool(st)
	s.AddTool(subjectTool.Definition(), subjectTool.Handle)

	startTool := tools.NewRunStartTool(st)
	s.AddTool(startTool.Definition(), startTool.Handle)

	answerTool := tools.NewAnswerTool(st, engine)
	s.AddTool(answerTool.Definition(), answerTool.Handle)

	submitTool := tools.NewSubmitTool(st, engine)
	s.AddTool(submitTool.Definition(), submitTool.Handle)

	recalcTool := tools.NewRecalculateTool(st, engine)
	s.AddTool(recalcTool.Definition(), recalcTool.Handle)

	// --- Flags ---
	flagTool := tools.NewFlagAdminTool(st)
	s.AddTool(flagTool.Definition(), flagTool.Handle)

	// --- Reporting ---
	statusTool := tools.NewStatusTool(st)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	summaryTool := tools.NewSummaryTool(st, cfg.MinResponsesFor)
	s.AddTool(summaryTool.Definition(), summaryTool.Handle)
}

// serverInstructions returns the system instructions that tell the AI
// how to use TrustLens.
func serverInstructions() string {
	return `You have access to TrustLens, an MCP server for assessing how trustworthy an organisation or an AI system is.

## HOW AN ASSESSMENT WORKS

1. trust_subject_create registers what is being assessed (an organisation or a system).
2. trust_run_start opens a run. The first run is version 1; reassessing opens the next version.
3. trust_bank lists the 25 questions across five dimensions: Transparency, Explainability,
   Human Oversight, Risk Controls and Accountability.
4. trust_answer records answers. Maturity questions take none, ad_hoc, defined, enforced or automated.
5. trust_submit completes the run once every question is answered. It scores dimensions 0-100,
   raises risk flags, lists recommendations and compares against previous runs.
6. trust_summary writes the executive summary: tier, headline, posture, drivers and priorities.

## RULES

- Ask the user for answers. Never guess an answer on their behalf.
- Evidence is recorded for audit; it does not change scores.
- Completed runs are read-only. To change answers, start a new run.
- Use trust_flag_admin only when the user asks to raise a concern the questions do not cover.
- trust_recalculate is for re-deriving scores after the bank or rules change.
- Check trust_status before starting a run; a subject with a run in progress cannot start another.`
}
