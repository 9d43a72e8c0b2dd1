package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/HendryAvila/trustlens/internal/assessment"
	"github.com/HendryAvila/trustlens/internal/bank"
	"github.com/HendryAvila/trustlens/internal/config"
	"github.com/HendryAvila/trustlens/internal/recommend"
	tlserver "github.com/HendryAvila/trustlens/internal/server"
	"github.com/HendryAvila/trustlens/internal/summary"
)

type scoreOptions struct {
	kind      summary.Module
	responses int
	json      bool
}

// runScore implements `trustlens score`.
func runScore(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	kind := fs.String("kind", string(summary.ModuleSystem), "assessment kind: organisation or system")
	responses := fs.Int("responses", 1, "response count for the confidence note")
	asJSON := fs.Bool("json", false, "print JSON instead of a report")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("score needs exactly one answers file")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("reading answers: %w", err)
	}
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}
	return score(cfg, scoreOptions{kind: summary.Module(*kind), responses: *responses, json: *asJSON}, data, w)
}

type scoreResult struct {
	Run     assessment.Run `json:"run"`
	Summary summary.Output `json:"summary"`
}

// score evaluates one answer document as a standalone run with no history.
func score(cfg config.Config, opts scoreOptions, data []byte, w io.Writer) error {
	if !opts.kind.Valid() {
		return fmt.Errorf("invalid kind %q: must be organisation or system", opts.kind)
	}

	var answers bank.Answers
	if err := json.Unmarshal(data, &answers); err != nil {
		return fmt.Errorf("parsing answers: %w", err)
	}

	engine, err := tlserver.LoadEngine(cfg)
	if err != nil {
		return err
	}
	run := assessment.Run{
		Version:     1,
		Status:      assessment.RunInProgress,
		BankVersion: engine.Bank.Version(),
		Answers:     answers,
	}
	if err := engine.Complete(&run, nil); err != nil {
		return err
	}

	in, err := assessment.SummaryInput(assessment.Subject{Kind: opts.kind}, run, nil, opts.responses, cfg.MinResponsesFor(opts.kind))
	if err != nil {
		return err
	}
	out, err := summary.Build(in)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(scoreResult{Run: run, Summary: out})
	}
	writeReport(w, run, out)
	return nil
}

// tierColor picks the report accent for a tier.
func tierColor(t summary.Tier) *color.Color {
	switch t {
	case summary.TierTrusted:
		return color.New(color.FgGreen, color.Bold)
	case summary.TierStable:
		return color.New(color.FgCyan, color.Bold)
	case summary.TierElevatedRisk:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func severityColor(s summary.Severity) *color.Color {
	switch s {
	case summary.SeverityStrength:
		return color.New(color.FgGreen)
	case summary.SeverityWatch:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func writeReport(w io.Writer, run assessment.Run, out summary.Output) {
	accent := tierColor(out.Tier)
	bold := color.New(color.Bold)

	accent.Fprintf(w, "%s  %d/100\n", out.Tier, *run.OverallScore)
	bold.Fprintln(w, out.Headline)
	fmt.Fprintf(w, "%s\n\n", out.PostureText)

	for _, d := range bank.Dimensions {
		sev := out.Severities[d]
		fmt.Fprintf(w, "  %-16s %3d  %s\n", d.Label(), run.DimensionScores[d], severityColor(sev).Sprint(sev))
	}

	if len(run.RiskFlags) > 0 {
		fmt.Fprintln(w)
		bold.Fprintln(w, "Risk flags")
		for _, f := range run.RiskFlags {
			color.New(color.FgRed).Fprintf(w, "  ! %s", f.Code)
			fmt.Fprintf(w, "  %s\n", f.Label)
		}
	}

	fmt.Fprintln(w)
	bold.Fprintln(w, "Priorities")
	for i, p := range out.Priorities {
		fmt.Fprintf(w, "  %d. %s (%s)\n", i+1, p.Title, p.Label)
	}

	high, med := recommend.Count(run.Recommendations)
	fmt.Fprintf(w, "\n%d recommendation(s): %d high, %d med\n", len(run.Recommendations), high, med)
	fmt.Fprintf(w, "%s\n", out.ConfidenceNote)
}
