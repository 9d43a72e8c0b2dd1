// Package tools implements the trust_* MCP tool handlers.
//
// Each tool follows the same pattern:
// - A struct with dependencies (store, engine, bank) injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Validation problems come back as tool errors the host can show the user.
// Go errors are reserved for storage failures.
package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/trustlens/internal/assessment"
	"github.com/HendryAvila/trustlens/internal/bank"
	"github.com/HendryAvila/trustlens/internal/lifecycle"
	"github.com/HendryAvila/trustlens/internal/risk"
	"github.com/HendryAvila/trustlens/internal/scoring"
	"github.com/HendryAvila/trustlens/internal/store"
	"github.com/HendryAvila/trustlens/internal/summary"
	"github.com/mark3labs/mcp-go/mcp"
)

// Store is the persistence the tools need. *store.Store satisfies it.
type Store interface {
	CreateSubject(name string, kind summary.Module, frequencyDays *int) (*assessment.Subject, error)
	GetSubject(id string) (*assessment.Subject, error)
	ListSubjects() ([]assessment.Subject, error)
	StartRun(subjectID string) (*assessment.Run, error)
	SaveAnswers(run *assessment.Run) error
	SaveDerived(run *assessment.Run) error
	CompleteRun(run *assessment.Run, states []lifecycle.State) error
	GetRun(id string) (*assessment.Run, error)
	Runs(subjectID string) ([]assessment.Run, error)
	CompletedRuns(subjectID string) ([]assessment.Run, error)
	AddAdminFlag(runID string, f risk.Flag) error
}

var _ Store = (*store.Store)(nil)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// optionalIntArg is intArg for arguments whose absence means something.
func optionalIntArg(req mcp.CallToolRequest, key string) *int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}

// optionalBoolArg extracts a boolean argument, nil when absent.
func optionalBoolArg(req mcp.CallToolRequest, key string) *bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return nil
	}
	return &v
}

// userError reports whether err is something the caller can fix, as
// opposed to a storage failure.
func userError(err error) bool {
	return errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrAdminFlagExists) ||
		errors.Is(err, assessment.ErrRunCompleted) ||
		errors.Is(err, assessment.ErrRunNotCompleted) ||
		errors.Is(err, lifecycle.ErrStaleTransition) ||
		errors.Is(err, scoring.ErrIncompleteAnswers) ||
		errors.Is(err, scoring.ErrInvalidAnswerShape) ||
		errors.Is(err, bank.ErrConfiguration)
}

// failure converts err into the tool's return pair: a tool error for
// problems the caller can fix, a Go error otherwise.
func failure(action string, err error) (*mcp.CallToolResult, error) {
	if userError(err) {
		return mcp.NewToolResultError(fmt.Sprintf("Cannot %s: %v", action, err)), nil
	}
	return nil, fmt.Errorf("%s: %w", action, err)
}

// requireString returns the named argument or a ready-made tool error.
func requireString(req mcp.CallToolRequest, key string) (string, *mcp.CallToolResult) {
	v := strings.TrimSpace(req.GetString(key, ""))
	if v == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' is required", key))
	}
	return v, nil
}
