// Package resources implements MCP resource handlers for trust assessments.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (trust://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/trustlens/internal/assessment"
	"github.com/HendryAvila/trustlens/internal/bank"
	"github.com/HendryAvila/trustlens/internal/lifecycle"
	"github.com/mark3labs/mcp-go/mcp"
)

// SubjectStore is the read side of the assessment store.
type SubjectStore interface {
	ListSubjects() ([]assessment.Subject, error)
	Runs(subjectID string) ([]assessment.Run, error)
}

// Handler manages trust resource endpoints.
type Handler struct {
	bank  *bank.Bank
	store SubjectStore
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(b *bank.Bank, store SubjectStore) *Handler {
	return &Handler{bank: b, store: store}
}

// BankResource returns the MCP resource definition for the question bank.
func (h *Handler) BankResource() mcp.Resource {
	return mcp.NewResource(
		"trust://bank",
		"Trust Question Bank",
		mcp.WithResourceDescription("The active question bank: version, dimensions and every question"),
		mcp.WithMIMEType("application/json"),
	)
}

type bankDoc struct {
	Version   string          `json:"version"`
	Questions []bank.Question `json:"questions"`
}

// HandleBank returns the question bank as JSON.
func (h *Handler) HandleBank(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, bankDoc{Version: h.bank.Version(), Questions: h.bank.Questions()})
}

// SubjectsResource returns the MCP resource definition for subject status.
func (h *Handler) SubjectsResource() mcp.Resource {
	return mcp.NewResource(
		"trust://subjects",
		"Assessment Subjects",
		mcp.WithResourceDescription("Every subject with its effective lifecycle state and latest score"),
		mcp.WithMIMEType("application/json"),
	)
}

type subjectDoc struct {
	assessment.Subject
	EffectiveState lifecycle.State `json:"effective_state"`
	Runs           int             `json:"runs"`
	LatestScore    *int            `json:"latest_score,omitempty"`
}

// HandleSubjects returns every subject as JSON.
func (h *Handler) HandleSubjects(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	subs, err := h.store.ListSubjects()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	docs := make([]subjectDoc, 0, len(subs))
	for _, sub := range subs {
		runs, err := h.store.Runs(sub.ID)
		if err != nil {
			return errorResource(req.Params.URI, err.Error()), nil
		}
		doc := subjectDoc{
			Subject:        sub,
			EffectiveState: assessment.EffectiveState(sub, runs),
			Runs:           len(runs),
		}
		for i := len(runs) - 1; i >= 0; i-- {
			if runs[i].OverallScore != nil {
				doc.LatestScore = runs[i].OverallScore
				break
			}
		}
		docs = append(docs, doc)
	}
	return jsonResource(req.Params.URI, docs)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
