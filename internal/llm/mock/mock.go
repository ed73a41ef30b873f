// Package mock is a deterministic llm.Completer that answers from canned fixtures,
// so the model backend can run without network access or credentials.
package mock

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/llm"
)

// ModelName is reported for every mock completion.
const ModelName = "mock"

//go:embed fixtures/*.json
var fixtures embed.FS

// Completer picks a response by document identifier first, then by document kind.
type Completer struct {
	// Responses overrides the fixture for specific document IDs.
	Responses map[string]string
	// Errors makes Complete fail for specific document IDs.
	Errors map[string]error
}

func New() *Completer {
	return &Completer{}
}

func (c *Completer) Model() string { return ModelName }

func (c *Completer) Complete(ctx context.Context, req llm.CompletionRequest) (llm.Completion, error) {
	if err := ctx.Err(); err != nil {
		return llm.Completion{}, err
	}
	if err, ok := c.Errors[req.DocumentID]; ok {
		return llm.Completion{}, err
	}
	if resp, ok := c.Responses[req.DocumentID]; ok {
		return llm.Completion{Content: resp, Model: ModelName}, nil
	}
	name := fixtureFor(req)
	b, err := fixtures.ReadFile("fixtures/" + name + ".json")
	if err != nil {
		return llm.Completion{}, fmt.Errorf("read mock fixture %s: %w", name, err)
	}
	return llm.Completion{Content: string(b), Model: ModelName}, nil
}

// fixtureFor mirrors how the documents are named and headed: an explicit type hint
// wins, then the document name, then a heading in the text.
func fixtureFor(req llm.CompletionRequest) string {
	switch req.TypeHint {
	case constants.DocTypeInvoice, constants.DocTypeFinancialTable, constants.DocTypeReport:
		return req.TypeHint
	}
	name := strings.ToLower(req.DocumentID)
	switch {
	case strings.Contains(name, "invoice") || strings.Contains(req.User, "INVOICE"):
		return constants.DocTypeInvoice
	case strings.Contains(name, "financial_table") || strings.Contains(req.User, "QUARTERLY"):
		return constants.DocTypeFinancialTable
	case strings.Contains(name, "report") || strings.Contains(req.User, "ANNUAL REPORT"):
		return constants.DocTypeReport
	}
	return "default"
}
