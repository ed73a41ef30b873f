package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/common"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
	"github.com/joseph-ayodele/extraction-bench/internal/extract"
)

func TestBuildBackends(t *testing.T) {
	c := common.DefaultConfig()
	c.Pipeline.Backends = []string{"model", " Pattern "}

	backends, err := buildBackends(&c, nil, nil)
	require.NoError(t, err)
	require.Len(t, backends, 2)
	require.Equal(t, constants.MethodModel, backends[0].Method())
	require.Equal(t, constants.MethodPattern, backends[1].Method())
	require.Equal(t, "mock", extract.ModelOf(backends[0]))
}

func TestBuildBackendsRejectsUnknown(t *testing.T) {
	c := common.DefaultConfig()
	c.Pipeline.Backends = []string{"ocr"}
	_, err := buildBackends(&c, nil, nil)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	c.Pipeline.Backends = nil
	_, err = buildBackends(&c, nil, nil)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestNewCompleterProviders(t *testing.T) {
	lc := common.DefaultConfig().LLM

	lc.Provider = common.ProviderOpenAI
	lc.OpenAIAPIKey = "sk-test"
	c, err := newCompleter(lc, nil)
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", c.Model())

	lc.Provider = common.ProviderAnthropic
	lc.Model = "claude-test"
	c, err = newCompleter(lc, nil)
	require.NoError(t, err)
	require.Equal(t, "claude-test", c.Model())

	lc.Provider = "nope"
	_, err = newCompleter(lc, nil)
	require.Error(t, err)
}

func TestOpenStoreWithCache(t *testing.T) {
	c := common.DefaultConfig()
	db, err := openStore(context.Background(), &c, nil)
	require.NoError(t, err)
	require.Nil(t, db)

	c.Database.DSN = ":memory:"
	c.LLM.Cache = true
	db, err = openStore(context.Background(), &c, nil)
	require.NoError(t, err)
	defer db.Close(nil)

	backends, err := buildBackends(&c, db, nil)
	require.NoError(t, err)

	doc := entity.Document{ID: "invoice_1.txt", Text: "INVOICE\nTotal: 10.00"}
	for i := 0; i < 2; i++ {
		raw, err := backends[1].Extract(context.Background(), doc)
		require.NoError(t, err)
		require.Equal(t, constants.MethodModel, raw.Metadata.Method)
	}
}

func TestRenderTables(t *testing.T) {
	var buf bytes.Buffer
	renderSummary(&buf, []entity.MethodSummary{{Method: constants.MethodPattern, Documents: 2, Valid: 1, Failed: 1}})
	renderAccuracy(&buf, entity.ComparisonReport{
		Fields:    []string{entity.FieldCompanyName},
		Documents: 1,
		Methods: []entity.MethodAccuracy{{
			Method:   constants.MethodPattern,
			PerField: map[string]float64{entity.FieldCompanyName: 2.0 / 3},
			Overall:  2.0 / 3,
		}},
	})
	out := buf.String()
	require.Contains(t, out, "pattern")
	require.Contains(t, out, "66.7%")
}
