package pipeline_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/couchcryptid/groundwater-insights/internal/adapter/dataset"
	"github.com/couchcryptid/groundwater-insights/internal/analysis"
	"github.com/couchcryptid/groundwater-insights/internal/domain"
	"github.com/couchcryptid/groundwater-insights/internal/observability"
	"github.com/couchcryptid/groundwater-insights/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransformer(t *testing.T) *pipeline.RequestTransformer {
	t.Helper()
	catalog, err := dataset.Default(discardLogger())
	require.NoError(t, err)
	analyzer := analysis.New(42, 2, observability.NewMetricsForTesting(), discardLogger())
	return pipeline.NewTransformer(analyzer, catalog, discardLogger())
}

func TestRequestTransformer_DatasetRegion(t *testing.T) {
	tfm := newTransformer(t)

	report, err := tfm.Transform(context.Background(), pipeline.Message{
		Value: []byte(`{"state":"punjab","district":"LUDHIANA"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ludhiana, Punjab", report.Region)
	assert.Equal(t, domain.CategoryOverExploited, report.Category)
	assert.NotContains(t, report.Fallbacks, analysis.SeriesTrend)
}

func TestRequestTransformer_InlineRequest(t *testing.T) {
	tfm := newTransformer(t)

	payload, err := json.Marshal(analysis.Request{
		Region: "Test Block",
		Metrics: domain.RegionMetrics{
			CurrentLevel:               6,
			ExtractionRate:             55,
			AnnualRainfall:             1100,
			GroundWaterRecharge:        300,
			GroundWaterExtraction:      160,
			AnnualExtractableResources: 400,
		},
	})
	require.NoError(t, err)

	report, err := tfm.Transform(context.Background(), pipeline.Message{Value: payload})
	require.NoError(t, err)
	assert.Equal(t, "Test Block", report.Region)
	assert.Equal(t, domain.CategorySafe, report.Category)
	assert.ElementsMatch(t, []string{analysis.SeriesTrend, analysis.SeriesRainfall}, report.Fallbacks)
}

func TestRequestTransformer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"invalid json", `not-json{{{`},
		{"empty request", `{}`},
		{"unknown region", `{"state":"Atlantis","district":"Poseidonia"}`},
	}

	tfm := newTransformer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tfm.Transform(context.Background(), pipeline.Message{Value: []byte(tt.value)})
			assert.Error(t, err)
		})
	}
}

func TestRequestTransformer_UnknownRegionWrapsNotFound(t *testing.T) {
	tfm := newTransformer(t)

	_, err := tfm.Transform(context.Background(), pipeline.Message{
		Value: []byte(`{"state":"West Bengal","district":"Howrah"}`),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrNotFound)
}

func TestRequestTransformer_NoRegionSource(t *testing.T) {
	analyzer := analysis.New(42, 1, observability.NewMetricsForTesting(), discardLogger())
	tfm := pipeline.NewTransformer(analyzer, nil, discardLogger())

	_, err := tfm.Transform(context.Background(), pipeline.Message{
		Value: []byte(`{"state":"Punjab","district":"Ludhiana"}`),
	})
	assert.Error(t, err)
}
