package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/couchcryptid/groundwater-insights/internal/adapter/http"
	"github.com/couchcryptid/groundwater-insights/internal/adapter/dataset"
	"github.com/couchcryptid/groundwater-insights/internal/adapter/predict"
	"github.com/couchcryptid/groundwater-insights/internal/analysis"
	"github.com/couchcryptid/groundwater-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePredictions struct {
	prediction domain.Prediction
	err        error

	session string
	region  string
}

func (f *fakePredictions) Select(_ context.Context, session, region string) (domain.Prediction, error) {
	f.session, f.region = session, region
	return f.prediction, f.err
}

func serve(t *testing.T, predictions httpadapter.Predictions, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	srv := httpadapter.NewServer(":0", newHandler(t, predictions), &mockReadiness{}, discardLogger())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, nil, httptest.NewRequest(http.MethodGet, path, nil))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestListStates(t *testing.T) {
	rec := get(t, "/api/v1/states")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string][]string](t, rec)
	assert.Equal(t, []string{"West Bengal", "Punjab", "Rajasthan", "Kerala", "Tamil Nadu", "Maharashtra"}, body["states"])
}

func TestListDistricts(t *testing.T) {
	rec := get(t, "/api/v1/states/West%20Bengal/districts")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Districts []string `json:"districts"`
	}](t, rec)
	assert.Equal(t, []string{"Nadia", "Darjeeling"}, body.Districts)
}

func TestListDistricts_UnknownState(t *testing.T) {
	rec := get(t, "/api/v1/states/Atlantis/districts")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "not found")
}

func TestListCities(t *testing.T) {
	rec := get(t, "/api/v1/states/maharashtra/districts/pune/cities")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Cities []string `json:"cities"`
	}](t, rec)
	assert.Equal(t, []string{"Pimpri-Chinchwad"}, body.Cities)
}

func TestListCities_DistrictWithoutCities(t *testing.T) {
	rec := get(t, "/api/v1/states/Kerala/districts/Ernakulam/cities")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"state":"Kerala","district":"Ernakulam","cities":[]}`, rec.Body.String())
}

func TestSearch(t *testing.T) {
	rec := get(t, "/api/v1/search?q=PUN")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Results []dataset.Match `json:"results"`
	}](t, rec)
	require.Len(t, body.Results, 2)
	assert.Equal(t, "state", body.Results[0].Level)
	assert.Equal(t, "Punjab", body.Results[0].Name)
	assert.Equal(t, "district", body.Results[1].Level)
}

func TestSearch_Limit(t *testing.T) {
	rec := get(t, "/api/v1/search?q=a&limit=3")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Results []dataset.Match `json:"results"`
	}](t, rec)
	assert.Len(t, body.Results, 3)
}

func TestSearch_NoResults(t *testing.T) {
	rec := get(t, "/api/v1/search?q=zzz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"query":"zzz","results":[]}`, rec.Body.String())
}

func TestSearch_BadRequests(t *testing.T) {
	for _, path := range []string{"/api/v1/search", "/api/v1/search?q=pun&limit=0", "/api/v1/search?q=pun&limit=x"} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, get(t, path).Code)
		})
	}
}

func TestAnalyzeRegion(t *testing.T) {
	rec := get(t, "/api/v1/analysis?state=Punjab&district=Ludhiana")
	require.Equal(t, http.StatusOK, rec.Code)

	report := decode[analysis.Report](t, rec)
	assert.Equal(t, "Ludhiana, Punjab", report.Region)
	assert.Equal(t, domain.CategoryOverExploited, report.Category)
	assert.Len(t, report.Projection, domain.ProjectionHorizon)
	assert.Len(t, report.Risk, 5)
	assert.Len(t, report.Rainfall, 12)
	require.NotNil(t, report.WaterBalance)
}

func TestAnalyzeRegion_City(t *testing.T) {
	rec := get(t, "/api/v1/analysis?state=West%20Bengal&district=Nadia&city=Kalyani")
	require.Equal(t, http.StatusOK, rec.Code)

	report := decode[analysis.Report](t, rec)
	assert.Equal(t, "Kalyani, Nadia, West Bengal", report.Region)
	assert.Equal(t, domain.CategoryCritical, report.Category)
}

func TestAnalyzeRegion_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		want int
	}{
		{"missing district", "/api/v1/analysis?state=Punjab", http.StatusBadRequest},
		{"missing state", "/api/v1/analysis?district=Ludhiana", http.StatusBadRequest},
		{"unknown region", "/api/v1/analysis?state=Punjab&district=Amritsar", http.StatusNotFound},
		{"unknown city", "/api/v1/analysis?state=Punjab&district=Ludhiana&city=Jagraon", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, get(t, tt.path).Code)
		})
	}
}

func TestAnalyzeInline(t *testing.T) {
	body := `{
		"region": "Test Block",
		"metrics": {"level": 12, "extraction": 85, "rainfall": 600,
			"groundWaterRecharge": 500, "groundWaterExtraction": 600,
			"naturalDischarges": 50, "annualExtractableResources": 650},
		"historicalLevels": [{"year": 2020, "level": 10}, {"year": 2021, "level": 11}, {"year": 2022, "level": 12}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(body))
	rec := serve(t, nil, req)
	require.Equal(t, http.StatusOK, rec.Code)

	report := decode[analysis.Report](t, rec)
	assert.Equal(t, domain.CategoryCritical, report.Category)
	require.Len(t, report.Trend, 3)
	assert.Equal(t, 2022, report.Projection[0].Year)
	assert.Equal(t, []string{analysis.SeriesRainfall}, report.Fallbacks)
	require.NotNil(t, report.WaterBalance)
	assert.InDelta(t, -150, report.WaterBalance.NetBalance, 1e-9)
}

func TestAnalyzeInline_BadRequests(t *testing.T) {
	for name, body := range map[string]string{
		"malformed":      `{"region":`,
		"missing region": `{"metrics":{"level":3}}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(body))
			assert.Equal(t, http.StatusBadRequest, serve(t, nil, req).Code)
		})
	}
}

func TestPredict(t *testing.T) {
	fake := &fakePredictions{prediction: domain.Prediction{
		Region:  "Kalyani",
		Quality: domain.WaterQuality{PH: domain.Range{Min: 6.8, Max: 7.4}},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions/Kalyani?session=tab-1", nil)
	rec := serve(t, fake, req)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[domain.Prediction](t, rec)
	assert.Equal(t, "Kalyani", got.Region)
	assert.InDelta(t, 6.8, got.Quality.PH.Min, 1e-9)
	assert.Equal(t, "tab-1", fake.session)
	assert.Equal(t, "Kalyani", fake.region)
}

func TestPredict_SessionDefaultsToClientAddress(t *testing.T) {
	fake := &fakePredictions{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions/Pune", nil)
	req.RemoteAddr = "10.1.2.3:53211"

	serve(t, fake, req)
	assert.Equal(t, "10.1.2.3", fake.session)
}

func TestPredict_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    int
		message string
	}{
		{"superseded", predict.ErrSuperseded, http.StatusConflict, "superseded"},
		{
			"upstream failure",
			&domain.ExternalServiceError{Status: http.StatusNotFound, Body: "city not found"},
			http.StatusBadGateway,
			"prediction service error: status 404: city not found",
		},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "prediction failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions/Nadia", nil)
			rec := serve(t, &fakePredictions{err: tt.err}, req)
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, decode[map[string]string](t, rec)["error"], tt.message)
		})
	}
}

func TestPredict_Disabled(t *testing.T) {
	rec := get(t, "/api/v1/predictions/Nadia")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
