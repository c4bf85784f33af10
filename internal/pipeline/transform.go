package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/groundwater-insights/internal/analysis"
)

// Analyzer produces a report for a single region.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (analysis.Report, error)
}

// RegionSource resolves a dataset region to its analysis request.
type RegionSource interface {
	RequestFor(state, district, city string) (analysis.Request, error)
}

// requestMessage is the JSON payload on the source topic. A message either
// names a dataset region by state/district/city, or carries the metrics inline.
type requestMessage struct {
	State    string `json:"state,omitempty"`
	District string `json:"district,omitempty"`
	City     string `json:"city,omitempty"`

	analysis.Request
}

// RequestTransformer implements Transformer by decoding request messages and
// running them through the analyzer.
type RequestTransformer struct {
	analyzer Analyzer
	regions  RegionSource
	logger   *slog.Logger
}

// NewTransformer creates a RequestTransformer. A nil regions source limits
// the pipeline to inline requests.
func NewTransformer(analyzer Analyzer, regions RegionSource, logger *slog.Logger) *RequestTransformer {
	return &RequestTransformer{
		analyzer: analyzer,
		regions:  regions,
		logger:   logger,
	}
}

func (t *RequestTransformer) Transform(ctx context.Context, msg Message) (analysis.Report, error) {
	req, err := t.decode(msg)
	if err != nil {
		return analysis.Report{}, err
	}
	return t.analyzer.Analyze(ctx, req)
}

func (t *RequestTransformer) decode(msg Message) (analysis.Request, error) {
	var rm requestMessage
	if err := json.Unmarshal(msg.Value, &rm); err != nil {
		return analysis.Request{}, fmt.Errorf("decode analysis request: %w", err)
	}

	if strings.TrimSpace(rm.State) == "" {
		if strings.TrimSpace(rm.Region) == "" {
			return analysis.Request{}, errors.New("analysis request names neither a region nor a state")
		}
		return rm.Request, nil
	}

	if t.regions == nil {
		return analysis.Request{}, errors.New("region lookup is not available")
	}
	req, err := t.regions.RequestFor(rm.State, rm.District, rm.City)
	if err != nil {
		return analysis.Request{}, fmt.Errorf("resolve region: %w", err)
	}
	t.logger.Debug("resolved dataset region", "region", req.Region, "offset", msg.Offset)
	return req, nil
}
