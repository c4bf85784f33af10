// Package predict talks to the external groundwater prediction service and
// layers caching and selection supersession on top of it.
package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/groundwater-insights/internal/domain"
	"github.com/couchcryptid/groundwater-insights/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxErrorBody caps how much of a failed response is kept for the error message.
const maxErrorBody = 4 << 10

var tracer = otel.Tracer("groundwater-insights/predict")

// Client implements domain.Predictor over the prediction service's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a prediction client for the service rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Predict fetches water quality and recharge predictions for region. When the
// service omits the recharge block it is estimated from the predicted quality.
func (c *Client) Predict(ctx context.Context, region string) (domain.Prediction, error) {
	ctx, span := tracer.Start(ctx, "predict.Client.Predict",
		trace.WithAttributes(attribute.String("region", region)))
	defer span.End()

	start := time.Now()
	p, err := c.doRequest(ctx, region)
	c.metrics.PredictionDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		c.metrics.PredictionRequests.WithLabelValues("success").Inc()
	case ctx.Err() != nil:
		c.metrics.PredictionRequests.WithLabelValues("canceled").Inc()
	default:
		c.metrics.PredictionRequests.WithLabelValues("error").Inc()
		c.logger.Warn("prediction request failed", "region", region, "error", err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return p, err
}

func (c *Client) doRequest(ctx context.Context, region string) (domain.Prediction, error) {
	u := fmt.Sprintf("%s/api/predict/%s", c.baseURL, url.PathEscape(region))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Prediction{}, &domain.ExternalServiceError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Prediction{}, &domain.ExternalServiceError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.Prediction{}, &domain.ExternalServiceError{
			Status: resp.StatusCode,
			Body:   errorMessage(body),
		}
	}

	var pr response
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return domain.Prediction{}, &domain.ExternalServiceError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}
	if pr.Predictions == nil {
		return domain.Prediction{}, &domain.ExternalServiceError{
			Status: resp.StatusCode,
			Err:    errors.New("response has no predictions"),
		}
	}

	quality := domain.WaterQuality{
		Temperature:  pr.Predictions.Temperature,
		PH:           pr.Predictions.PH,
		Conductivity: pr.Predictions.Conductivity,
	}
	recharge := domain.EstimateRechargePotential(quality)
	if pr.Predictions.Recharge != nil {
		recharge = *pr.Predictions.Recharge
	}

	return domain.Prediction{
		Region:   region,
		Quality:  quality,
		Recharge: recharge,
		Plots:    pr.Plots,
	}, nil
}

// errorMessage prefers the service's {"error": "..."} message over the raw body.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

// Prediction service response types.

type response struct {
	Predictions *predictions `json:"predictions"`
	Plots       domain.Plots `json:"plots"`
}

type predictions struct {
	Temperature  domain.Range     `json:"temperature"`
	PH           domain.Range     `json:"pH"`
	Conductivity domain.Range     `json:"conductivity"`
	Recharge     *domain.Recharge `json:"recharge"`
}
