//go:build integration

package integration_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/groundwater-insights/internal/adapter/predict"
	"github.com/couchcryptid/groundwater-insights/internal/domain"
	"github.com/couchcryptid/groundwater-insights/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const predictionBody = `{
	"predictions": {
		"temperature": {"min": 24.1, "max": 27.9},
		"pH": {"min": 6.9, "max": 7.6},
		"conductivity": {"min": 410, "max": 780}
	},
	"plots": {"plot_2d": "iVBORw0KGgo=", "plot_3d": "iVBORw0KGgo="}
}`

// TestRedisPredictionCache verifies that predictions fetched through the
// client are shared via Redis between two independent cache decorators.
func TestRedisPredictionCache(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	addr := startRedis(ctx, t)

	var calls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/predict/Kalyani", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(predictionBody))
	}))
	t.Cleanup(upstream.Close)

	metrics := observability.NewMetricsForTesting()
	client := predict.NewClient(upstream.URL, 5*time.Second, metrics, discardLogger())

	newInstance := func() (*predict.CachedPredictor, *predict.RedisStore) {
		store, err := predict.NewRedisStore(ctx, addr, time.Minute)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return predict.NewCachedPredictor(client, store, metrics, discardLogger()), store
	}

	first, store := newInstance()
	require.NoError(t, store.CheckReadiness(ctx))

	p1, err := first.Predict(ctx, "Kalyani")
	require.NoError(t, err)
	assert.InDelta(t, 6.9, p1.Quality.PH.Min, 1e-9)
	assert.Equal(t, domain.EstimateRechargePotential(p1.Quality), p1.Recharge)

	second, _ := newInstance()
	p2, err := second.Predict(ctx, " kalyani ")
	require.NoError(t, err)
	assert.Equal(t, p1.Quality, p2.Quality)
	assert.Equal(t, p1.Plots, p2.Plots)
	assert.Equal(t, int64(1), calls.Load(), "second instance should be served from redis")
}

func TestRedisStore_MissAndExpiry(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	store, err := predict.NewRedisStore(ctx, startRedis(ctx, t), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, ok, err := store.Get(ctx, "nowhere")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "pune", domain.Prediction{Region: "Pune"}))
	got, ok, err := store.Get(ctx, "pune")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Pune", got.Region)

	require.Eventually(t, func() bool {
		_, ok, err := store.Get(ctx, "pune")
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	_, err := predict.NewRedisStore(context.Background(), "127.0.0.1:1", time.Minute)
	assert.Error(t, err)
}
