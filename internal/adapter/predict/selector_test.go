package predict

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/groundwater-insights/internal/domain"
	"github.com/couchcryptid/groundwater-insights/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedPredictor blocks each call until released or its context is cancelled.
type gatedPredictor struct {
	started chan string
	release chan struct{}
}

func newGatedPredictor() *gatedPredictor {
	return &gatedPredictor{started: make(chan string, 4), release: make(chan struct{})}
}

func (g *gatedPredictor) Predict(ctx context.Context, region string) (domain.Prediction, error) {
	g.started <- region
	select {
	case <-g.release:
		return domain.Prediction{Region: region}, nil
	case <-ctx.Done():
		return domain.Prediction{}, &domain.ExternalServiceError{Err: ctx.Err()}
	}
}

func waitStarted(t *testing.T, g *gatedPredictor, want string) {
	t.Helper()
	select {
	case got := <-g.started:
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("request for %q never started", want)
	}
}

func TestSelector_NewerSelectionSupersedes(t *testing.T) {
	pred := newGatedPredictor()
	sel := NewSelector(pred, observability.NewMetricsForTesting())

	var first error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, first = sel.Select(context.Background(), "nadia")
	}()
	waitStarted(t, pred, "nadia")

	var second domain.Prediction
	var secondErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		second, secondErr = sel.Select(context.Background(), "ludhiana")
	}()
	waitStarted(t, pred, "ludhiana")

	close(pred.release)
	wg.Wait()

	assert.ErrorIs(t, first, ErrSuperseded)
	require.NoError(t, secondErr)
	assert.Equal(t, "ludhiana", second.Region)
}

func TestSelector_SingleSelection(t *testing.T) {
	pred := newGatedPredictor()
	close(pred.release)
	sel := NewSelector(pred, observability.NewMetricsForTesting())

	p, err := sel.Select(context.Background(), "nadia")
	require.NoError(t, err)
	assert.Equal(t, "nadia", p.Region)

	p, err = sel.Select(context.Background(), "jaisalmer")
	require.NoError(t, err)
	assert.Equal(t, "jaisalmer", p.Region)
}

func TestSessions_Isolated(t *testing.T) {
	pred := newGatedPredictor()
	sessions := NewSessions(pred, observability.NewMetricsForTesting())

	var errA, errB error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errA = sessions.Select(context.Background(), "a", "nadia")
	}()
	waitStarted(t, pred, "nadia")
	go func() {
		defer wg.Done()
		_, errB = sessions.Select(context.Background(), "b", "ludhiana")
	}()
	waitStarted(t, pred, "ludhiana")

	assert.Equal(t, 2, sessions.Active())
	close(pred.release)
	wg.Wait()

	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, 0, sessions.Active())
}
