package predict

import (
	"context"
	"errors"
	"sync"

	"github.com/couchcryptid/groundwater-insights/internal/domain"
	"github.com/couchcryptid/groundwater-insights/internal/observability"
)

// ErrSuperseded is returned for a prediction whose selection was replaced by
// a newer one before the response arrived.
var ErrSuperseded = errors.New("prediction superseded by a newer selection")

// Selector keeps at most one prediction request in flight. Each Select cancels
// the previous request, and a response that arrives after a newer Select is
// discarded.
type Selector struct {
	predictor domain.Predictor
	metrics   *observability.Metrics

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewSelector creates a Selector over predictor.
func NewSelector(predictor domain.Predictor, metrics *observability.Metrics) *Selector {
	return &Selector{predictor: predictor, metrics: metrics}
}

// Select makes region the current selection and returns its prediction, or
// ErrSuperseded if another Select replaced it in the meantime.
func (s *Selector) Select(ctx context.Context, region string) (domain.Prediction, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	s.cancel = cancel
	s.mu.Unlock()

	p, err := s.predictor.Predict(ctx, region)

	s.mu.Lock()
	current := s.seq == seq
	if current {
		s.cancel = nil
	}
	s.mu.Unlock()

	if !current {
		s.metrics.Superseded.Inc()
		return domain.Prediction{}, ErrSuperseded
	}
	return p, err
}

// Sessions scopes selections per client session. A session's Selector lives
// only while it has a request in flight.
type Sessions struct {
	predictor domain.Predictor
	metrics   *observability.Metrics

	mu      sync.Mutex
	entries map[string]*session
}

type session struct {
	selector *Selector
	refs     int
}

// NewSessions creates an empty session registry.
func NewSessions(predictor domain.Predictor, metrics *observability.Metrics) *Sessions {
	return &Sessions{
		predictor: predictor,
		metrics:   metrics,
		entries:   make(map[string]*session),
	}
}

// Select routes the selection to the session's Selector.
func (s *Sessions) Select(ctx context.Context, id, region string) (domain.Prediction, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		e = &session{selector: NewSelector(s.predictor, s.metrics)}
		s.entries[id] = e
	}
	e.refs++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(s.entries, id)
		}
		s.mu.Unlock()
	}()

	return e.selector.Select(ctx, region)
}

// Active reports the number of sessions with a request in flight.
func (s *Sessions) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
