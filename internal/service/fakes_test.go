package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"source-intel-be/internal/entity"
	"source-intel-be/internal/pkg/logger"
	"source-intel-be/internal/repository/memory"
	"source-intel-be/internal/repository/specification"
	"source-intel-be/pkg/events"
	"source-intel-be/pkg/synthesis"

	"github.com/stretchr/testify/require"
)

type fakeDecisionRepo struct {
	mu      sync.Mutex
	rows    []*entity.SynthesisDecision
	specs   []specification.Specification
	failErr error
}

func (r *fakeDecisionRepo) Create(_ context.Context, d *entity.SynthesisDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.rows = append(r.rows, d)
	return nil
}

func (r *fakeDecisionRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.SynthesisDecision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs = specs
	return append([]*entity.SynthesisDecision(nil), r.rows...), nil
}

func (r *fakeDecisionRepo) CountByContext(_ context.Context, _ ...specification.Specification) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int64{}
	for _, row := range r.rows {
		out[row.Context]++
	}
	return out, nil
}

func (r *fakeDecisionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *fakeBus) Publish(_ context.Context, e events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, e)
	return nil
}

func (b *fakeBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.published))
	for _, e := range b.published {
		out = append(out, e.EventType())
	}
	return out
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	frames map[string][][]byte
}

func (f *fakeBroadcaster) SendToSession(sessionID string, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frames == nil {
		f.frames = map[string][][]byte{}
	}
	f.frames[sessionID] = append(f.frames[sessionID], payload)
}

func (f *fakeBroadcaster) count(sessionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames[sessionID])
}

func newTestEngine(t *testing.T) *synthesis.Engine {
	t.Helper()
	reg, err := synthesis.NewRegistry(synthesis.DefaultCatalog()...)
	require.NoError(t, err)
	engine, err := synthesis.NewEngine(synthesis.DefaultOptions(), reg, memory.NewSessionRepository(time.Minute), logger.NewNopLogger())
	require.NoError(t, err)
	return engine
}
