// FILE: pkg/synthesis/tracker.go
// PURPOSE: Per-session orchestration — classify, detect context switch, select, record

package synthesis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"source-intel-be/internal/pkg/logger"

	"github.com/google/uuid"
)

const maxSessionIDLength = 128

// Tracker runs queries against sessions. Calls sharing a session id are
// serialized; a failed call leaves the stored session untouched.
type Tracker struct {
	classifier *Classifier
	selector   *Selector
	registry   *Registry
	store      SessionStore
	locks      *keyedMutex
	epsilon    float64
	logger     logger.ILogger
	now        func() time.Time
}

func NewTracker(classifier *Classifier, selector *Selector, registry *Registry, store SessionStore, epsilon float64, log logger.ILogger) *Tracker {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Tracker{
		classifier: classifier,
		selector:   selector,
		registry:   registry,
		store:      store,
		locks:      newKeyedMutex(),
		epsilon:    epsilon,
		logger:     log,
		now:        time.Now,
	}
}

// NormalizeSessionID trims id and enforces a sane length.
func NormalizeSessionID(id string) (string, error) {
	n := strings.TrimSpace(id)
	if n == "" {
		return "", fmt.Errorf("%w: session id is empty", ErrInvalidInput)
	}
	if len(n) > maxSessionIDLength {
		return "", fmt.Errorf("%w: session id longer than %d bytes", ErrInvalidInput, maxSessionIDLength)
	}
	return n, nil
}

// Process classifies query, selects sources and appends the decision to the
// session, creating the session on first use.
func (t *Tracker) Process(ctx context.Context, sessionID, query string, target float64, maxSources int) (Decision, error) {
	id, err := NormalizeSessionID(sessionID)
	if err != nil {
		return Decision{}, err
	}

	class, err := t.classifier.Classify(query)
	if err != nil {
		return Decision{}, err
	}

	unlock := t.locks.Lock(id)
	defer unlock()

	if locker, ok := t.store.(SessionLocker); ok {
		release, err := locker.LockSession(ctx, id)
		if err != nil {
			return Decision{}, fmt.Errorf("lock session %s: %w", id, err)
		}
		defer release()
	}

	session, found, err := t.store.Get(ctx, id)
	if err != nil {
		return Decision{}, fmt.Errorf("load session %s: %w", id, err)
	}
	now := t.now()
	if !found {
		session = NewSession(id, now)
		t.logger.Debug("SYNTHESIS", "Session created", map[string]interface{}{"session_id": id})
	} else {
		session = session.Clone()
	}

	snapshot := t.registry.Snapshot()
	sel, err := t.selector.Select(class.Context, snapshot.Sources(), target, maxSources)
	if err != nil {
		return Decision{}, err
	}

	decision := Decision{
		ID:               uuid.NewString(),
		SessionID:        id,
		Query:            strings.TrimSpace(query),
		Context:          class.Context,
		Confidence:       class.Confidence,
		SelectedSources:  sel.SelectedIDs(),
		SynthesisQuality: sel.Quality,
		TargetQuality:    target,
		TargetReached:    sel.TargetReached,
		PerSourceScores:  sel.Scores(),
		RegistryVersion:  snapshot.Version,
		CreatedAt:        now,
	}
	for _, ex := range sel.Excluded {
		decision.ExcludedSources = append(decision.ExcludedSources, *ex)
	}

	if session.HasPrevious {
		prev := session.PreviousContext
		decision.PreviousContext = &prev
		if prev != class.Context {
			decision.ContextSwitched = true
			decision.TransitionTension = TransitionTension(prev, class.Context)
			session.ContextSwitchCount++
			session.Transitions = append(session.Transitions, Transition{
				From:    prev,
				To:      class.Context,
				Tension: decision.TransitionTension,
				At:      now,
			})
			t.logger.Info("SYNTHESIS", "Context switch detected", map[string]interface{}{
				"session_id": id,
				"from":       prev.String(),
				"to":         class.Context.String(),
				"tension":    decision.TransitionTension,
			})
		}
	}

	session.PreviousContext = class.Context
	session.HasPrevious = true
	session.History = append(session.History, decision.Clone())
	session.LastActiveAt = now

	if err := t.store.Save(ctx, session); err != nil {
		return Decision{}, fmt.Errorf("save session %s: %w", id, err)
	}
	return decision, nil
}

// Analytics summarizes a session. Unknown ids report an empty session.
func (t *Tracker) Analytics(ctx context.Context, sessionID string) (Analytics, error) {
	id, err := NormalizeSessionID(sessionID)
	if err != nil {
		return Analytics{}, err
	}
	session, found, err := t.store.Get(ctx, id)
	if err != nil {
		return Analytics{}, fmt.Errorf("load session %s: %w", id, err)
	}
	if !found {
		session = NewSession(id, t.now())
	}
	return session.Analyze(t.epsilon), nil
}

// Session returns a copy of the stored session.
func (t *Tracker) Session(ctx context.Context, sessionID string) (*Session, bool, error) {
	id, err := NormalizeSessionID(sessionID)
	if err != nil {
		return nil, false, err
	}
	session, found, err := t.store.Get(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}
	return session.Clone(), true, nil
}
