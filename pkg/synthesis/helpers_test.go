package synthesis

import (
	"context"
	"sync"
)

// mapStore is a minimal in-memory SessionStore for engine tests.
type mapStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	saves    int
	failSave error
}

func newMapStore() *mapStore {
	return &mapStore{sessions: make(map[string]*Session)}
}

func (m *mapStore) Get(_ context.Context, id string) (*Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, false, nil
	}
	return s.Clone(), true, nil
}

func (m *mapStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave != nil {
		return m.failSave
	}
	m.saves++
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *mapStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func redditSource() Source {
	return Source{
		ID: "reddit", BaseQuality: 0.7, AuthorityScore: 0.6,
		SocialProof: SocialProof{EngagementRate: 0.85, ViralPotential: 0.9, AuthenticityScore: 0.8, SocialValidation: 0.85},
	}
}

func githubSource() Source {
	return Source{
		ID: "github", BaseQuality: 0.8, AuthorityScore: 0.95,
		SocialProof: SocialProof{EngagementRate: 0.7, ViralPotential: 0.6, AuthenticityScore: 0.95, SocialValidation: 0.8},
	}
}

func uniformSource(id string, v float64) Source {
	return Source{
		ID: id, BaseQuality: v, AuthorityScore: v,
		SocialProof: SocialProof{EngagementRate: v, ViralPotential: v, AuthenticityScore: v, SocialValidation: v},
	}
}

func float64Ptr(v float64) *float64 { return &v }
