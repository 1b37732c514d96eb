package synthesis

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Snapshot is an immutable view of the registry at one version.
type Snapshot struct {
	Version uint64
	sources []Source
	byID    map[string]int
}

// Sources returns deep copies of every entry, sorted by id.
func (s *Snapshot) Sources() []Source {
	out := make([]Source, len(s.sources))
	for i, src := range s.sources {
		out[i] = src.Clone()
	}
	return out
}

// Get returns a copy of the source with the given id.
func (s *Snapshot) Get(id string) (Source, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Source{}, false
	}
	return s.sources[i].Clone(), true
}

func (s *Snapshot) Len() int { return len(s.sources) }

// Registry is a copy-on-write catalog of sources. Readers never block;
// writers are serialized and publish a fresh snapshot atomically.
type Registry struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// NewRegistry builds a registry seeded with sources.
func NewRegistry(sources ...Source) (*Registry, error) {
	r := &Registry{}
	r.current.Store(&Snapshot{byID: map[string]int{}})
	if err := r.Replace(sources); err != nil {
		return nil, err
	}
	return r, nil
}

// Snapshot returns the current consistent view.
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Get looks up one source in the current snapshot.
func (r *Registry) Get(id string) (Source, error) {
	n, err := NormalizeSourceID(id)
	if err != nil {
		return Source{}, err
	}
	src, ok := r.Snapshot().Get(n)
	if !ok {
		return Source{}, fmt.Errorf("%w: %s", ErrSourceNotFound, n)
	}
	return src, nil
}

// Replace swaps the whole catalog. Score ranges are not checked here;
// out-of-range sources are excluded at selection time.
func (r *Registry) Replace(sources []Source) error {
	entries := make(map[string]Source, len(sources))
	for _, s := range sources {
		n, err := NormalizeSourceID(s.ID)
		if err != nil {
			return err
		}
		if _, dup := entries[n]; dup {
			return fmt.Errorf("%w: duplicate source id %q", ErrInvalidInput, n)
		}
		s.ID = n
		entries[n] = s.withDefaultWeights()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.publish(entries)
	return nil
}

// Upsert inserts or replaces a single source.
func (r *Registry) Upsert(s Source) error {
	n, err := NormalizeSourceID(s.ID)
	if err != nil {
		return err
	}
	s.ID = n

	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries()
	entries[n] = s.withDefaultWeights()
	r.publish(entries)
	return nil
}

// Remove deletes a source. Removing an unknown id is not an error.
func (r *Registry) Remove(id string) error {
	n, err := NormalizeSourceID(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries()
	if _, ok := entries[n]; !ok {
		return nil
	}
	delete(entries, n)
	r.publish(entries)
	return nil
}

// CredibilityUpdate is an externally computed correction to a source's scores.
// Nil fields are left unchanged.
type CredibilityUpdate struct {
	AuthorityScore *float64
	BaseQuality    *float64
}

// UpdateCredibility applies feedback to one source and returns the new entry.
func (r *Registry) UpdateCredibility(id string, upd CredibilityUpdate) (Source, error) {
	n, err := NormalizeSourceID(id)
	if err != nil {
		return Source{}, err
	}
	if upd.AuthorityScore != nil {
		if err := checkUnit(n, "authority_score", *upd.AuthorityScore); err != nil {
			return Source{}, err
		}
	}
	if upd.BaseQuality != nil {
		if err := checkUnit(n, "base_quality", *upd.BaseQuality); err != nil {
			return Source{}, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries()
	src, ok := entries[n]
	if !ok {
		return Source{}, fmt.Errorf("%w: %s", ErrSourceNotFound, n)
	}
	if upd.AuthorityScore != nil {
		src.AuthorityScore = *upd.AuthorityScore
	}
	if upd.BaseQuality != nil {
		src.BaseQuality = *upd.BaseQuality
	}
	entries[n] = src
	r.publish(entries)
	return src.Clone(), nil
}

// entries copies the current snapshot into a mutable map. Caller holds r.mu.
func (r *Registry) entries() map[string]Source {
	cur := r.current.Load()
	out := make(map[string]Source, len(cur.sources)+1)
	for _, s := range cur.sources {
		out[s.ID] = s.Clone()
	}
	return out
}

// publish stores a new snapshot built from entries. Caller holds r.mu.
func (r *Registry) publish(entries map[string]Source) {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	next := &Snapshot{
		sources: make([]Source, len(ids)),
		byID:    make(map[string]int, len(ids)),
	}
	if cur := r.current.Load(); cur != nil {
		next.Version = cur.Version + 1
	}
	for i, id := range ids {
		next.sources[i] = entries[id]
		next.byID[id] = i
	}
	r.current.Store(next)
}
