package synthesis

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_NormalizesAndSortsIDs(t *testing.T) {
	r, err := NewRegistry(uniformSource(" Reddit ", 0.5), uniformSource("GitHub", 0.5))
	require.NoError(t, err)

	snap := r.Snapshot()
	require.Equal(t, 2, snap.Len())
	ids := []string{}
	for _, s := range snap.Sources() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"github", "reddit"}, ids)

	src, err := r.Get("REDDIT")
	require.NoError(t, err)
	assert.Equal(t, 1.0, src.ContextWeight(ContextTechnicalTrends))
	assert.Len(t, src.ContextWeights, len(AllContexts()))
}

func TestRegistry_RejectsDuplicatesAndBadIDs(t *testing.T) {
	_, err := NewRegistry(uniformSource("a", 0.5), uniformSource("A", 0.5))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewRegistry(uniformSource("has space", 0.5))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegistry_SnapshotsAreImmutable(t *testing.T) {
	r, err := NewRegistry(githubSource())
	require.NoError(t, err)

	before := r.Snapshot()
	require.NoError(t, r.Upsert(redditSource()))
	after := r.Snapshot()

	assert.Equal(t, 1, before.Len())
	assert.Equal(t, 2, after.Len())
	assert.Equal(t, before.Version+1, after.Version)

	leaked := after.Sources()
	leaked[0].ContextWeights[ContextTechnicalTrends] = 0
	again, _ := r.Snapshot().Get(leaked[0].ID)
	assert.Equal(t, 1.0, again.ContextWeight(ContextTechnicalTrends))
}

func TestRegistry_UpdateCredibility(t *testing.T) {
	r, err := NewRegistry(githubSource())
	require.NoError(t, err)
	v := r.Snapshot().Version

	updated, err := r.UpdateCredibility("github", CredibilityUpdate{AuthorityScore: float64Ptr(0.5)})
	require.NoError(t, err)
	assert.Equal(t, 0.5, updated.AuthorityScore)
	assert.Equal(t, 0.8, updated.BaseQuality)
	assert.Equal(t, v+1, r.Snapshot().Version)

	_, err = r.UpdateCredibility("github", CredibilityUpdate{BaseQuality: float64Ptr(2)})
	assert.ErrorIs(t, err, ErrInvalidSource)
	assert.Equal(t, v+1, r.Snapshot().Version)

	_, err = r.UpdateCredibility("missing", CredibilityUpdate{AuthorityScore: float64Ptr(0.5)})
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestRegistry_Remove(t *testing.T) {
	r, err := NewRegistry(githubSource(), redditSource())
	require.NoError(t, err)

	require.NoError(t, r.Remove("reddit"))
	_, err = r.Get("reddit")
	assert.ErrorIs(t, err, ErrSourceNotFound)

	v := r.Snapshot().Version
	require.NoError(t, r.Remove("reddit"))
	assert.Equal(t, v, r.Snapshot().Version)
}

func TestRegistry_ConcurrentReadersSeeWholeSources(t *testing.T) {
	r, err := NewRegistry(uniformSource("s", 0.2))
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			v := 0.2
			if i%2 == 0 {
				v = 0.8
			}
			_ = r.Upsert(uniformSource("s", v))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			src, ok := r.Snapshot().Get("s")
			if !assert.True(t, ok) {
				return
			}
			assert.Equal(t, src.BaseQuality, src.AuthorityScore)
			assert.Equal(t, src.BaseQuality, src.SocialProof.EngagementRate)
		}
	}()
	wg.Wait()
}
