package synthesis

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const sampleCatalog = `
sources:
  - id: GitHub
    name: GitHub
    base_quality: 0.8
    authority_score: 0.95
    social_proof:
      engagement_rate: 0.7
      viral_potential: 0.6
      authenticity_score: 0.95
      social_validation: 0.8
    context_weights:
      developer_insights: 1.5
  - id: reddit
    base_quality: 0.7
    authority_score: 0.6
    social_proof:
      engagement_rate: 0.85
      viral_potential: 0.9
      authenticity_score: 0.8
      social_validation: 0.85
`

func TestParseCatalog(t *testing.T) {
	sources, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "github", sources[0].ID)
	assert.Equal(t, "GitHub", sources[0].DisplayName)
	assert.Equal(t, 0.95, sources[0].SocialProof.AuthenticityScore)
	assert.Equal(t, 1.5, sources[0].ContextWeight(ContextDeveloperInsights))
	assert.Equal(t, 1.0, sources[1].ContextWeight(ContextDeveloperInsights))
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "sources: [unterminated"},
		{"unknown context", "sources:\n  - id: a\n    context_weights:\n      astrology: 1\n"},
		{"bad id", "sources:\n  - id: 'has space'\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCatalogWatcher_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"))

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))

	sources, err := LoadCatalog(path)
	require.NoError(t, err)
	reg, err := NewRegistry(sources...)
	require.NoError(t, err)

	w, err := NewCatalogWatcher(path, reg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	updated := "sources:\n  - id: hackernews\n    base_quality: 0.85\n    authority_score: 0.85\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case <-w.Reloaded():
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}

	// A single write can arrive as several events; wait for the final content.
	require.Eventually(t, func() bool {
		_, err := reg.Get("hackernews")
		return err == nil && reg.Snapshot().Len() == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestCatalogWatcher_KeepsRegistryOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))

	reg, err := NewRegistry(DefaultCatalog()...)
	require.NoError(t, err)
	w, err := NewCatalogWatcher(path, reg, nil)
	require.NoError(t, err)
	defer w.watcher.Close()

	version := reg.Snapshot().Version
	require.NoError(t, os.WriteFile(path, []byte("sources: [broken"), 0o644))
	w.reload()

	assert.Equal(t, version, reg.Snapshot().Version)
	assert.Equal(t, len(DefaultCatalog()), reg.Snapshot().Len())
}
