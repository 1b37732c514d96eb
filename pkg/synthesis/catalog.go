package synthesis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"source-intel-be/internal/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Sources []catalogEntry `yaml:"sources"`
}

type catalogEntry struct {
	ID             string             `yaml:"id"`
	Name           string             `yaml:"name"`
	BaseQuality    float64            `yaml:"base_quality"`
	AuthorityScore float64            `yaml:"authority_score"`
	SocialProof    SocialProof        `yaml:"social_proof"`
	ContextWeights map[string]float64 `yaml:"context_weights"`
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) ([]Source, error) {
	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %v", ErrInvalidInput, err)
	}

	sources := make([]Source, 0, len(doc.Sources))
	for i, e := range doc.Sources {
		id, err := NormalizeSourceID(e.ID)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		src := Source{
			ID:             id,
			DisplayName:    e.Name,
			BaseQuality:    e.BaseQuality,
			AuthorityScore: e.AuthorityScore,
			SocialProof:    e.SocialProof,
			ContextWeights: make(map[QueryContext]float64, len(e.ContextWeights)),
		}
		for name, w := range e.ContextWeights {
			qc, err := ParseQueryContext(name)
			if err != nil {
				return nil, fmt.Errorf("catalog entry %q: %w", id, err)
			}
			src.ContextWeights[qc] = w
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// LoadCatalog reads and parses a catalog file.
func LoadCatalog(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// CatalogWatcher reloads the registry whenever the catalog file changes.
type CatalogWatcher struct {
	path     string
	registry *Registry
	watcher  *fsnotify.Watcher
	logger   logger.ILogger
	reloaded chan uint64
}

// NewCatalogWatcher watches the directory holding path so editors that
// replace the file through a rename are still picked up.
func NewCatalogWatcher(path string, registry *Registry, log logger.ILogger) (*CatalogWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CatalogWatcher{
		path:     abs,
		registry: registry,
		watcher:  w,
		logger:   log,
		reloaded: make(chan uint64, 1),
	}, nil
}

// Reloaded delivers the registry version after each successful reload.
// Only the latest version is kept if nobody is reading.
func (w *CatalogWatcher) Reloaded() <-chan uint64 {
	return w.reloaded
}

// Run processes file events until ctx is cancelled, then closes the watcher.
func (w *CatalogWatcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("CATALOG", "Watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (w *CatalogWatcher) reload() {
	sources, err := LoadCatalog(w.path)
	if err != nil {
		w.logger.Error("CATALOG", "Catalog reload failed, keeping previous registry", map[string]interface{}{
			"path":  w.path,
			"error": err.Error(),
		})
		return
	}
	if err := w.registry.Replace(sources); err != nil {
		w.logger.Error("CATALOG", "Catalog rejected, keeping previous registry", map[string]interface{}{
			"path":  w.path,
			"error": err.Error(),
		})
		return
	}

	version := w.registry.Snapshot().Version
	w.logger.Info("CATALOG", "Catalog reloaded", map[string]interface{}{
		"path":    w.path,
		"sources": len(sources),
		"version": version,
	})
	select {
	case <-w.reloaded:
	default:
	}
	select {
	case w.reloaded <- version:
	default:
	}
}
