// FILE: pkg/synthesis/classifier.go
// PURPOSE: Lexical query-context classification with a bounded TTL cache

package synthesis

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// MinConfidence is the floor reported for any classification.
const MinConfidence = 0.3

// Classification is the dominant context of a query.
type Classification struct {
	Context    QueryContext `json:"context"`
	Confidence float64      `json:"confidence"`
	Matches    int          `json:"matches"`
}

// Classifier maps free text to a QueryContext. It is safe for concurrent use.
type Classifier struct {
	keywords [contextCount][]string
	cacheTTL time.Duration
	cache    *shardedCache
}

type ClassifierOption func(*Classifier)

// WithKeywords replaces the trigger table. Contexts missing from m get no keywords.
func WithKeywords(m map[QueryContext][]string) ClassifierOption {
	return func(c *Classifier) {
		c.keywords = [contextCount][]string{}
		for ctx, words := range m {
			if !ctx.Valid() {
				continue
			}
			for _, w := range words {
				if w = strings.ToLower(w); strings.TrimSpace(w) != "" {
					c.keywords[ctx] = append(c.keywords[ctx], w)
				}
			}
		}
	}
}

// WithCacheTTL sets the result cache lifetime; zero disables caching.
func WithCacheTTL(ttl time.Duration) ClassifierOption {
	return func(c *Classifier) { c.cacheTTL = ttl }
}

func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{cacheTTL: 5 * time.Minute}
	WithKeywords(DefaultKeywords())(c)
	for _, opt := range opts {
		opt(c)
	}
	c.cache = newShardedCache(defaultCacheShards, c.cacheTTL)
	return c
}

// Classify returns the dominant context for query.
// Ties on match count go to the context declared first in QueryContext.
func (c *Classifier) Classify(query string) (Classification, error) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return Classification{}, fmt.Errorf("%w: query is empty", ErrInvalidInput)
	}

	key := queryDigest(normalized)
	if v, ok := c.cache.Get(key); ok {
		return v.(Classification), nil
	}

	result := c.classify(normalized)
	c.cache.Set(key, result)
	return result, nil
}

func (c *Classifier) classify(normalized string) Classification {
	// Pad so keywords with surrounding spaces (" vs ") also match at the edges.
	text := " " + normalized + " "

	best := ContextGeneralExploration
	bestMatches := 0
	for _, ctx := range AllContexts() {
		n := 0
		for _, kw := range c.keywords[ctx] {
			if strings.Contains(text, kw) {
				n++
			}
		}
		if n > bestMatches {
			best, bestMatches = ctx, n
		}
	}

	confidence := MinConfidence
	if bestMatches > 0 {
		total := len(c.keywords[best])
		if total < 1 {
			total = 1
		}
		confidence = clamp(float64(bestMatches)/float64(total), MinConfidence, 1)
	}

	return Classification{Context: best, Confidence: confidence, Matches: bestMatches}
}

// CachedEntries reports how many classifications are currently cached.
func (c *Classifier) CachedEntries() int {
	return c.cache.Len()
}

func queryDigest(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
