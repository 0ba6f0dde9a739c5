// Package cache provides the memoization layer for computed layouts and
// rendered artifacts.
//
// The geometry builder and limit solver are pure functions, so caching lives
// here at the collaborator boundary, keyed by the identity of their inputs:
// a dataset hash plus the layout options, or a layout hash plus the render
// options. Backends:
//
//   - FileCache: on-disk cache for CLI usage
//   - RedisCache: shared cache for server deployments
//   - NullCache: disables caching
package cache

import (
	"context"
	"time"
)

// TTLs for each cached stage. Layouts are cheap to recompute but datasets
// rarely change under a session, so both tiers keep entries for a week.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the interface for cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL (0 = no expiration).
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts captures every layout option that affects the computed
// result. Two runs with equal dataset hashes and equal opts produce identical
// layouts, so they may share a cache entry.
type LayoutKeyOpts struct {
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	ArcBudget int       `json:"arc_budget"`
	FixedX    []float64 `json:"fixed_x,omitempty"`
	FixedY    []float64 `json:"fixed_y,omitempty"`
}

// ArtifactKeyOpts captures every render option that affects artifact bytes.
type ArtifactKeyOpts struct {
	Format  string   `json:"format"`
	Title   string   `json:"title,omitempty"`
	Legend  bool     `json:"legend"`
	Scale   float64  `json:"scale,omitempty"`
	Palette []string `json:"palette,omitempty"`
	Theme   string   `json:"theme,omitempty"` // content hash of a custom theme, empty = default
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// LayoutKey generates a key for computed-layout caching.
	LayoutKey(datasetHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for rendered-artifact caching.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// LayoutKey generates a key for computed-layout caching.
func (k *DefaultKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", datasetHash, opts)
}

// ArtifactKey generates a key for rendered-artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
