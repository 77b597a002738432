package cache

import (
	"context"
)

// SegmentID identifies which loaded dictionary a cache entry belongs to,
// letting one process-wide block cache serve many dictionaries (e.g. a
// registry holding several named snapshots) without key collisions.
type SegmentID uint64

// CacheKind is used to separate key spaces and tuning.
type CacheKind uint8

const (
	CacheKindUnknown  CacheKind = iota
	CacheKindTopology           // memoized LOUDS child-edge lookups over a mapped snapshot
	CacheKindTailPool           // decoded nested-tail lookups
	CacheKindBlob               // generic blob store blocks (whole-file or ranged reads)
)

// CacheKey must be stable across processes and snapshot-safe.
type CacheKey struct {
	Kind      CacheKind
	SegmentID SegmentID
	// Offset is a logical block identifier (e.g., byte offset / block index / tail id).
	Offset uint64
	// Path is optional; if provided, it identifies the source (e.g. filename).
	// Used by generic blob caching when SegmentID is not known or sufficient.
	Path string
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	// Set caches a block. Implementations may copy or retain; caller must treat b as immutable.
	Set(ctx context.Context, key CacheKey, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key CacheKey) bool)
	// Close releases any resources (e.g. background workers).
	Close() error
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
}

// AdmissionPolicy decides whether a value should be cached.
// Start simple (e.g., “cache on second hit” or size-based).
type AdmissionPolicy interface {
	Admit(key CacheKey, sizeBytes int) bool
}
