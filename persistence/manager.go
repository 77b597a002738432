// Package persistence provides unified persistence management for a
// dictionary's binary snapshots.
//
// A dictionary is immutable once built: there is no WAL and nothing to
// replay. The Manager's job is narrower than in a mutable store — it just
// has to make "write a new snapshot" and "swap to it" atomic, so a query
// server can rebuild and hot-reload without ever serving a half-written
// file.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/succinctgo/uxdict/codec"
)

var (
	// ErrManagerClosed is returned when operations are attempted on a closed manager.
	ErrManagerClosed = errors.New("persistence manager is closed")

	// ErrNoSnapshotPath is returned when snapshot operations require a path but none is set.
	ErrNoSnapshotPath = errors.New("snapshot path not configured")
)

// Snapshotable represents a component that can be saved to a snapshot.
type Snapshotable interface {
	// Save writes the component state to w.
	// The context allows cancellation of long-running snapshot operations.
	Save(ctx context.Context, w io.Writer) error
}

// SnapshotLoader can load state from a snapshot file.
type SnapshotLoader interface {
	// LoadSnapshot loads state from the given file path.
	// The context allows cancellation of long-running load operations.
	LoadSnapshot(ctx context.Context, path string) error
}

// ManagerOptions configures the persistence manager.
type ManagerOptions struct {
	// SnapshotPath is the path for snapshot files (optional).
	SnapshotPath string

	// Codec is used for serializing the snapshot manifest sidecar.
	Codec codec.Codec
}

// Manager coordinates atomic snapshot creation and reload for a dictionary
// build pipeline. It is thread-safe and can be used concurrently.
type Manager struct {
	snapshotPath string
	codec        codec.Codec

	mu     sync.RWMutex
	closed bool
}

// NewManager creates a new persistence manager with the given options.
func NewManager(opts ManagerOptions) (*Manager, error) {
	pm := &Manager{
		snapshotPath: opts.SnapshotPath,
		codec:        opts.Codec,
	}
	if pm.codec == nil {
		pm.codec = codec.Default
	}
	return pm, nil
}

// SnapshotPath returns the configured snapshot path.
func (pm *Manager) SnapshotPath() string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.snapshotPath
}

// SetSnapshotPath updates the snapshot path.
func (pm *Manager) SetSnapshotPath(path string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.snapshotPath = path
}

// Codec returns the configured manifest codec.
func (pm *Manager) Codec() codec.Codec {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.codec
}

// Snapshot saves state atomically to the configured snapshot path: written
// to a temporary file first, then renamed into place, so a concurrent
// reader (or the process crashing mid-write) never observes a partial file.
func (pm *Manager) Snapshot(ctx context.Context, writeFunc func(ctx context.Context, w io.Writer) error) error {
	pm.mu.RLock()
	if pm.closed {
		pm.mu.RUnlock()
		return ErrManagerClosed
	}
	snapshotPath := pm.snapshotPath
	pm.mu.RUnlock()

	if snapshotPath == "" {
		return ErrNoSnapshotPath
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := SaveToFile(snapshotPath, func(w io.Writer) error {
		return writeFunc(ctx, w)
	}); err != nil {
		return fmt.Errorf("persistence: snapshot failed: %w", err)
	}
	return nil
}

// SnapshotToPath saves state to a specific path (not the default snapshotPath).
// This is useful for creating named snapshots or backups.
func (pm *Manager) SnapshotToPath(ctx context.Context, path string, writeFunc func(ctx context.Context, w io.Writer) error) error {
	pm.mu.RLock()
	if pm.closed {
		pm.mu.RUnlock()
		return ErrManagerClosed
	}
	pm.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := SaveToFile(path, func(w io.Writer) error {
		return writeFunc(ctx, w)
	}); err != nil {
		return fmt.Errorf("persistence: snapshot to %s failed: %w", path, err)
	}
	return nil
}

// Recover loads state from the configured snapshot path, if one exists.
// A missing snapshot is not an error: the caller starts from an empty
// dictionary and builds one.
func (pm *Manager) Recover(ctx context.Context, loader SnapshotLoader) error {
	pm.mu.RLock()
	if pm.closed {
		pm.mu.RUnlock()
		return ErrManagerClosed
	}
	snapshotPath := pm.snapshotPath
	pm.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if snapshotPath == "" {
		return nil
	}
	if _, err := os.Stat(snapshotPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("persistence: failed to check snapshot: %w", err)
	}
	if err := loader.LoadSnapshot(ctx, snapshotPath); err != nil {
		return fmt.Errorf("persistence: snapshot load failed: %w", err)
	}
	return nil
}

// RecoverFromPath loads a snapshot from a specific path (ignoring snapshotPath).
func (pm *Manager) RecoverFromPath(ctx context.Context, path string, loader SnapshotLoader) error {
	pm.mu.RLock()
	if pm.closed {
		pm.mu.RUnlock()
		return ErrManagerClosed
	}
	pm.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("persistence: snapshot not found at %s: %w", path, err)
	}
	if err := loader.LoadSnapshot(ctx, path); err != nil {
		return fmt.Errorf("persistence: snapshot load from %s failed: %w", path, err)
	}
	return nil
}

// Close shuts down the persistence manager.
func (pm *Manager) Close() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.closed = true
	return nil
}

// AtomicSaveToDir saves multiple files atomically to a directory.
// All files are written to temp files first, then renamed into place
// one after another. A failed write leaves every target untouched; a
// failed rename leaves the targets renamed before it already replaced.
//
// Usage:
//
//	err := AtomicSaveToDir("/path/to/index", map[string]func(io.Writer) error{
//	    "dict.bin":     func(w io.Writer) error { return writeDict(w) },
//	    "manifest.json": func(w io.Writer) error { return writeManifest(w) },
//	})
func AtomicSaveToDir(dir string, files map[string]func(io.Writer) error) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("persistence: failed to create directory %s: %w", dir, err)
	}

	tempFiles := make([]string, 0, len(files))
	defer func() {
		for _, tmp := range tempFiles {
			_ = os.Remove(tmp)
		}
	}()

	type fileMapping struct {
		temp   string
		target string
	}
	mappings := make([]fileMapping, 0, len(files))

	for filename, writeFunc := range files {
		target := filepath.Join(dir, filename)

		tmp, err := os.CreateTemp(dir, filename+".tmp-*")
		if err != nil {
			return fmt.Errorf("persistence: failed to create temp file for %s: %w", filename, err)
		}
		tempFiles = append(tempFiles, tmp.Name())

		if err := writeFunc(tmp); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("persistence: failed to write %s: %w", filename, err)
		}
		if err := tmp.Sync(); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("persistence: failed to sync %s: %w", filename, err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("persistence: failed to close %s: %w", filename, err)
		}

		mappings = append(mappings, fileMapping{temp: tmp.Name(), target: target})
	}

	for _, m := range mappings {
		if err := os.Rename(m.temp, m.target); err != nil {
			return fmt.Errorf("persistence: failed to rename %s: %w", m.target, err)
		}
	}
	tempFiles = nil

	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
