// Package ux implements a succinct string dictionary: a LOUDS-encoded
// trie over a sorted, deduplicated set of byte-string keys, paired
// with terminal/tail bit vectors and an optional nested dictionary of
// reversed tail suffixes. Keys are opaque byte strings; matching is
// exact byte comparison, never Unicode-aware.
//
// Once built or loaded, a Dictionary is immutable and safe for
// concurrent read access from multiple goroutines. There is no
// mutation API: to add or remove keys, build a new Dictionary.
package ux

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/succinctgo/uxdict/codec"
	"github.com/succinctgo/uxdict/internal/bitvector"
	"github.com/succinctgo/uxdict/internal/cache"
	"github.com/succinctgo/uxdict/internal/louds"
	"github.com/succinctgo/uxdict/internal/packedints"
	"github.com/succinctgo/uxdict/persistence"
	"github.com/succinctgo/uxdict/tail"
)

// navigator is the trie-walking surface Dictionary needs from
// internal/louds. Both louds.Navigator and its caching variant,
// louds.CachedNavigator, satisfy it.
type navigator interface {
	GetChild(c byte, pos, zeros int) (int, int)
	GetParent(pos, zeros int) (parentPos, parentZeros int, label byte, atRoot bool)
}

// Dictionary is a read-only succinct string dictionary. The zero
// value is not usable; construct one with Build, BuildSorted, or
// Load.
type Dictionary struct {
	loud     *bitvector.BitVector
	terminal *bitvector.BitVector
	tailBV   *bitvector.BitVector
	edges    []byte
	nav      navigator

	tails  *tail.Pool
	nested *Dictionary // non-nil iff tails.IsNested(); owned exclusively

	keyNum int
	ready  bool

	// codec and compressor record the options a snapshot was built or
	// loaded with, so a caller assembling a persistence.Manager for a
	// reload/rebuild cycle (see cmd/uxbuild, cmd/uxquery) can reuse the
	// same manifest codec without threading it through separately.
	codec      codec.Codec
	compressor codec.Compressor

	logger *Logger
}

// Codec returns the codec this dictionary was built or loaded with,
// used for the manifest sidecar a caller writes alongside a snapshot.
func (d *Dictionary) Codec() codec.Codec { return d.codec }

// Compressor returns the compressor, if any, that this dictionary's
// flat tail bytes are stored under.
func (d *Dictionary) Compressor() codec.Compressor { return d.compressor }

// Manifest summarizes a dictionary's shape for a snapshot's sidecar
// metadata file. Unlike the binary snapshot itself, the manifest is
// meant to be inspected without loading the whole dictionary.
type Manifest struct {
	KeyNum     int    `json:"key_num"`
	NodeNum    int    `json:"node_num"`
	TailMode   string `json:"tail_mode"`
	Compressor string `json:"compressor,omitempty"`
	AllocSize  int    `json:"alloc_size"`
}

// Manifest builds a Manifest describing d's current shape.
func (d *Dictionary) Manifest() Manifest {
	tailMode := "flat"
	if d.tails.IsNested() {
		tailMode = "nested"
	}
	compressorName := ""
	if d.compressor != nil {
		compressorName = d.compressor.Name()
	}
	return Manifest{
		KeyNum:     d.keyNum,
		NodeNum:    d.terminal.Size(),
		TailMode:   tailMode,
		Compressor: compressorName,
		AllocSize:  d.AllocSize(),
	}
}

// GetKeyNum returns the number of distinct keys the dictionary holds.
func (d *Dictionary) GetKeyNum() int {
	if d == nil {
		return 0
	}
	return d.keyNum
}

// Ready reports whether the dictionary has finished building or
// loading and is safe to query.
func (d *Dictionary) Ready() bool {
	return d != nil && d.ready
}

// AllocSize approximates the number of bytes retained by the
// dictionary, following ux.cpp's getAllocSize accounting: the three
// bit vectors (topology, terminal, tail), the edge array, and either the flat
// tail bytes or the nested dictionary's own footprint plus the packed
// tail-ID vector.
func (d *Dictionary) AllocSize() int {
	if !d.Ready() {
		return 0
	}
	nestedSize := 0
	if d.nested != nil {
		nestedSize = d.nested.AllocSize()
	}
	return d.loud.AllocSize() + d.terminal.AllocSize() + d.tailBV.AllocSize() +
		len(d.edges) + d.tails.AllocSize(nestedSize)
}

// Save writes the dictionary's binary snapshot: a FileHeader (magic,
// version, tail mode, key/node counts, CRC32 checksum) followed by
// the section-by-section format from the file-format spec — the
// topology/terminal/tail bit vectors, the packed tail-ID vector, the
// key count, the edge array, and either the flat tail list or a
// recursively serialized nested dictionary.
//
// The checksum covers everything after the header, so the sections
// are rendered to a buffer first and the header written once their
// combined size and checksum are known.
func (d *Dictionary) Save(w io.Writer) error {
	if !d.Ready() {
		return ErrNotReady
	}

	var buf bytes.Buffer
	if err := d.saveSections(&buf); err != nil {
		d.logger.LogSave(context.Background(), "", err)
		return fmt.Errorf("uxdict: save: %w", err)
	}

	tailMode := uint8(persistence.TailModeFlat)
	if d.tails.IsNested() {
		tailMode = persistence.TailModeNested
	}

	var compressorID uint8
	if d.compressor != nil {
		compressorID = persistence.CompressorIDByName(d.compressor.Name())
	}

	header := &persistence.FileHeader{
		TailMode:     tailMode,
		KeyNum:       uint64(d.keyNum),
		NodeNum:      uint64(d.terminal.Size()),
		Checksum:     persistence.CalculateChecksum(buf.Bytes()),
		CompressorID: compressorID,
	}
	bw := persistence.NewBinaryIndexWriter(w)
	if err := bw.WriteHeader(header); err != nil {
		d.logger.LogSave(context.Background(), "", err)
		return fmt.Errorf("uxdict: write header: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		d.logger.LogSave(context.Background(), "", err)
		return fmt.Errorf("uxdict: write sections: %w", err)
	}
	d.logger.LogSave(context.Background(), "", nil)
	return nil
}

// saveSections writes the recursive section format without a
// FileHeader — used both for the outer Save call's buffered body and
// for a nested tail dictionary embedded inline in its parent's
// stream, matching original_source's UX::save recursion.
func (d *Dictionary) saveSections(w io.Writer) error {
	if err := d.loud.Save(w); err != nil {
		return err
	}
	if err := d.terminal.Save(w); err != nil {
		return err
	}
	if err := d.tailBV.Save(w); err != nil {
		return err
	}
	if err := d.tailIDsOrEmpty().Save(w); err != nil {
		return err
	}

	bw := persistence.NewBinaryIndexWriter(w)
	if err := bw.WriteUint64(uint64(d.keyNum)); err != nil {
		return err
	}
	if err := bw.WriteBytes(d.edges); err != nil {
		return err
	}

	useUX := uint32(0)
	if d.tails.IsNested() {
		useUX = 1
	}
	if err := bw.WriteUint32(useUX); err != nil {
		return err
	}

	if d.tails.IsNested() {
		return d.nested.saveSections(w)
	}

	flat := d.tails.Flat()
	if err := bw.WriteUint64(uint64(len(flat))); err != nil {
		return err
	}
	if d.compressor == nil {
		for _, t := range flat {
			if err := bw.WriteBytes(t); err != nil {
				return err
			}
		}
		return nil
	}

	// With a compressor configured, the flat tail bytes are laid out
	// into one buffer (length-prefixed per spec.md's byte format) and
	// compressed as a single blob, rather than each tail individually,
	// so the compressor sees cross-tail redundancy.
	var raw bytes.Buffer
	rw := persistence.NewBinaryIndexWriter(&raw)
	for _, t := range flat {
		if err := rw.WriteBytes(t); err != nil {
			return err
		}
	}
	compressed, err := d.compressor.Compress(nil, raw.Bytes())
	if err != nil {
		return fmt.Errorf("uxdict: compress tails: %w", err)
	}
	return bw.WriteBytes(compressed)
}

func (d *Dictionary) tailIDsOrEmpty() *packedints.Vector {
	if d.tails.IsNested() {
		return d.tails.PackedIDs()
	}
	return packedints.New(1)
}

// LoadMmap opens path, memory-maps it read-only and decodes it with
// Load from the mapped bytes. Load copies every section into heap
// memory, so the returned Dictionary holds no reference to the mapping
// and stays valid after the returned closer, which unmaps the file, is
// closed. Unlike a Dictionary from Load, the result memoizes GetChild
// lookups and, in nested tail mode, tail decodes in LRU caches.
func LoadMmap(ctx context.Context, path string, optFns ...Option) (*Dictionary, io.Closer, error) {
	mf, err := persistence.MmapReadOnly(path)
	if err != nil {
		return nil, nil, translateError(fmt.Errorf("uxdict: mmap %s: %w", path, err))
	}
	d, err := Load(ctx, bytes.NewReader(mf.Bytes()), optFns...)
	if err != nil {
		_ = mf.Close()
		return nil, nil, err
	}

	// Memoize GetChild lookups, and nested tail decodes, in 4 MiB LRU
	// caches; Load itself installs neither.
	topologyCache := cache.NewLRUBlockCache(4<<20, nil)
	d.nav = louds.NewCached(d.loud, d.edges, topologyCache, 0)
	if d.tails.IsNested() {
		d.tails = d.tails.WithCache(cache.NewLRUBlockCache(4<<20, nil), 0)
	}
	return d, mf, nil
}

// Load reads a dictionary snapshot previously written by Save.
func Load(ctx context.Context, r io.Reader, optFns ...Option) (*Dictionary, error) {
	o := applyOptions(optFns)

	br := persistence.NewBinaryIndexReader(r)
	header, err := br.ReadHeader()
	if err != nil {
		return nil, translateError(fmt.Errorf("uxdict: read header: %w", err))
	}

	var compressor codec.Compressor
	if name := persistence.CompressorNameByID(header.CompressorID); name != "" {
		compressor, _ = codec.CompressorByName(name)
	}

	cr := persistence.NewChecksumReader(r)
	d, err := loadSections(cr, compressor)
	if err != nil {
		o.logger.LogLoad(ctx, "", 0, err)
		return nil, translateError(fmt.Errorf("uxdict: load: %w", err))
	}
	if err := cr.Verify(header.Checksum); err != nil {
		o.logger.LogLoad(ctx, "", 0, err)
		return nil, translateError(err)
	}
	if uint64(d.keyNum) != header.KeyNum {
		err := &ErrCorruptSnapshot{Reason: "key count mismatch between header and sections"}
		o.logger.LogLoad(ctx, "", 0, err)
		return nil, err
	}

	d.logger = o.logger
	d.codec = o.codec

	o.logger.LogLoad(ctx, "", d.keyNum, nil)
	return d, nil
}

func loadSections(r io.Reader, compressor codec.Compressor) (*Dictionary, error) {
	loud, err := bitvector.Load(r)
	if err != nil {
		return nil, fmt.Errorf("loud: %w", err)
	}
	terminalBV, err := bitvector.Load(r)
	if err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	tailBV, err := bitvector.Load(r)
	if err != nil {
		return nil, fmt.Errorf("tail: %w", err)
	}
	tailIDs, err := packedints.Load(r)
	if err != nil {
		return nil, fmt.Errorf("tailIDs: %w", err)
	}

	br := persistence.NewBinaryIndexReader(r)
	keyNum, err := br.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("keyNum: %w", err)
	}
	edges, err := br.ReadBytes()
	if err != nil {
		return nil, fmt.Errorf("edges: %w", err)
	}
	useUX, err := br.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("useUX: %w", err)
	}

	d := &Dictionary{
		loud:       loud,
		terminal:   terminalBV,
		tailBV:     tailBV,
		edges:      edges,
		nav:        louds.New(loud, edges),
		keyNum:     int(keyNum),
		ready:      true,
		compressor: compressor,
		logger:     NoopLogger(),
	}

	if useUX != 0 {
		nested, err := loadSections(r, compressor)
		if err != nil {
			return nil, fmt.Errorf("nested: %w", err)
		}
		d.nested = nested
		d.tails = tail.NewNested(nested, tailIDs, tailIDs.Width(), nested.keyNum)
		return d, nil
	}

	tailsNum, err := br.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("tailsNum: %w", err)
	}
	if compressor != nil {
		compressed, err := br.ReadBytes()
		if err != nil {
			return nil, fmt.Errorf("compressed tails: %w", err)
		}
		raw, err := compressor.Decompress(nil, compressed)
		if err != nil {
			return nil, fmt.Errorf("decompress tails: %w", err)
		}
		rr := persistence.NewBinaryIndexReader(bytes.NewReader(raw))
		flat := make([][]byte, tailsNum)
		for i := range flat {
			t, err := rr.ReadBytes()
			if err != nil {
				return nil, fmt.Errorf("tail[%d]: %w", i, err)
			}
			flat[i] = t
		}
		d.tails = tail.NewFlat(flat)
		return d, nil
	}

	flat := make([][]byte, tailsNum)
	for i := range flat {
		t, err := br.ReadBytes()
		if err != nil {
			return nil, fmt.Errorf("tail[%d]: %w", i, err)
		}
		flat[i] = t
	}
	d.tails = tail.NewFlat(flat)
	return d, nil
}
