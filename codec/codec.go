// Package codec centralizes payload encoding for dictionary snapshots.
//
// uxdict treats codec selection as a breaking-change boundary: if you change
// codecs, persisted bytes created by older codecs may no longer decode.
package codec

import "fmt"

// Codec encodes/decodes metadata values (manifest headers, build stats).
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in metadata codec by its stable name.
//
// This is used for self-describing persistence formats (manifests) that
// store the codec name alongside the encoded bytes.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

// Default is the metadata codec used by the library unless overridden.
var Default Codec = JSON{}

// Compressor compresses/decompresses the tail pool and snapshot payloads.
// Implementations must be safe for concurrent use.
type Compressor interface {
	Compress(dst []byte, src []byte) ([]byte, error)
	Decompress(dst []byte, src []byte) ([]byte, error)
	Name() string
}

// CompressorByName returns a built-in compressor by its stable name, or
// (nil, false) for "none"/unknown names — callers should treat that as
// "store the payload uncompressed".
func CompressorByName(name string) (Compressor, bool) {
	switch name {
	case "gzip":
		return Gzip{}, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}
