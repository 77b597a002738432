package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gzip compresses tail pools and snapshot payloads with klauspost/compress's
// gzip implementation, a drop-in for compress/gzip with a faster encoder.
type Gzip struct{}

// Compress appends the gzip-compressed form of src to dst.
func (Gzip) Compress(dst []byte, src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return append(dst, buf.Bytes()...), nil
}

// Decompress appends the decompressed form of src to dst.
func (Gzip) Decompress(dst []byte, src []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return append(dst, out...), nil
}

// Name returns the unique name of the compressor ("gzip").
func (Gzip) Name() string { return "gzip" }
