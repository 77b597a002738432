package persistence

import (
	"fmt"

	"github.com/succinctgo/uxdict/internal/mmap"
)

// MappedFile is a memory-mapped dictionary snapshot.
//
// The returned Bytes() slice aliases the mapped file region; any slice
// taken as a view into it becomes invalid after Close.
type MappedFile struct {
	m *mmap.Mapping
}

// Bytes returns the mapped file contents.
func (f *MappedFile) Bytes() []byte {
	if f == nil || f.m == nil {
		return nil
	}
	return f.m.Bytes()
}

// Close unmaps the file.
func (f *MappedFile) Close() error {
	if f == nil || f.m == nil {
		return nil
	}
	return f.m.Close()
}

// MmapReadOnly opens path and memory-maps it as read-only, advising the
// kernel to expect sequential access: loaders read the header, then the
// LOUDS/terminal/tail sections in file order.
func MmapReadOnly(path string) (*MappedFile, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	if m.Size() == 0 {
		_ = m.Close()
		return nil, fmt.Errorf("mmap: empty file")
	}
	_ = m.Advise(mmap.AccessSequential)
	return &MappedFile{m: m}, nil
}
