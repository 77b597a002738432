// Command uxbuild reads a newline-delimited text file of keys and
// writes a succinct dictionary snapshot in the uxdict binary format.
package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/succinctgo/uxdict"
	"github.com/succinctgo/uxdict/blobstore"
	"github.com/succinctgo/uxdict/codec"
	"github.com/succinctgo/uxdict/persistence"
	"github.com/succinctgo/uxdict/resource"
)

func main() {
	var (
		in        = flag.String("in", "", "path to a newline-delimited text file of keys (required)")
		out       = flag.String("out", "", "output path for the dictionary snapshot, or - for stdout (required)")
		nested    = flag.Bool("nested", false, "use a nested dictionary-of-reversed-tails tail store instead of flat")
		memBudget = flag.Int64("mem-budget-bytes", 0, "if >0, degrade to a flat tail store when the nested build would exceed this many bytes")
		ioLimit   = flag.Int64("io-limit-bytes-per-sec", 0, "if >0, throttle the write of the output snapshot to this many bytes/sec")
	)
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	keys, err := readKeys(*in)
	if err != nil {
		log.Fatalf("uxbuild: read keys: %v", err)
	}

	ctx := context.Background()
	opts := []ux.Option{ux.WithTailCompression(*nested)}
	if *memBudget > 0 {
		opts = append(opts, ux.WithMemoryBudget(*memBudget))
	}

	d, err := ux.BuildSorted(ctx, keys, opts...)
	if err != nil {
		log.Fatalf("uxbuild: build: %v", err)
	}
	log.Printf("uxbuild: built dictionary with %d keys, %d bytes", d.GetKeyNum(), d.AllocSize())

	var rc *resource.Controller
	if *ioLimit > 0 {
		rc = resource.NewController(resource.Config{IOLimitBytesPerSec: *ioLimit})
	}
	if err := save(ctx, d, *out, rc); err != nil {
		log.Fatalf("uxbuild: save: %v", err)
	}
}

func readKeys(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var keys [][]byte
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		keys = append(keys, []byte(line))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.Slice(keys, func(i, j int) bool {
		return string(keys[i]) < string(keys[j])
	})
	return dedupe(keys), nil
}

func dedupe(keys [][]byte) [][]byte {
	if len(keys) == 0 {
		return keys
	}
	out := keys[:1]
	for _, k := range keys[1:] {
		if string(k) != string(out[len(out)-1]) {
			out = append(out, k)
		}
	}
	return out
}

func save(ctx context.Context, d *ux.Dictionary, out string, rc *resource.Controller) error {
	if out == "-" {
		return d.Save(os.Stdout)
	}

	store := blobstore.NewLocalStore(filepath.Dir(out))
	w, err := store.Create(ctx, filepath.Base(out))
	if err != nil {
		return err
	}

	var dst io.Writer = w
	if rc != nil {
		dst = resource.NewRateLimitedWriter(w, rc, ctx)
	}

	if err := d.Save(dst); err != nil {
		w.Close()
		return err
	}
	if err := w.Sync(); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return saveManifest(d, out)
}

// saveManifest writes a JSON sidecar describing the snapshot's shape
// next to it, so a query server can inspect key/node counts and the
// tail codec/compressor without loading the whole dictionary. Written
// with persistence.AtomicSaveToDir so a reader never observes a
// half-written manifest.
func saveManifest(d *ux.Dictionary, out string) error {
	mcodec := d.Codec()
	if mcodec == nil {
		mcodec = codec.Default
	}
	manifestBytes, err := mcodec.Marshal(d.Manifest())
	if err != nil {
		return err
	}

	dir := filepath.Dir(out)
	name := filepath.Base(out) + ".manifest.json"
	return persistence.AtomicSaveToDir(dir, map[string]func(io.Writer) error{
		name: func(w io.Writer) error {
			_, err := w.Write(manifestBytes)
			return err
		},
	})
}
