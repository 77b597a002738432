// Command uxquery loads a dictionary snapshot and either answers a
// single query or serves it over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/succinctgo/uxdict"
	"github.com/succinctgo/uxdict/persistence"
	"github.com/succinctgo/uxdict/resource"
	"github.com/succinctgo/uxdict/server"
)

func main() {
	var (
		path   = flag.String("dict", "", "path to a dictionary snapshot (required)")
		mmap   = flag.Bool("mmap", false, "load via mmap instead of reading the whole file into memory")
		listen = flag.String("listen", "", "if set, serve queries on this address instead of running one-shot")
		mode   = flag.String("mode", "prefix", "one-shot query mode: prefix, common-prefix, predictive, decode")
		query  = flag.String("q", "", "query string for prefix/common-prefix/predictive modes")
		id     = flag.Int("id", -1, "identifier for decode mode")
		limit  = flag.Int("limit", 100, "result limit for common-prefix/predictive modes")
		maxBg  = flag.Int64("max-concurrency", 8, "maximum concurrent queries the server admits at once")
	)
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	if *mmap {
		d, closer, err := ux.LoadMmap(ctx, *path)
		if err != nil {
			log.Fatalf("uxquery: load: %v", err)
		}
		defer closer.Close()
		run(d, *path, *listen, *mode, *query, *id, *limit, *maxBg)
		return
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("uxquery: open: %v", err)
	}
	defer f.Close()

	d, err := ux.Load(ctx, f)
	if err != nil {
		log.Fatalf("uxquery: load: %v", err)
	}
	run(d, *path, *listen, *mode, *query, *id, *limit, *maxBg)
}

func run(d *ux.Dictionary, path, listen, mode, query string, id, limit int, maxBg int64) {
	if listen != "" {
		serve(d, path, listen, maxBg)
		return
	}
	if err := oneShot(d, mode, query, id, limit); err != nil {
		log.Fatalf("uxquery: %v", err)
	}
}

// serve runs the query HTTP server. A persistence.Manager is configured
// against path so a POST /reload can pick up a snapshot that uxbuild
// has rewritten in place since this process started, without a restart.
func serve(d *ux.Dictionary, path, addr string, maxBg int64) {
	rc := resource.NewController(resource.Config{MaxBackgroundWorkers: maxBg})
	mgr, err := persistence.NewManager(persistence.ManagerOptions{SnapshotPath: path, Codec: d.Codec()})
	if err != nil {
		log.Fatalf("uxquery: persistence manager: %v", err)
	}
	defer mgr.Close()

	s := server.New(d, rc, mgr)
	log.Printf("uxquery: serving %d keys on %s", d.GetKeyNum(), addr)
	if err := http.ListenAndServe(addr, s); err != nil {
		log.Fatalf("uxquery: serve: %v", err)
	}
}

func oneShot(d *ux.Dictionary, mode, query string, id, limit int) error {
	switch mode {
	case "prefix":
		gotID, matchedLen, err := d.PrefixSearch([]byte(query))
		if err != nil {
			return err
		}
		fmt.Printf("id=%d matchedLen=%d\n", gotID, matchedLen)
	case "common-prefix":
		ids, err := d.CommonPrefixSearch([]byte(query), limit)
		if err != nil {
			return err
		}
		fmt.Println(ids)
	case "predictive":
		ids, err := d.PredictiveSearch([]byte(query), limit)
		if err != nil {
			return err
		}
		fmt.Println(ids)
	case "decode":
		key, err := d.Decode(id)
		if err != nil {
			return err
		}
		fmt.Println(string(key))
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	return nil
}
