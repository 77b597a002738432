package ux

import (
	"log/slog"

	"github.com/succinctgo/uxdict/codec"
	"github.com/succinctgo/uxdict/resource"
)

type options struct {
	codec      codec.Codec
	compressor codec.Compressor
	logger     *Logger
	resources  *resource.Controller
	tailUX     bool
}

// Option configures Build/Load behavior.
//
// Breaking changes are expected while uxdict is pre-release.
type Option func(*options)

// WithCodec configures the codec used for the manifest sidecar written
// alongside a snapshot. If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompressor enables envelope compression of the tail pool. If nil
// (the default), tails are stored uncompressed.
func WithCompressor(c codec.Compressor) Option {
	return func(o *options) {
		o.compressor = c
	}
}

// WithLogger configures structured logging for build and query operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMemoryBudget gates the nested tail dictionary build behind a
// resource.Controller with the given byte budget. If the nested build's
// estimated footprint would exceed the budget, Build degrades to a flat
// tail store rather than fail (spec.md §4.3's build-time degradation
// clause).
func WithMemoryBudget(bytes int64) Option {
	return func(o *options) {
		o.resources = resource.NewController(resource.Config{MemoryLimitBytes: bytes})
	}
}

// WithResourceController sets an existing resource.Controller, useful
// when a query server shares one controller's memory budget across many
// concurrent dictionary builds/reloads.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithTailCompression selects the nested dictionary-of-reversed-tails tail
// store (isTailUX=true in spec.md's terms) instead of the default flat
// tail list.
func WithTailCompression(enabled bool) Option {
	return func(o *options) {
		o.tailUX = enabled
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:  codec.Default,
		logger: NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
