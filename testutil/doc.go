// Package testutil provides key-generation helpers for dictionary
// tests and benchmarks.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Key Generation
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.RandomKeys(1000, 3, 12)       // sorted, deduped, uniform
//	keys := rng.PrefixHeavyKeys(1000, 20, 4, 6) // long shared-prefix runs
package testutil
