// Package testutil provides testing utilities for prefixindex.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded random data generation and a kv.Store wrapper for
// injecting backend failures.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	name := rng.Word(3, 12)       // lowercase ASCII
//	names := rng.Words(100, 3, 12)
//
// # Fault Injection
//
//	store := testutil.NewFaultyStore(kv.NewMemoryStore())
//	store.FailOn(testutil.OpPut, "ga", errThrottled)
//	...
//	store.Attempts(testutil.OpPut) // partition keys tried, in call order
package testutil
