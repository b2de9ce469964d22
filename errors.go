// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve

import "github.com/pkg/errors"

// Error kinds surfaced by the engine. Call sites wrap these with
// github.com/pkg/errors so errors.Is still matches the kind while the
// message carries the offending values.
var (
	// ErrInvalidArgument covers bad bounds, bad flags and nil callbacks.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange covers start/stop/preSieve values outside their
	// legal window.
	ErrOutOfRange = errors.New("out of range")

	// ErrResourceExhausted is fatal to the current sieve run; partial
	// counts are discarded.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrInternal indicates a bug, e.g. a sieving prime handed to the
	// wrong cross-off tier.
	ErrInternal = errors.New("internal error")

	// ErrNoMorePrimes is returned by Iterator.Next and Iterator.Previous
	// when no prime exists in the requested direction.
	ErrNoMorePrimes = errors.New("no more primes")
)
