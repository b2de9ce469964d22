// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve

import (
	"math/bits"

	"github.com/willf/bitset"
)

// primeGenerator produces the sieving primes <= sqrt(stop) that the
// finder consumes. It reuses the segment driver over
// [preSieveLimit+1, sqrt(stop)] and streams every prime it recognizes
// into the finder's cross-off tiers, which lets the finder advance its
// own segments lazily while generation is still running.
//
// The generator itself is seeded by a tiny classical sieve up to
// stop^(1/4), small enough that a plain bitset does the job.
type primeGenerator struct {
	soe    *soe
	finder *soe
}

func newPrimeGenerator(finder *soe, cfg Config) (*primeGenerator, error) {
	g := &primeGenerator{finder: finder}
	pre := newPreSieve(cfg.GeneratorPreSieve)
	s, err := newSOE(uint64(finder.pre.limit)+1, finder.sqrtStop, cfg.GeneratorSieveSize, pre, cfg.BucketCapacity, g)
	if err != nil {
		return nil, err
	}
	g.soe = s
	return g, nil
}

// run seeds the generator and sieves its whole range, feeding the finder.
func (g *primeGenerator) run() error {
	if err := g.seed(); err != nil {
		return err
	}
	return g.soe.finish()
}

// seed feeds the generator its own sieving primes, found with a tiny
// sieve of Eratosthenes over the odd numbers up to stop^(1/4).
func (g *primeGenerator) seed() error {
	n := g.soe.sqrtStop
	pre := uint64(g.soe.pre.limit)
	if n <= pre {
		return nil
	}
	composite := bitset.New(uint(n + 1))
	for i := uint64(3); i*i <= n; i += 2 {
		if !composite.Test(uint(i)) {
			for j := i * i; j <= n; j += 2 * i {
				composite.Set(uint(j))
			}
		}
	}
	first := pre + 1
	if first%2 == 0 {
		first++
	}
	for i := first; i <= n; i += 2 {
		if !composite.Test(uint(i)) {
			if err := g.soe.sievePrime(i); err != nil {
				return err
			}
		}
	}
	return nil
}

// segmentProcessed feeds each prime recognized in the generator's bitmap
// into the finder, in increasing order.
func (g *primeGenerator) segmentProcessed(sieve []byte, low uint64) error {
	for i, b := range sieve {
		base := low + uint64(i)*numbersPerByte
		for ; b != 0; b &= b - 1 {
			if err := g.finder.sievePrime(base + bitValues[bits.TrailingZeros8(b)]); err != nil {
				return err
			}
		}
	}
	return nil
}
