// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve

import "github.com/pkg/errors"

// eratSmall crosses off the multiples of sieving primes that have many
// multiples per segment. Each prime strides byte-wise across the whole
// segment with the mod-30 wheel, so the working set is the segment itself
// and stays in L1.
type eratSmall struct {
	limit  uint64
	primes []sievingPrime
}

func newEratSmall(limit uint64) *eratSmall {
	return &eratSmall{limit: limit}
}

func (e *eratSmall) add(prime, low, stop uint64) error {
	if prime > e.limit {
		return errors.Wrapf(ErrInternal, "eratSmall: prime %d > limit %d", prime, e.limit)
	}
	mi, wi, ok := wheel30.index(prime, low, stop)
	if !ok {
		return nil
	}
	e.primes = append(e.primes, sievingPrime{
		sievingPrime:  uint32(prime / numbersPerByte),
		multipleIndex: uint32(mi),
		wheelIndex:    uint32(wi),
	})
	return nil
}

// crossOff unsets the bits of all multiples within the segment and leaves
// each prime's multipleIndex relative to the next segment.
func (e *eratSmall) crossOff(sieve []byte) {
	size := len(sieve)
	elems := wheel30.elems
	for i := range e.primes {
		sp := &e.primes[i]
		a := int(sp.sievingPrime)
		mi := int(sp.multipleIndex)
		wi := sp.wheelIndex
		for mi < size {
			el := &elems[wi]
			sieve[mi] &= el.unsetBit
			mi += a*int(el.nextMultipleFactor) + int(el.correct)
			wi = uint32(el.next)
		}
		sp.multipleIndex = uint32(mi - size)
		sp.wheelIndex = wi
	}
}
