// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve

import "github.com/pkg/errors"

// eratMedium crosses off the multiples of sieving primes that have only a
// handful of multiples per segment. The primes are kept in a single bucket
// list and stride with the mod-210 wheel, which skips the multiples the
// pre-sieve already removed.
type eratMedium struct {
	limit uint64
	arena *bucketArena
	head  int32
}

func newEratMedium(limit uint64, arena *bucketArena) *eratMedium {
	return &eratMedium{limit: limit, arena: arena, head: nilBucket}
}

func (e *eratMedium) add(prime, low, stop uint64) error {
	if prime > e.limit {
		return errors.Wrapf(ErrInternal, "eratMedium: prime %d > limit %d", prime, e.limit)
	}
	mi, wi, ok := wheel210.index(prime, low, stop)
	if !ok {
		return nil
	}
	e.arena.push(&e.head, sievingPrime{
		sievingPrime:  uint32(prime / numbersPerByte),
		multipleIndex: uint32(mi),
		wheelIndex:    uint32(wi),
	})
	return nil
}

func (e *eratMedium) crossOff(sieve []byte) {
	size := len(sieve)
	elems := wheel210.elems
	for h := e.head; h != nilBucket; {
		b := &e.arena.buckets[h]
		for i := int32(0); i < b.count; i++ {
			sp := &b.primes[i]
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
		h = b.next
	}
}
