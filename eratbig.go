// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve

import "github.com/pkg/errors"

// eratBig crosses off the multiples of sieving primes whose next multiple
// lies beyond the current segment. Each prime sits in the bucket list of
// the segment its next multiple falls into, so a segment only ever touches
// the primes that actually have a multiple in it. After its single
// cross-off a prime is re-homed into a later list.
type eratBig struct {
	limit       uint64
	log2SegSize uint
	moduloSeg   uint32
	moduloLists uint32
	lists       []int32
	cur         uint32
	arena       *bucketArena
}

func newEratBig(limit uint64, segSize int, maxPrime uint64, arena *bucketArena) (*eratBig, error) {
	if !isPowerOf2(uint64(segSize)) {
		return nil, errors.Wrapf(ErrInternal, "eratBig: segment size %d not a power of 2", segSize)
	}
	maxAdvance := maxWheelFactor*(maxPrime/numbersPerByte) + maxWheelFactor + 1
	maxIndex := uint64(segSize) - 1 + maxAdvance
	numLists := nextPowerOf2(maxIndex/uint64(segSize) + 1)
	e := &eratBig{
		limit:       limit,
		log2SegSize: ilog2(uint64(segSize)),
		moduloSeg:   uint32(segSize - 1),
		moduloLists: uint32(numLists - 1),
		lists:       make([]int32, numLists),
		arena:       arena,
	}
	for i := range e.lists {
		e.lists[i] = nilBucket
	}
	return e, nil
}

func (e *eratBig) add(prime, low, stop uint64) error {
	if prime > e.limit {
		return errors.Wrapf(ErrInternal, "eratBig: prime %d > limit %d", prime, e.limit)
	}
	mi, wi, ok := wheel210.index(prime, low, stop)
	if !ok {
		return nil
	}
	segment := uint32(mi >> e.log2SegSize)
	if segment > e.moduloLists {
		return errors.Wrapf(ErrInternal, "eratBig: multiple index %d beyond %d lists", mi, len(e.lists))
	}
	e.store((e.cur+segment)&e.moduloLists, sievingPrime{
		sievingPrime:  uint32(prime / numbersPerByte),
		multipleIndex: uint32(mi) & e.moduloSeg,
		wheelIndex:    uint32(wi),
	})
	return nil
}

func (e *eratBig) store(list uint32, sp sievingPrime) {
	e.arena.push(&e.lists[list], sp)
}

// crossOff processes the bucket list of the current segment: every prime
// in it has exactly one multiple here. Primes are re-homed into the list
// of the segment holding their next multiple, then the drained buckets go
// back to the arena.
func (e *eratBig) crossOff(sieve []byte) {
	elems := wheel210.elems
	head := e.lists[e.cur]
	e.lists[e.cur] = nilBucket
	for head != nilBucket {
		// the arena may grow while re-homing, so copy the bucket header
		// instead of holding a pointer into it
		b := e.arena.buckets[head]
		for i := int32(0); i < b.count; i++ {
			sp := b.primes[i]
			el := &elems[sp.wheelIndex]
			mi := uint64(sp.multipleIndex)
			sieve[mi] &= el.unsetBit
			mi += uint64(sp.sievingPrime)*uint64(el.nextMultipleFactor) + uint64(el.correct)
			segment := uint32(mi >> e.log2SegSize)
			e.store((e.cur+segment)&e.moduloLists, sievingPrime{
				sievingPrime:  sp.sievingPrime,
				multipleIndex: uint32(mi) & e.moduloSeg,
				wheelIndex:    uint32(el.next),
			})
		}
		e.arena.release(head)
		head = b.next
	}
	e.cur = (e.cur + 1) & e.moduloLists
}
