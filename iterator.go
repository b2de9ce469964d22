// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Iterator is a forward/backward cursor over the primes. Primes are
// materialized into an internal vector in adaptive chunks: small at first
// so iteration starts fast, then large enough to amortize the sieve setup
// cost.
//
// The cursor sits between two primes. Next returns the prime to its
// right, Previous the prime to its left, so Previous immediately after
// Next yields the same prime. After SkipTo(v), Next yields the smallest
// prime >= v and Previous the largest prime <= v.
//
// When no prime exists in the requested direction both methods return
// ErrNoMorePrimes and leave the iterator in its last good state, so the
// caller may seek elsewhere and continue.
type Iterator struct {
	start  uint64
	primes []uint64
	i      int  // cursor: Next returns primes[i], Previous returns primes[i-1]
	first  bool // no chunk generated since the last seek
	adjust bool // cursor must be repositioned from start before use
	calls  int
	ps     *PrimeSieve
}

// NewIterator returns an iterator positioned at start.
func NewIterator(start uint64) (*Iterator, error) {
	it := &Iterator{ps: NewPrimeSieve()}
	if err := it.SkipTo(start); err != nil {
		return nil, err
	}
	return it, nil
}

// SkipTo repositions the iterator at start. If start lies inside the
// cached vector the cache is kept and only the cursor moves; otherwise
// the next call to Next or Previous sieves a fresh chunk.
func (it *Iterator) SkipTo(start uint64) error {
	if start > MaxStop {
		return errors.Wrapf(ErrOutOfRange, "start must be <= %d", MaxStop)
	}
	it.start = start
	it.first = true
	it.adjust = false
	it.calls = 0
	if len(it.primes) > 0 && it.primes[0] <= start && start <= it.primes[len(it.primes)-1] {
		it.adjust = true
	} else {
		it.primes = it.primes[:0]
		it.i = 0
	}
	return nil
}

// Next returns the next prime in increasing order.
func (it *Iterator) Next() (uint64, error) {
	if it.adjust {
		it.adjust = false
		it.first = false
		it.i = sort.Search(len(it.primes), func(k int) bool { return it.primes[k] >= it.start })
	}
	for it.i >= len(it.primes) {
		if err := it.generateNext(); err != nil {
			return 0, err
		}
	}
	p := it.primes[it.i]
	it.i++
	return p, nil
}

// Previous returns the next prime in decreasing order.
func (it *Iterator) Previous() (uint64, error) {
	if it.adjust {
		it.adjust = false
		it.first = false
		i := sort.Search(len(it.primes), func(k int) bool { return it.primes[k] >= it.start })
		if i < len(it.primes) && it.primes[i] == it.start {
			i++ // start itself is prime, it is the answer
		}
		it.i = i
	}
	for it.i == 0 {
		if err := it.generatePrevious(); err != nil {
			return 0, err
		}
	}
	it.i--
	return it.primes[it.i], nil
}

func (it *Iterator) generateNext() error {
	start := it.start
	if !it.first && len(it.primes) > 0 {
		start = addOverflowSafe(it.primes[len(it.primes)-1], 1)
	}
	for {
		if start > MaxStop {
			return errors.Wrap(ErrNoMorePrimes, "beyond the sieveable range")
		}
		stop := addOverflowSafe(start, it.intervalSize(start))
		if stop > MaxStop {
			stop = MaxStop
		}
		primes, err := it.generate(start, stop)
		if err != nil {
			return err
		}
		if len(primes) > 0 {
			it.first = false
			it.primes = primes
			it.i = 0
			return nil
		}
		if stop == MaxStop {
			return errors.Wrap(ErrNoMorePrimes, "beyond the sieveable range")
		}
		start = stop + 1
	}
}

func (it *Iterator) generatePrevious() error {
	stop := it.start
	if !it.first && len(it.primes) > 0 {
		if it.primes[0] <= 2 {
			return errors.Wrap(ErrNoMorePrimes, "no prime below 2")
		}
		stop = it.primes[0] - 1
	}
	for {
		start := subUnderflowSafe(stop, it.intervalSize(stop))
		primes, err := it.generate(start, stop)
		if err != nil {
			return err
		}
		if len(primes) > 0 {
			it.first = false
			it.primes = primes
			it.i = len(primes)
			return nil
		}
		if start == 0 {
			return errors.Wrap(ErrNoMorePrimes, "no prime below 2")
		}
		stop = start - 1
	}
}

func (it *Iterator) generate(start, stop uint64) ([]uint64, error) {
	primes := make([]uint64, 0, 1024)
	err := it.ps.GeneratePrimes(start, stop, func(p uint64) {
		primes = append(primes, p)
	})
	if err != nil {
		return nil, err
	}
	return primes, nil
}

// intervalSize calculates a chunk size in integers that keeps the
// per-call overhead balanced: clamp(base, pi(sqrt n), 512 MB worth of
// primes) * ln n, with a small base for the first calls.
func (it *Iterator) intervalSize(n uint64) uint64 {
	it.calls++
	const (
		kilobyte = 1 << 10
		megabyte = 1 << 20
	)
	x := math.Max(float64(n), 10)
	sqrtx := math.Sqrt(x)
	sqrtxPrimes := uint64(sqrtx / (math.Log(sqrtx) - 1))

	maxPrimes := uint64(megabyte*512) / 8
	primes := uint64(kilobyte*32) / 8
	if it.calls >= 10 {
		primes = uint64(megabyte*4) / 8
	}
	primes = inBetween(primes, sqrtxPrimes, maxPrimes)
	return uint64(float64(primes) * math.Log(x))
}
