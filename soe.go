// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve

import "github.com/pkg/errors"

// segmentSink consumes finished segment bitmaps. Every bit still set after
// cross-off and masking is a prime within [start, stop].
type segmentSink interface {
	segmentProcessed(sieve []byte, low uint64) error
}

// soe is the segmented sieve of Eratosthenes driver. It owns the segment
// bitmap, walks [start, stop] one segment at a time and dispatches the
// three cross-off tiers. Sieving primes arrive through sievePrime() in
// increasing order while segments advance lazily: a segment is processed
// once the primes required for it (p <= sqrt(segmentHigh)) are all in.
type soe struct {
	start, stop uint64
	sqrtStop    uint64
	segSize     int    // segment size in bytes
	low, high   uint64 // bounds of the current (unsieved) segment
	sieve       []byte
	pre         *preSieve
	small       *eratSmall
	medium      *eratMedium
	big         *eratBig
	sink        segmentSink
}

// byteRemainder returns start - low for the wheel-aligned segment start:
// low is a multiple of 30 and low+7, the first representable value, is
// <= start.
func byteRemainder(n uint64) uint64 {
	r := n % numbersPerByte
	if r <= 6 {
		r += numbersPerByte
	}
	return r
}

func newSOE(start, stop uint64, sieveSizeKB int, pre *preSieve, bucketCap int, sink segmentSink) (*soe, error) {
	if start < 7 || start > stop {
		return nil, errors.Wrapf(ErrInternal, "soe: bad interval [%d, %d]", start, stop)
	}
	segSize := sieveSizeKB * 1024
	span := uint64(segSize) * numbersPerByte
	s := &soe{
		start:    start,
		stop:     stop,
		sqrtStop: isqrt(stop),
		segSize:  segSize,
		sieve:    make([]byte, segSize),
		pre:      pre,
		sink:     sink,
	}
	s.low = start - byteRemainder(start)
	s.high = addOverflowSafe(s.low, span+1)

	arena := newBucketArena(bucketCap)
	smallLimit := inBetween(0, s.sqrtStop, uint64(segSize))
	mediumLimit := inBetween(0, s.sqrtStop, span)
	s.small = newEratSmall(smallLimit)
	s.medium = newEratMedium(mediumLimit, arena)
	if s.sqrtStop > mediumLimit {
		var err error
		s.big, err = newEratBig(s.sqrtStop, segSize, s.sqrtStop, arena)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// needsSievingPrimes reports whether any primes beyond the pre-sieve limit
// are required, i.e. whether a generator has to run at all.
func (s *soe) needsSievingPrimes() bool {
	return s.sqrtStop > uint64(s.pre.limit)
}

// sievePrime feeds the next sieving prime. Primes must arrive in increasing
// order; segments whose sieving primes are complete are processed before
// the prime is added to its tier.
func (s *soe) sievePrime(prime uint64) error {
	for isquare(prime) > s.high {
		if err := s.sieveSegment(); err != nil {
			return err
		}
	}
	return s.addSievingPrime(prime)
}

func (s *soe) addSievingPrime(prime uint64) error {
	switch {
	case prime <= uint64(s.pre.limit):
		return nil // handled by the pre-sieve pattern
	case prime <= s.small.limit:
		return s.small.add(prime, s.low, s.stop)
	case prime <= s.medium.limit:
		return s.medium.add(prime, s.low, s.stop)
	case s.big != nil:
		return s.big.add(prime, s.low, s.stop)
	}
	return errors.Wrapf(ErrInternal, "soe: no tier for sieving prime %d", prime)
}

// finish sieves the remaining segments up to stop.
func (s *soe) finish() error {
	for s.low <= s.stop {
		if err := s.sieveSegment(); err != nil {
			return err
		}
	}
	return nil
}

func (s *soe) sieveSegment() error {
	s.pre.copyInto(s.sieve, s.low)
	s.small.crossOff(s.sieve)
	s.medium.crossOff(s.sieve)
	if s.big != nil {
		s.big.crossOff(s.sieve)
	}
	s.mask()
	if err := s.sink.segmentProcessed(s.sieve, s.low); err != nil {
		return err
	}
	span := uint64(s.segSize) * numbersPerByte
	s.low += span
	s.high = addOverflowSafe(s.high, span)
	return nil
}

// mask clears the bits below start and above stop. Only the two endpoint
// segments are affected; interior segments fail both conditions.
func (s *soe) mask() {
	if s.start > s.low+7 {
		for j, v := range bitValues {
			if s.low+v < s.start {
				s.sieve[0] &^= 1 << uint(j)
			}
		}
	}
	if s.stop < s.high {
		if s.stop < s.low+7 {
			for i := range s.sieve {
				s.sieve[i] = 0
			}
			return
		}
		i := (s.stop - s.low - 7) / numbersPerByte
		if i < uint64(len(s.sieve)) {
			for j, v := range bitValues {
				if s.low+i*numbersPerByte+v > s.stop {
					s.sieve[i] &^= 1 << uint(j)
				}
			}
			for k := i + 1; k < uint64(len(s.sieve)); k++ {
				s.sieve[k] = 0
			}
		}
	}
}
