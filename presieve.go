// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve

// preSieve holds a periodic bit pattern of the sieve after removing the
// multiples of the small primes {7, ..., limit}. Their product is coprime
// to 30, so the smallest period measured in bytes is the product itself:
// 1001 bytes for limit 13, about 7 MB for limit 23. Copying the pattern
// into a segment at the right phase removes those multiples at memcpy
// speed instead of crossing them off one by one.
//
// The primes of the pattern are themselves cleared (they are 1*p); the
// segment that contains them gets their bits restored, see copyInto.
type preSieve struct {
	limit  int
	primes []uint64
	buf    []byte
}

var preSievePrimes = [6]uint64{7, 11, 13, 17, 19, 23}

func newPreSieve(limit int) *preSieve {
	p := &preSieve{limit: limit}
	size := uint64(1)
	for _, prime := range preSievePrimes {
		if prime <= uint64(limit) {
			p.primes = append(p.primes, prime)
			size *= prime
		}
	}
	p.buf = make([]byte, size)
	for i := range p.buf {
		p.buf[i] = 0xff
	}

	// Sieve the pattern with the small tier. Cross-off starts at prime^2;
	// the multiples prime*q with q < prime are multiples of a smaller
	// pattern prime, except 1*prime which is cleared by hand so the
	// pattern repeats exactly (a bit is clear iff one of the pattern
	// primes divides its value).
	stop := size*numbersPerByte + 1
	es := newEratSmall(uint64(limit))
	for _, prime := range p.primes {
		if i, mask, ok := bitmapPos(prime, 0); ok {
			p.buf[i] &^= mask
		}
		es.add(prime, 0, stop)
	}
	es.crossOff(p.buf)
	return p
}

// copyInto initializes a segment bitmap from the pattern. low must be a
// multiple of 30. The segment holding the pattern primes themselves gets
// their bits set back, everything else keeps exact periodicity: a bit is
// clear iff its value is divisible by one of the pattern primes.
func (p *preSieve) copyInto(sieve []byte, low uint64) {
	size := uint64(len(p.buf))
	offset := (low / numbersPerByte) % size
	for n := 0; n < len(sieve); {
		n += copy(sieve[n:], p.buf[offset:])
		offset = 0
	}
	if low <= p.primes[len(p.primes)-1] {
		for _, prime := range p.primes {
			if i, mask, ok := bitmapPos(prime, low); ok && i < uint64(len(sieve)) {
				sieve[i] |= mask
			}
		}
	}
}
