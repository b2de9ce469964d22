// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// primeFinder scans finished segment bitmaps for primes and prime
// k-tuplets and routes them to the counters, the printer or the
// registered callbacks.
//
// Every k-tuplet pattern fits inside one bitmap byte thanks to the
// {7..31} bit layout, so recognition is a handful of mask compares per
// byte and counting is one table lookup per byte.
type primeFinder struct {
	ps  *PrimeSieve
	soe *soe
}

// tupletMasks[k-2] lists the bit patterns of the prime k-tuplet
// constellations, e.g. 0x06 = bits 1,2 = (p, p+2) at offsets (11, 13).
var tupletMasks = [6][]uint8{
	{0x06, 0x18, 0xc0},       // twins (p, p+2)
	{0x07, 0x0e, 0x1c, 0x38}, // triplets (p, p+2, p+6), (p, p+4, p+6)
	{0x1e},                   // quadruplets (p, p+2, p+6, p+8)
	{0x1f, 0x3e},             // quintuplets (p, p+4, p+6, p+10, p+12), (p, p+2, p+6, p+8, p+12)
	{0x3f},                   // sextuplets (p, p+4, p+6, p+10, p+12, p+16)
	{0xfe},                   // septuplets (p, p+2, p+6, p+8, p+12, p+18, p+20)
}

// tupletCounts[k-2][b] is the number of k-tuplets in a byte with bit
// pattern b.
var tupletCounts [6][256]uint8

func init() {
	for k, masks := range tupletMasks {
		for b := 0; b < 256; b++ {
			for _, m := range masks {
				if uint8(b)&m == m {
					tupletCounts[k][b]++
				}
			}
		}
	}
}

func newPrimeFinder(ps *PrimeSieve) (*primeFinder, error) {
	start := ps.start
	if start < 7 {
		start = 7
	}
	f := &primeFinder{ps: ps}
	s, err := newSOE(start, ps.stop, ps.sieveSize, ps.pre, ps.cfg.BucketCapacity, f)
	if err != nil {
		return nil, err
	}
	f.soe = s
	return f, nil
}

func (f *primeFinder) segmentProcessed(sieve []byte, low uint64) error {
	ps := f.ps
	if ps.isFlag(CallbackFlags | PrintPrimes) {
		f.generate(sieve, low)
	}
	if ps.isCount(1) {
		n := uint64(0)
		for _, b := range sieve {
			n += uint64(bits.OnesCount8(b))
		}
		ps.counts[0] += n
	}
	for k := 2; k <= 7; k++ {
		if ps.isCount(k) {
			n := uint64(0)
			for _, b := range sieve {
				n += uint64(tupletCounts[k-2][b])
			}
			ps.counts[k-1] += n
		}
		if ps.isPrint(k) {
			f.printTuplets(sieve, low, k)
		}
	}
	if ps.isStatus() {
		ps.updateStatus(uint64(len(sieve)) * numbersPerByte)
	}
	return nil
}

// generate walks the set bits in value order and emits each prime.
func (f *primeFinder) generate(sieve []byte, low uint64) {
	ps := f.ps
	for i, b := range sieve {
		base := low + uint64(i)*numbersPerByte
		for ; b != 0; b &= b - 1 {
			v := base + bitValues[bits.TrailingZeros8(b)]
			switch {
			case ps.isFlag(PrintPrimes):
				fmt.Fprintf(ps.out, "%d\n", v)
			case ps.isFlag(CallbackPrimes64):
				ps.cb64(v)
			case ps.isFlag(CallbackPrimes32):
				ps.cb32(uint32(v))
			case ps.isFlag(CallbackVisitor64):
				ps.visitor.VisitPrime(v)
			case ps.isFlag(CallbackVisitor32):
				ps.visitor32.VisitPrime32(uint32(v))
			}
		}
	}
}

func (f *primeFinder) printTuplets(sieve []byte, low uint64, k int) {
	ps := f.ps
	parts := make([]string, 0, 7)
	for i, b := range sieve {
		base := low + uint64(i)*numbersPerByte
		for _, m := range tupletMasks[k-2] {
			if b&m != m {
				continue
			}
			parts = parts[:0]
			for v := m; v != 0; v &= v - 1 {
				parts = append(parts, strconv.FormatUint(base+bitValues[bits.TrailingZeros8(v)], 10))
			}
			fmt.Fprintf(ps.out, "(%s)\n", strings.Join(parts, ", "))
		}
	}
}
