// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWheelClasses(t *testing.T) {
	assert.Equal(t, 8, wheel30.classes)
	assert.Equal(t, 48, wheel210.classes)
}

func TestWheelInitTable(t *testing.T) {
	for _, w := range []*wheel{wheel30, wheel210} {
		for r := uint64(0); r < w.modulo; r++ {
			in := w.init[r]
			next := (r + uint64(in.nextMultipleFactor)) % w.modulo
			assert.True(t, coprime(next, w.modulo), "modulo %d: %d+%d not coprime", w.modulo, r, in.nextMultipleFactor)
			for d := uint64(0); d < uint64(in.nextMultipleFactor); d++ {
				assert.False(t, coprime((r+d)%w.modulo, w.modulo), "modulo %d: skipped coprime residue at %d+%d", w.modulo, r, d)
			}
		}
	}
}

// Advancing through a full residue cycle must visit each coprime class
// once and move the byte index by p for the mod-30 wheel and 7p for the
// mod-210 wheel (the multiple grows by 30p resp. 210p).
func TestWheelCycle(t *testing.T) {
	for _, p := range []uint64{7, 11, 13, 17, 19, 23, 29, 31, 97, 1009, 104729} {
		for _, w := range []*wheel{wheel30, wheel210} {
			a := p / numbersPerByte
			row := int(primeClass[p%numbersPerByte]) * w.classes
			sum := uint64(0)
			wi := row
			for n := 0; n < w.classes; n++ {
				el := &w.elems[wi]
				sum += a*uint64(el.nextMultipleFactor) + uint64(el.correct)
				wi = int(el.next)
			}
			assert.Equal(t, row, wi, "cycle of %d did not close", p)
			assert.Equal(t, p*w.modulo/numbersPerByte, sum, "cycle advance of %d on modulo %d", p, w.modulo)
		}
	}
}

// The index/elems pair must enumerate exactly the multiples p*q with q
// coprime to the wheel modulus, in increasing order, hitting the right
// bits. Walk a few segments worth and compare against brute force.
func TestWheelCrossOffSequence(t *testing.T) {
	for _, w := range []*wheel{wheel30, wheel210} {
		for _, p := range []uint64{7, 13, 31, 101, 997} {
			var low uint64 = 0
			const stop = 2000000
			mi, wi, ok := w.index(p, low, stop)
			require.True(t, ok)

			var got []uint64
			for mi*numbersPerByte < stop {
				el := &w.elems[wi]
				bit := uint(bits.TrailingZeros8(^el.unsetBit))
				got = append(got, low+mi*numbersPerByte+bitValues[bit])
				mi += p/numbersPerByte*uint64(el.nextMultipleFactor) + uint64(el.correct)
				wi = int(el.next)
			}

			var want []uint64
			for q := p; q*p <= got[len(got)-1]; q++ {
				if coprime(q%w.modulo, w.modulo) {
					want = append(want, p*q)
				}
			}
			assert.Equal(t, want, got, "multiples of %d on modulo %d", p, w.modulo)
		}
	}
}

func TestWheelIndexFirstMultiple(t *testing.T) {
	for _, w := range []*wheel{wheel30, wheel210} {
		for _, p := range []uint64{7, 11, 97, 1009} {
			for _, low := range []uint64{0, 30, 990, 123450} {
				mi, wi, ok := w.index(p, low, 1<<40)
				require.True(t, ok)
				el := &w.elems[wi]
				bit := uint(bits.TrailingZeros8(^el.unsetBit))
				v := low + mi*numbersPerByte + bitValues[bit]
				assert.Zero(t, v%p, "first multiple %d of %d not divisible", v, p)
				assert.True(t, v >= low+7)
				assert.True(t, v/p >= p, "multiple %d of %d below square", v, p)
				// nothing smaller was skipped
				for q := p; q < v/p; q++ {
					if p*q >= low+7 && coprime(q%w.modulo, w.modulo) {
						t.Fatalf("skipped multiple %d of %d (low %d)", p*q, p, low)
					}
				}
			}
		}
	}
}

func TestWheelIndexBeyondStop(t *testing.T) {
	_, _, ok := wheel30.index(1009, 0, 1000)
	assert.False(t, ok)
}
