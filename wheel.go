// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve

// Wheel factorization for the segmented sieve. Each byte of a segment
// bitmap covers 30 consecutive integers; the 8 bits correspond to the
// offsets {7, 11, 13, 17, 19, 23, 29, 31} which are the residues coprime
// to 30 (the residue 1 is carried as 31 of the previous byte, which keeps
// every prime k-tuplet pattern inside a single byte).
//
// For a sieving prime p = 30a + rp crossing off its multiple m = p*q, the
// next multiple coprime to the wheel modulus is p*(q+dq) and the bitmap
// byte advances by a*dq + (s + rp*dq)/30 where s = (m-7) mod 30. The dq
// and correction terms only depend on the residue classes of p and q, so
// they are precomputed per (class of p, class of q) pair below. The mod-30
// wheel skips multiples p*q with q divisible by 2, 3 or 5; the mod-210
// wheel also skips q divisible by 7, whose multiples the pre-sieve already
// removed.

const (
	numbersPerByte = 30
	maxWheelFactor = 10 // largest gap between consecutive residues coprime to 210
)

// bitValues[j] is the value offset of bit j within a segment byte.
var bitValues = [8]uint64{7, 11, 13, 17, 19, 23, 29, 31}

// bitOfRem maps (v - low - 7) % 30 to the bit index of v, -1 if v is not
// representable (not coprime to 30).
var bitOfRem [30]int8

// primeClass maps p % 30 to the wheel row of sieving prime p, -1 if p is
// not coprime to 30.
var primeClass [30]int8

type wheelInit struct {
	nextMultipleFactor uint8
	wheelIndex         uint8
}

type wheelElement struct {
	unsetBit           uint8  // AND mask clearing the bit of the current multiple
	nextMultipleFactor uint8  // dq, multiplied by p/30 on every advance
	correct            uint8  // byte correction from the residue arithmetic
	next               uint16 // wheel index of the next multiple
}

type wheel struct {
	modulo  uint64
	classes int            // residues coprime to modulo per period
	init    []wheelInit    // indexed by q % modulo
	elems   []wheelElement // indexed by class(p)*classes + class(q)
}

var (
	wheel30  *wheel
	wheel210 *wheel
)

func init() {
	for i := range bitOfRem {
		bitOfRem[i] = -1
		primeClass[i] = -1
	}
	for j, v := range bitValues {
		bitOfRem[(v-7)%30] = int8(j)
		primeClass[v%30] = int8(j)
	}
	wheel30 = newWheel(30)
	wheel210 = newWheel(210)
}

func coprime(r, modulo uint64) bool {
	if r%2 == 0 || r%3 == 0 || r%5 == 0 {
		return false
	}
	return modulo < 210 || r%7 != 0
}

func newWheel(modulo uint64) *wheel {
	var residues []uint64
	for r := uint64(1); r < modulo; r++ {
		if coprime(r, modulo) {
			residues = append(residues, r)
		}
	}
	classes := len(residues)
	pos := make([]int, modulo)
	for i, r := range residues {
		pos[r] = i
	}

	w := &wheel{
		modulo:  modulo,
		classes: classes,
		init:    make([]wheelInit, modulo),
		elems:   make([]wheelElement, 8*classes),
	}
	for r := uint64(0); r < modulo; r++ {
		d := uint64(0)
		for !coprime((r+d)%modulo, modulo) {
			d++
		}
		w.init[r] = wheelInit{
			nextMultipleFactor: uint8(d),
			wheelIndex:         uint8(pos[(r+d)%modulo]),
		}
	}
	for ip := 0; ip < 8; ip++ {
		rp := bitValues[ip] % 30
		for iq, rq := range residues {
			dq := residues[(iq+1)%classes] + modulo - rq
			if dq > modulo {
				dq -= modulo
			}
			s := (rp*rq%30 + 30 - 7) % 30
			w.elems[ip*classes+iq] = wheelElement{
				unsetBit:           ^(uint8(1) << uint(bitOfRem[s])),
				nextMultipleFactor: uint8(dq),
				correct:            uint8((s + rp*dq) / 30),
				next:               uint16(ip*classes + (iq+1)%classes),
			}
		}
	}
	return w
}

// index computes the first multiple of prime that is >= low+7, >= prime^2
// and coprime to the wheel modulus, returning its byte offset relative to
// low and its wheel index. ok is false when that multiple exceeds stop, in
// which case the prime never crosses off anything in [low, stop].
func (w *wheel) index(prime, low, stop uint64) (multipleIndex uint64, wheelIndex int, ok bool) {
	q := ceilDiv(low+7, prime)
	if q < prime {
		q = prime
	}
	in := w.init[q%w.modulo]
	q += uint64(in.nextMultipleFactor)
	if prime > maxUint64/q {
		return 0, 0, false
	}
	m := prime * q
	if m > stop {
		return 0, 0, false
	}
	wheelIndex = int(primeClass[prime%30])*w.classes + int(in.wheelIndex)
	multipleIndex = (m - low - 7) / numbersPerByte
	return multipleIndex, wheelIndex, true
}

// bitmapPos locates value v in a segment starting at low. ok is false when
// v is below the first representable value or not coprime to 30.
func bitmapPos(v, low uint64) (byteIndex uint64, mask uint8, ok bool) {
	if v < low+7 {
		return 0, 0, false
	}
	off := v - low - 7
	bit := bitOfRem[off%numbersPerByte]
	if bit < 0 {
		return 0, 0, false
	}
	return off / numbersPerByte, 1 << uint(bit), true
}
