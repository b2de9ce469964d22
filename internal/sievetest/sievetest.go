// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

// Package sievetest collects prime streams during tests. A Digest folds
// every prime it sees into a murmur3 hash, so two runs can be compared
// for identical output without keeping millions of primes around.
package sievetest

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
)

type Digest struct {
	h     murmur3.Hash128
	buf   [8]byte
	Count uint64
	Last  uint64
}

func NewDigest() *Digest {
	return &Digest{h: murmur3.New128()}
}

// VisitPrime folds a prime into the digest. It satisfies the engine's
// PrimeVisitor interface.
func (d *Digest) VisitPrime(p uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], p)
	d.h.Write(d.buf[:])
	d.Count++
	d.Last = p
}

// Sum returns the digest of all primes seen so far.
func (d *Digest) Sum() (uint64, uint64) {
	return d.h.Sum128()
}

// Collector appends primes to a slice, for tests that need the values.
type Collector struct {
	Primes []uint64
}

func (c *Collector) VisitPrime(p uint64) {
	c.Primes = append(c.Primes, p)
}
