// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

// Package sieve counts, prints, streams and iterates the primes and prime
// k-tuplets in an interval [start, stop] using a segmented wheel sieve of
// Eratosthenes. See the "README.md" file and the example program for
// usage.
package sieve

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "sieve")

// PrimeVisitor is the capability object handed to VisitPrimes; the engine
// calls VisitPrime once per prime in increasing order.
type PrimeVisitor interface {
	VisitPrime(prime uint64)
}

// PrimeVisitor32 is the 32-bit flavor of PrimeVisitor.
type PrimeVisitor32 interface {
	VisitPrime32(prime uint32)
}

// The wheel excludes the residues of 2, 3 and 5, so the smallest primes
// and k-tuplets come from this literal table before the driver runs.
type smallPrime struct {
	min, max uint64
	index    int // k-tuplet order - 1
	str      string
}

var smallPrimes = [8]smallPrime{
	{2, 2, 0, "2"},
	{3, 3, 0, "3"},
	{5, 5, 0, "5"},
	{3, 5, 1, "(3, 5)"},
	{5, 7, 1, "(5, 7)"},
	{5, 11, 2, "(5, 7, 11)"},
	{5, 13, 3, "(5, 7, 11, 13)"},
	{5, 17, 4, "(5, 7, 11, 13, 17)"},
}

// PrimeSieve sieves the primes and prime k-tuplets within [start, stop].
// The zero value is not usable; call NewPrimeSieve.
type PrimeSieve struct {
	start, stop   uint64
	flags         int
	sieveSize     int // kilobytes
	preSieveLimit int
	cfg           Config

	counts      [7]uint64
	interval    float64
	sumSegments uint64
	status      float64
	seconds     float64

	out    io.Writer
	lock   *sync.Mutex
	parent *PrimeSieve
	pre    *preSieve

	cb32      func(uint32)
	cb64      func(uint64)
	visitor   PrimeVisitor
	visitor32 PrimeVisitor32
}

// NewPrimeSieve returns a sieve with the default configuration: 32 KB
// segments, pre-sieving up to 19, counting primes, output on stdout.
func NewPrimeSieve() *PrimeSieve {
	return NewPrimeSieveConfig(DefaultConfig)
}

// NewPrimeSieveConfig returns a sieve using cfg for every tunable.
func NewPrimeSieveConfig(cfg Config) *PrimeSieve {
	ps := &PrimeSieve{
		flags:         CountPrimes,
		sieveSize:     int(inBetween(1, nextPowerOf2(uint64(cfg.SieveSize)), 4096)),
		preSieveLimit: int(inBetween(13, uint64(cfg.PreSieve), 23)),
		cfg:           cfg,
		out:           os.Stdout,
		lock:          new(sync.Mutex),
	}
	return ps
}

// newChildSieve is used by ParallelPrimeSieve: children share the
// parent's configuration, output lock, pre-sieve pattern and callbacks,
// and forward status updates to the parent.
func newChildSieve(parent *PrimeSieve) *PrimeSieve {
	return &PrimeSieve{
		flags:         parent.flags,
		sieveSize:     parent.sieveSize,
		preSieveLimit: parent.preSieveLimit,
		cfg:           parent.cfg,
		out:           parent.out,
		lock:          parent.lock,
		parent:        parent,
		pre:           parent.pre,
		cb32:          parent.cb32,
		cb64:          parent.cb64,
		visitor:       parent.visitor,
		visitor32:     parent.visitor32,
	}
}

func (ps *PrimeSieve) GetStart() uint64   { return ps.start }
func (ps *PrimeSieve) GetStop() uint64    { return ps.stop }
func (ps *PrimeSieve) GetSieveSize() int  { return ps.sieveSize }
func (ps *PrimeSieve) GetPreSieve() int   { return ps.preSieveLimit }
func (ps *PrimeSieve) GetStatus() float64 { return ps.status }
func (ps *PrimeSieve) GetSeconds() float64 {
	return ps.seconds
}

// GetCounts returns the counters of the last sieve run, indexed by
// k-tuplet order - 1.
func (ps *PrimeSieve) GetCounts() [7]uint64 { return ps.counts }

// SetStart sets the start number for sieving. start must be <= MaxStop.
func (ps *PrimeSieve) SetStart(start uint64) error {
	if start > MaxStop {
		return errors.Wrapf(ErrOutOfRange, "START must be <= %d", MaxStop)
	}
	ps.start = start
	return nil
}

// SetStop sets the stop number for sieving. stop must be <= MaxStop.
func (ps *PrimeSieve) SetStop(stop uint64) error {
	if stop > MaxStop {
		return errors.Wrapf(ErrOutOfRange, "STOP must be <= %d", MaxStop)
	}
	ps.stop = stop
	return nil
}

// SetSieveSize sets the segment size in kilobytes. The best performance
// is achieved with the CPU's L1 data cache size (usually 32 or 64 KB)
// when sieving < 10^15 and the L2 cache size above. The value must be in
// [1, 4096] and is rounded up to the next power of 2.
func (ps *PrimeSieve) SetSieveSize(kilobytes int) error {
	if kilobytes < 1 || kilobytes > 4096 {
		return errors.Wrapf(ErrOutOfRange, "sieve size %d KB, must be in [1, 4096]", kilobytes)
	}
	ps.sieveSize = int(nextPowerOf2(uint64(kilobytes)))
	return nil
}

// SetPreSieve sets the limit of the small primes whose multiples are
// removed by pattern copy instead of cross-off. Must be in [13, 23];
// 13 uses a 1001 byte pattern, 23 about 7 megabytes.
func (ps *PrimeSieve) SetPreSieve(limit int) error {
	if limit < 13 || limit > 23 {
		return errors.Wrapf(ErrOutOfRange, "pre-sieve limit %d, must be in [13, 23]", limit)
	}
	ps.preSieveLimit = limit
	return nil
}

func (ps *PrimeSieve) SetFlags(flags int) error {
	if !validFlags(flags) {
		return errors.Wrapf(ErrInvalidArgument, "invalid flags %#x", flags)
	}
	ps.flags = flags
	return nil
}

func (ps *PrimeSieve) AddFlags(flags int) error {
	if !validFlags(flags) {
		return errors.Wrapf(ErrInvalidArgument, "invalid flags %#x", flags)
	}
	ps.flags |= flags
	return nil
}

// SetOutput redirects printed primes, k-tuplets and status updates.
// The default is os.Stdout.
func (ps *PrimeSieve) SetOutput(w io.Writer) {
	ps.out = w
}

func (ps *PrimeSieve) reset() {
	ps.counts = [7]uint64{}
	ps.sumSegments = 0
	ps.interval = float64(ps.stop) - float64(ps.start) + 1
	ps.status = -1
	ps.seconds = 0
	if ps.isStatus() {
		ps.updateStatus(0)
	}
}

// updateStatus aggregates the processed interval into a percentage.
// Children forward to the parent so the percentage covers the whole
// interval; the lock serializes workers and keeps the printout sane.
func (ps *PrimeSieve) updateStatus(processed uint64) {
	if ps.parent != nil {
		ps.parent.updateStatus(processed)
		return
	}
	ps.lock.Lock()
	defer ps.lock.Unlock()
	ps.sumSegments += processed
	old := int(ps.status)
	ps.status = math.Min(float64(ps.sumSegments)/ps.interval*100.0, 100.0)
	if ps.isFlag(PrintStatus) {
		if status := int(ps.status); status > old {
			fmt.Fprintf(ps.out, "\r%d%%", status)
		}
	}
}

func (ps *PrimeSieve) finishStatus() {
	ps.lock.Lock()
	defer ps.lock.Unlock()
	old := int(ps.status)
	ps.status = 100
	if ps.isFlag(PrintStatus) && old < 100 {
		fmt.Fprintf(ps.out, "\r100%%")
	}
}

func (ps *PrimeSieve) doSmallPrime(sp *smallPrime) {
	if ps.start <= sp.min && sp.max <= ps.stop {
		ps.lock.Lock()
		defer ps.lock.Unlock()
		if sp.index == 0 {
			switch {
			case ps.isFlag(CallbackPrimes64):
				ps.cb64(sp.min)
			case ps.isFlag(CallbackPrimes32):
				ps.cb32(uint32(sp.min))
			case ps.isFlag(CallbackVisitor64):
				ps.visitor.VisitPrime(sp.min)
			case ps.isFlag(CallbackVisitor32):
				ps.visitor32.VisitPrime32(uint32(sp.min))
			}
		}
		if ps.isCount(sp.index + 1) {
			ps.counts[sp.index]++
		}
		if ps.isPrint(sp.index + 1) {
			fmt.Fprintln(ps.out, sp.str)
		}
	}
}

// Sieve sieves the primes and prime k-tuplets within [start, stop] and
// applies the observable effects selected by flags.
func (ps *PrimeSieve) Sieve(start, stop uint64, flags int) error {
	if err := ps.SetStart(start); err != nil {
		return err
	}
	if err := ps.SetStop(stop); err != nil {
		return err
	}
	if err := ps.SetFlags(flags); err != nil {
		return err
	}
	return ps.sieve()
}

func (ps *PrimeSieve) sieve() error {
	if ps.stop < ps.start {
		return errors.Wrapf(ErrInvalidArgument, "STOP %d must be >= START %d", ps.stop, ps.start)
	}
	if ps.isFlag(CallbackPrimes32) && ps.cb32 == nil ||
		ps.isFlag(CallbackPrimes64) && ps.cb64 == nil ||
		ps.isFlag(CallbackVisitor32) && ps.visitor32 == nil ||
		ps.isFlag(CallbackVisitor64) && ps.visitor == nil {
		return errors.Wrap(ErrInvalidArgument, "callback mode set without a callback")
	}
	t := time.Now()
	ps.reset()
	log.WithFields(logrus.Fields{
		"start": ps.start,
		"stop":  ps.stop,
		"flags": fmt.Sprintf("%#x", ps.flags),
	}).Debug("sieve")

	// the wheel cannot represent 2, 3 and 5, do them manually
	if ps.start <= 5 {
		for i := range smallPrimes {
			ps.doSmallPrime(&smallPrimes[i])
		}
	}

	if ps.stop >= 7 {
		if ps.pre == nil || ps.pre.limit != ps.preSieveLimit {
			ps.pre = newPreSieve(ps.preSieveLimit)
		}
		finder, err := newPrimeFinder(ps)
		if err != nil {
			return err
		}
		if finder.soe.needsSievingPrimes() {
			gen, err := newPrimeGenerator(finder.soe, ps.cfg)
			if err != nil {
				return err
			}
			if err := gen.run(); err != nil {
				return err
			}
		}
		if err := finder.soe.finish(); err != nil {
			return err
		}
	}

	ps.seconds = time.Since(t).Seconds()
	if ps.isStatus() && ps.parent == nil {
		ps.finishStatus()
	}
	log.WithField("seconds", ps.seconds).Debug("sieve done")
	return nil
}

// Convenience count methods.

func (ps *PrimeSieve) countN(start, stop uint64, n int) (uint64, error) {
	if err := ps.Sieve(start, stop, CountPrimes<<(n-1)); err != nil {
		return 0, err
	}
	return ps.counts[n-1], nil
}

func (ps *PrimeSieve) GetPrimeCount(start, stop uint64) (uint64, error) {
	return ps.countN(start, stop, 1)
}

func (ps *PrimeSieve) GetTwinCount(start, stop uint64) (uint64, error) {
	return ps.countN(start, stop, 2)
}

func (ps *PrimeSieve) GetTripletCount(start, stop uint64) (uint64, error) {
	return ps.countN(start, stop, 3)
}

func (ps *PrimeSieve) GetQuadrupletCount(start, stop uint64) (uint64, error) {
	return ps.countN(start, stop, 4)
}

func (ps *PrimeSieve) GetQuintupletCount(start, stop uint64) (uint64, error) {
	return ps.countN(start, stop, 5)
}

func (ps *PrimeSieve) GetSextupletCount(start, stop uint64) (uint64, error) {
	return ps.countN(start, stop, 6)
}

func (ps *PrimeSieve) GetSeptupletCount(start, stop uint64) (uint64, error) {
	return ps.countN(start, stop, 7)
}

// Convenience print methods, one prime or k-tuplet per line.

func (ps *PrimeSieve) printN(start, stop uint64, n int) error {
	return ps.Sieve(start, stop, PrintPrimes<<(n-1))
}

func (ps *PrimeSieve) PrintPrimes(start, stop uint64) error {
	return ps.printN(start, stop, 1)
}

func (ps *PrimeSieve) PrintTwins(start, stop uint64) error {
	return ps.printN(start, stop, 2)
}

func (ps *PrimeSieve) PrintTriplets(start, stop uint64) error {
	return ps.printN(start, stop, 3)
}

func (ps *PrimeSieve) PrintQuadruplets(start, stop uint64) error {
	return ps.printN(start, stop, 4)
}

func (ps *PrimeSieve) PrintQuintuplets(start, stop uint64) error {
	return ps.printN(start, stop, 5)
}

func (ps *PrimeSieve) PrintSextuplets(start, stop uint64) error {
	return ps.printN(start, stop, 6)
}

func (ps *PrimeSieve) PrintSeptuplets(start, stop uint64) error {
	return ps.printN(start, stop, 7)
}

// GeneratePrimes invokes cb once per prime in [start, stop] in increasing
// order. Pre-sieving is lowered to 17 to speed up initialization of short
// intervals.
func (ps *PrimeSieve) GeneratePrimes(start, stop uint64, cb func(uint64)) error {
	if cb == nil {
		return errors.Wrap(ErrInvalidArgument, "callback must not be nil")
	}
	ps.cb64 = cb
	ps.preSieveLimit = 17
	return ps.Sieve(start, stop, CallbackPrimes64)
}

// GeneratePrimes32 is the 32-bit variant of GeneratePrimes.
func (ps *PrimeSieve) GeneratePrimes32(start, stop uint32, cb func(uint32)) error {
	if cb == nil {
		return errors.Wrap(ErrInvalidArgument, "callback must not be nil")
	}
	ps.cb32 = cb
	ps.preSieveLimit = 17
	return ps.Sieve(uint64(start), uint64(stop), CallbackPrimes32)
}

// VisitPrimes calls v.VisitPrime once per prime in [start, stop]. The
// visitor replaces a raw callback + context pointer pair; close over
// whatever state you need.
func (ps *PrimeSieve) VisitPrimes(start, stop uint64, v PrimeVisitor) error {
	if v == nil {
		return errors.Wrap(ErrInvalidArgument, "visitor must not be nil")
	}
	ps.visitor = v
	ps.preSieveLimit = 17
	return ps.Sieve(start, stop, CallbackVisitor64)
}

// VisitPrimes32 is the 32-bit variant of VisitPrimes.
func (ps *PrimeSieve) VisitPrimes32(start, stop uint32, v PrimeVisitor32) error {
	if v == nil {
		return errors.Wrap(ErrInvalidArgument, "visitor must not be nil")
	}
	ps.visitor32 = v
	ps.preSieveLimit = 17
	return ps.Sieve(uint64(start), uint64(stop), CallbackVisitor32)
}
