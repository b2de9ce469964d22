// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve

import (
	"runtime"
	"time"

	"github.com/klauspost/cpuid/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ParallelPrimeSieve partitions [start, stop] into one sub-interval per
// worker, sieves them concurrently and reduces the counts after all
// workers have joined. Workers share no mutable sieve state; only the
// output writer and the status aggregation sit behind the parent's lock.
//
// Registered callbacks are invoked concurrently from several workers and
// must be reentrant; the engine does not serialize them. Print modes run
// on a single worker so output stays in increasing order.
type ParallelPrimeSieve struct {
	PrimeSieve
	// NumThreads is the number of workers used by Sieve. 0 selects
	// IdealNumThreads().
	NumThreads int
}

func NewParallelPrimeSieve() *ParallelPrimeSieve {
	return NewParallelPrimeSieveConfig(DefaultConfig)
}

func NewParallelPrimeSieveConfig(cfg Config) *ParallelPrimeSieve {
	return &ParallelPrimeSieve{PrimeSieve: *NewPrimeSieveConfig(cfg)}
}

const maxThreads = 4096

// IdealNumThreads is one worker per physical core, bounded by the size of
// the interval so short runs don't pay the fan-out overhead.
func (pps *ParallelPrimeSieve) IdealNumThreads() int {
	threads := cpuid.CPU.PhysicalCores
	if threads < 1 {
		threads = runtime.NumCPU()
	}
	interval := subUnderflowSafe(pps.stop, pps.start)
	if max := int(interval/pps.cfg.MinThreadInterval) + 1; threads > max {
		threads = max
	}
	if threads < 1 {
		threads = 1
	}
	return threads
}

// Sieve sieves [start, stop] with NumThreads workers. Counts equal those
// of a sequential run; there is no ordering guarantee between workers
// unless a print flag forces a single worker.
func (pps *ParallelPrimeSieve) Sieve(start, stop uint64, flags int) error {
	if err := pps.SetStart(start); err != nil {
		return err
	}
	if err := pps.SetStop(stop); err != nil {
		return err
	}
	if err := pps.SetFlags(flags); err != nil {
		return err
	}

	threads := pps.NumThreads
	if threads == 0 {
		threads = pps.IdealNumThreads()
	}
	if threads < 1 || threads > maxThreads {
		return errors.Wrapf(ErrInvalidArgument, "invalid number of threads %d", threads)
	}
	if pps.isFlag(PrintFlags) {
		threads = 1 // printed output must appear in increasing order
	}
	// a worker needs at least one bitmap byte of interval
	if max := int(subUnderflowSafe(pps.stop, pps.start)/numbersPerByte) + 1; threads > max {
		threads = max
	}
	if threads == 1 {
		return pps.PrimeSieve.sieve()
	}

	pps.reset()
	if pps.pre == nil || pps.pre.limit != pps.preSieveLimit {
		pps.pre = newPreSieve(pps.preSieveLimit)
	}
	bounds := subIntervals(pps.start, pps.stop, threads)
	log.WithFields(logrus.Fields{
		"start":   pps.start,
		"stop":    pps.stop,
		"threads": len(bounds) - 1,
	}).Debug("parallel sieve")

	children := make([]*PrimeSieve, len(bounds)-1)
	var g errgroup.Group
	t := time.Now()
	for i := range children {
		child := newChildSieve(&pps.PrimeSieve)
		child.start = bounds[i]
		child.stop = bounds[i+1] - 1
		children[i] = child
		g.Go(child.sieve)
	}
	err := g.Wait()
	pps.seconds = time.Since(t).Seconds()
	if err != nil {
		return err
	}

	// reduce after join, not under the lock
	for _, child := range children {
		for i, c := range child.counts {
			pps.counts[i] += c
		}
	}
	if pps.isStatus() {
		pps.finishStatus()
	}
	return nil
}

// subIntervals splits [start, stop] into n sub-intervals of roughly equal
// length. Interior boundaries are congruent 2 mod 30, which places every
// boundary between two bitmap bytes: since all k-tuplet patterns live
// inside a single byte, no k-tuplet can straddle two workers.
func subIntervals(start, stop uint64, n int) []uint64 {
	chunk := (stop - start) / uint64(n)
	bounds := make([]uint64, 0, n+1)
	bounds = append(bounds, start)
	for i := 1; i < n; i++ {
		b := start + uint64(i)*chunk
		b = b - b%numbersPerByte + 2
		if b <= bounds[len(bounds)-1] {
			continue
		}
		if b > stop {
			break
		}
		bounds = append(bounds, b)
	}
	bounds = append(bounds, addOverflowSafe(stop, 1))
	return bounds
}

// Convenience members mirroring PrimeSieve's; these dispatch through the
// parallel Sieve.

func (pps *ParallelPrimeSieve) countN(start, stop uint64, n int) (uint64, error) {
	if err := pps.Sieve(start, stop, CountPrimes<<(n-1)); err != nil {
		return 0, err
	}
	return pps.counts[n-1], nil
}

func (pps *ParallelPrimeSieve) GetPrimeCount(start, stop uint64) (uint64, error) {
	return pps.countN(start, stop, 1)
}

func (pps *ParallelPrimeSieve) GetTwinCount(start, stop uint64) (uint64, error) {
	return pps.countN(start, stop, 2)
}

func (pps *ParallelPrimeSieve) GetTripletCount(start, stop uint64) (uint64, error) {
	return pps.countN(start, stop, 3)
}

func (pps *ParallelPrimeSieve) GetQuadrupletCount(start, stop uint64) (uint64, error) {
	return pps.countN(start, stop, 4)
}

func (pps *ParallelPrimeSieve) GetQuintupletCount(start, stop uint64) (uint64, error) {
	return pps.countN(start, stop, 5)
}

func (pps *ParallelPrimeSieve) GetSextupletCount(start, stop uint64) (uint64, error) {
	return pps.countN(start, stop, 6)
}

func (pps *ParallelPrimeSieve) GetSeptupletCount(start, stop uint64) (uint64, error) {
	return pps.countN(start, stop, 7)
}

func (pps *ParallelPrimeSieve) PrintPrimes(start, stop uint64) error {
	return pps.Sieve(start, stop, PrintPrimes)
}

func (pps *ParallelPrimeSieve) PrintTwins(start, stop uint64) error {
	return pps.Sieve(start, stop, PrintTwins)
}
