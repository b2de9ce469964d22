// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve_test

import (
	"bytes"
	"flag"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "leb.io/sieve"
	"leb.io/sieve/internal/sievetest"
)

var long = flag.Bool("long", false, "run the expensive pi(10^n) checks")

// classical sieve used as reference for small intervals
func simpleSieve(limit uint64) []bool {
	prime := make([]bool, limit+1)
	for i := range prime {
		prime[i] = true
	}
	prime[0] = false
	if limit >= 1 {
		prime[1] = false
	}
	for i := uint64(2); i*i <= limit; i++ {
		if prime[i] {
			for j := i * i; j <= limit; j += i {
				prime[j] = false
			}
		}
	}
	return prime
}

func simpleCount(prime []bool, start, stop uint64) uint64 {
	n := uint64(0)
	for v := start; v <= stop; v++ {
		if prime[v] {
			n++
		}
	}
	return n
}

var pi = []uint64{4, 25, 168, 1229, 9592, 78498, 664579, 5761455,
	50847534, 455052511, 4118054813, 37607912018}

func TestPrimeCountsPowersOf10(t *testing.T) {
	ps := NewPrimeSieve()
	stop := uint64(1)
	for n := 1; n <= 7; n++ {
		stop *= 10
		count, err := ps.GetPrimeCount(0, stop)
		require.NoError(t, err)
		assert.Equal(t, pi[n-1], count, "pi(10^%d)", n)
	}
}

func TestPrimeCountsPowersOf10Large(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	ps := NewPrimeSieve()
	count, err := ps.GetPrimeCount(0, 100000000)
	require.NoError(t, err)
	assert.Equal(t, pi[7], count)

	if !*long {
		t.Skip("pass -long to verify pi(10^9)..pi(10^12)")
	}
	stop := uint64(100000000)
	for n := 9; n <= 12; n++ {
		stop *= 10
		count, err := ps.GetPrimeCount(0, stop)
		require.NoError(t, err)
		assert.Equal(t, pi[n-1], count, "pi(10^%d)", n)
	}
}

func TestBoundaries(t *testing.T) {
	ps := NewPrimeSieve()
	for _, c := range []struct {
		start, stop, count uint64
	}{
		{0, 0, 0},
		{0, 1, 0},
		{0, 2, 1},
		{2, 2, 1},
		{3, 3, 1},
		{4, 4, 0},
		{0, 6, 3},
		{7, 7, 1},
		{0, 100, 25},
		{100, 100, 0},
		{99, 101, 1},
	} {
		count, err := ps.GetPrimeCount(c.start, c.stop)
		require.NoError(t, err)
		assert.Equal(t, c.count, count, "count(%d, %d)", c.start, c.stop)
	}
}

func TestCountsAgainstReference(t *testing.T) {
	const limit = 200000
	prime := simpleSieve(limit)
	ps := NewPrimeSieve()
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		a := uint64(r.Intn(limit))
		b := a + uint64(r.Intn(limit-int(a)))
		count, err := ps.GetPrimeCount(a, b)
		require.NoError(t, err)
		assert.Equal(t, simpleCount(prime, a, b), count, "count(%d, %d)", a, b)
	}
}

func TestIntervalAdditivity(t *testing.T) {
	ps := NewPrimeSieve()
	r := rand.New(rand.NewSource(7))
	for _, base := range []uint64{0, 1000000000, 10000000000000} {
		a := base + uint64(r.Intn(1000))
		c := a + 2000000
		b := a + uint64(r.Intn(2000000))
		ab, err := ps.GetPrimeCount(a, b)
		require.NoError(t, err)
		bc, err := ps.GetPrimeCount(b+1, c)
		require.NoError(t, err)
		ac, err := ps.GetPrimeCount(a, c)
		require.NoError(t, err)
		assert.Equal(t, ac, ab+bc, "[%d, %d] + [%d, %d]", a, b, b+1, c)
	}
}

func TestPreSieveInvariance(t *testing.T) {
	want := uint64(0)
	for limit := 13; limit <= 23; limit++ {
		ps := NewPrimeSieve()
		require.NoError(t, ps.SetPreSieve(limit))
		count, err := ps.GetPrimeCount(12345, 2345678)
		require.NoError(t, err)
		if limit == 13 {
			want = count
		}
		assert.Equal(t, want, count, "preSieve %d", limit)
	}
}

func TestSieveSizeInvariance(t *testing.T) {
	want := uint64(0)
	for i, kb := range []int{1, 32, 64, 256, 4096} {
		ps := NewPrimeSieve()
		require.NoError(t, ps.SetSieveSize(kb))
		count, err := ps.GetPrimeCount(0, 2000000)
		require.NoError(t, err)
		if i == 0 {
			want = count
		}
		assert.Equal(t, want, count, "sieveSize %d KB", kb)
	}
}

func TestHighInterval(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	ps := NewPrimeSieve()
	count, err := ps.GetPrimeCount(1000000000000, 1000000000000+1000000)
	require.NoError(t, err)
	assert.Equal(t, uint64(33489), count)
	twins, err := ps.GetTwinCount(1000000000000, 1000000000000+1000000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1353), twins)
}

func TestTupletCounts(t *testing.T) {
	ps := NewPrimeSieve()
	twins, err := ps.GetTwinCount(0, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), twins)

	triplets, err := ps.GetTripletCount(0, 100)
	require.NoError(t, err)
	// (5,7,11) (7,11,13) (11,13,17) (13,17,19) (17,19,23) (37,41,43)
	// (41,43,47) (67,71,73) (97,101,103) is cut off by stop=100
	assert.Equal(t, uint64(8), triplets)

	quads, err := ps.GetQuadrupletCount(0, 20)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), quads) // (5,7,11,13) (11,13,17,19)

	quints, err := ps.GetQuintupletCount(0, 20)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), quints) // (5,7,11,13,17) (7,11,13,17,19)

	sext, err := ps.GetSextupletCount(0, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sext) // (7,11,13,17,19,23)
}

func TestSeptupletCount(t *testing.T) {
	ps := NewPrimeSieve()
	sept, err := ps.GetSeptupletCount(0, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sept) // (11,13,17,19,23,29,31)

	if testing.Short() {
		t.Skip("short mode")
	}
	sept, err = ps.GetSeptupletCount(0, 1000000000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sept)
}

// the twin count must match a scan over the prime sequence
func TestTupletConsistency(t *testing.T) {
	const stop = 100000
	var c sievetest.Collector
	ps := NewPrimeSieve()
	require.NoError(t, ps.VisitPrimes(0, stop+2, &c))
	isPrime := make(map[uint64]bool, len(c.Primes))
	for _, p := range c.Primes {
		isPrime[p] = true
	}
	want := uint64(0)
	for _, p := range c.Primes {
		if p+2 <= stop && isPrime[p+2] {
			want++
		}
	}
	twins, err := ps.GetTwinCount(0, stop)
	require.NoError(t, err)
	assert.Equal(t, want, twins)
}

func TestCombinedCountFlags(t *testing.T) {
	ps := NewPrimeSieve()
	require.NoError(t, ps.Sieve(0, 100, CountPrimes|CountTwins|CountSextuplets))
	counts := ps.GetCounts()
	assert.Equal(t, uint64(25), counts[0])
	assert.Equal(t, uint64(8), counts[1])
	assert.Equal(t, uint64(1), counts[5])
}

func TestPrintPrimes(t *testing.T) {
	var buf bytes.Buffer
	ps := NewPrimeSieve()
	ps.SetOutput(&buf)
	require.NoError(t, ps.PrintPrimes(10, 30))
	assert.Equal(t, "11\n13\n17\n19\n23\n29\n", buf.String())
}

func TestPrintTwins(t *testing.T) {
	var buf bytes.Buffer
	ps := NewPrimeSieve()
	ps.SetOutput(&buf)
	require.NoError(t, ps.PrintTwins(0, 100))
	want := "(3, 5)\n(5, 7)\n(11, 13)\n(17, 19)\n(29, 31)\n(41, 43)\n(59, 61)\n(71, 73)\n"
	assert.Equal(t, want, buf.String())
}

func TestPrintQuintuplets(t *testing.T) {
	var buf bytes.Buffer
	ps := NewPrimeSieve()
	ps.SetOutput(&buf)
	require.NoError(t, ps.PrintQuintuplets(0, 110))
	want := "(5, 7, 11, 13, 17)\n(7, 11, 13, 17, 19)\n(11, 13, 17, 19, 23)\n(97, 101, 103, 107, 109)\n"
	assert.Equal(t, want, buf.String())
}

func TestGeneratePrimes(t *testing.T) {
	ps := NewPrimeSieve()
	var got []uint64
	require.NoError(t, ps.GeneratePrimes(0, 30, func(p uint64) {
		got = append(got, p)
	}))
	assert.Equal(t, []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}, got)

	var got32 []uint32
	require.NoError(t, ps.GeneratePrimes32(90, 110, func(p uint32) {
		got32 = append(got32, p)
	}))
	assert.Equal(t, []uint32{97, 101, 103, 107, 109}, got32)
}

func TestVisitPrimesMatchesCallback(t *testing.T) {
	ps := NewPrimeSieve()
	d1 := sievetest.NewDigest()
	require.NoError(t, ps.VisitPrimes(0, 1000000, d1))

	d2 := sievetest.NewDigest()
	require.NoError(t, ps.GeneratePrimes(0, 1000000, d2.VisitPrime))

	assert.Equal(t, d1.Count, d2.Count)
	assert.Equal(t, uint64(78498), d1.Count)
	h1a, h1b := d1.Sum()
	h2a, h2b := d2.Sum()
	assert.Equal(t, h1a, h2a)
	assert.Equal(t, h1b, h2b)
	assert.Equal(t, uint64(999983), d1.Last)
}

func TestStatus(t *testing.T) {
	ps := NewPrimeSieve()
	require.NoError(t, ps.Sieve(0, 1000000, CountPrimes|CalculateStatus))
	assert.Equal(t, float64(100), ps.GetStatus())

	var buf bytes.Buffer
	ps.SetOutput(&buf)
	require.NoError(t, ps.Sieve(0, 1000000, CountPrimes|PrintStatus))
	assert.Contains(t, buf.String(), "\r100%")
}

func TestErrors(t *testing.T) {
	ps := NewPrimeSieve()

	err := ps.Sieve(5, 2, CountPrimes)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = ps.SetFlags(1 << 20)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	err = ps.SetFlags(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.ErrorIs(t, ps.SetPreSieve(12), ErrOutOfRange)
	assert.ErrorIs(t, ps.SetPreSieve(24), ErrOutOfRange)
	assert.ErrorIs(t, ps.SetSieveSize(0), ErrOutOfRange)
	assert.ErrorIs(t, ps.SetSieveSize(5000), ErrOutOfRange)
	assert.ErrorIs(t, ps.SetStart(MaxStop+1), ErrOutOfRange)
	assert.ErrorIs(t, ps.SetStop(MaxStop+1), ErrOutOfRange)

	assert.ErrorIs(t, ps.GeneratePrimes(0, 10, nil), ErrInvalidArgument)
	assert.ErrorIs(t, ps.VisitPrimes(0, 10, nil), ErrInvalidArgument)

	err = ps.Sieve(0, 10, CallbackPrimes64)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSieveSizeRounding(t *testing.T) {
	ps := NewPrimeSieve()
	require.NoError(t, ps.SetSieveSize(33))
	assert.Equal(t, 64, ps.GetSieveSize())
	require.NoError(t, ps.SetSieveSize(4096))
	assert.Equal(t, 4096, ps.GetSieveSize())
}

func BenchmarkPrimeCount1e7(b *testing.B) {
	ps := NewPrimeSieve()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ps.GetPrimeCount(0, 10000000)
	}
}

func BenchmarkPrimeCountOffset(b *testing.B) {
	ps := NewPrimeSieve()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ps.GetPrimeCount(1000000000000, 1000000000000+1000000)
	}
}
