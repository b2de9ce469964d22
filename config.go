// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve

// MaxStop is the largest value that may be sieved. Crossing off the last
// multiple of a sieving prime (< 2^32) can step up to 10 times the prime
// past stop, so the top of the uint64 range stays reserved for that headroom.
const MaxStop = maxUint64 - 10*uint64(^uint32(0))

// Configuration for the sieve is collected in this structure.
// All fields are exported/public; a PrimeSieve copies it at construction
// and never mutates the original.
type Config struct {
	SieveSize          int    // segment size in kilobytes, 1..4096, power of 2
	PreSieve           int    // pre-sieve multiples of primes <= PreSieve, 13..23
	GeneratorSieveSize int    // segment size of the sieving-prime generator in kilobytes
	GeneratorPreSieve  int    // pre-sieve limit of the generator
	BucketCapacity     int    // sieving primes per bucket
	MinThreadInterval  uint64 // below this interval the parallel driver stays sequential
}

// DefaultConfig works well on CPUs with 32 KB of L1 data cache.
var DefaultConfig = Config{
	SieveSize:          32,
	PreSieve:           19,
	GeneratorSieveSize: 32,
	GeneratorPreSieve:  13,
	BucketCapacity:     1024,
	MinThreadInterval:  10000000,
}
