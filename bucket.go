// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve

// A sievingPrime record tracks one prime <= sqrt(stop) between segments:
// the compressed prime (p/30, which the wheel multiplies by dq), the byte
// offset of its next multiple relative to the next unsieved segment, and
// its wheel index.
type sievingPrime struct {
	sievingPrime  uint32
	multipleIndex uint32
	wheelIndex    uint32
}

// Buckets live in an arena and link to each other through int32 handles
// instead of pointers, so bucket lists are just head indices and moving a
// record between lists never touches an allocator.
const nilBucket = int32(-1)

type bucket struct {
	next   int32
	count  int32
	primes []sievingPrime
}

type bucketArena struct {
	capacity int
	buckets  []bucket
	free     int32 // head of the free list
}

func newBucketArena(capacity int) *bucketArena {
	return &bucketArena{capacity: capacity, free: nilBucket}
}

// alloc returns the handle of an empty bucket.
func (a *bucketArena) alloc() int32 {
	if a.free != nilBucket {
		h := a.free
		b := &a.buckets[h]
		a.free = b.next
		b.next = nilBucket
		b.count = 0
		return h
	}
	h := int32(len(a.buckets))
	a.buckets = append(a.buckets, bucket{
		next:   nilBucket,
		primes: make([]sievingPrime, a.capacity),
	})
	return h
}

func (a *bucketArena) release(h int32) {
	b := &a.buckets[h]
	b.next = a.free
	b.count = 0
	a.free = h
}

// push stores a sieving prime at the head bucket of the list rooted at
// *head, growing the list when the head bucket is full.
func (a *bucketArena) push(head *int32, sp sievingPrime) {
	h := *head
	if h == nilBucket || int(a.buckets[h].count) == a.capacity {
		n := a.alloc()
		a.buckets[n].next = h
		*head = n
		h = n
	}
	b := &a.buckets[h]
	b.primes[b.count] = sp
	b.count++
}
