// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

package sieve

// Flags for Sieve. Count flags may be combined freely; print flags and
// callback flags are the front-end's responsibility to keep apart.
const (
	CountPrimes = 1 << iota
	CountTwins
	CountTriplets
	CountQuadruplets
	CountQuintuplets
	CountSextuplets
	CountSeptuplets
	PrintPrimes
	PrintTwins
	PrintTriplets
	PrintQuadruplets
	PrintQuintuplets
	PrintSextuplets
	PrintSeptuplets
	CallbackPrimes32
	CallbackPrimes64
	CallbackVisitor32
	CallbackVisitor64
	CalculateStatus
	PrintStatus

	CountKTuplets = CountTwins | CountTriplets | CountQuadruplets |
		CountQuintuplets | CountSextuplets | CountSeptuplets
	PrintKTuplets = PrintTwins | PrintTriplets | PrintQuadruplets |
		PrintQuintuplets | PrintSextuplets | PrintSeptuplets
	CallbackFlags = CallbackPrimes32 | CallbackPrimes64 | CallbackVisitor32 | CallbackVisitor64
	PrintFlags    = PrintPrimes | PrintKTuplets

	flagLimit = 1 << 20
)

func validFlags(flags int) bool {
	return flags >= 0 && flags < flagLimit
}

func (ps *PrimeSieve) isFlag(flags int) bool {
	return ps.flags&flags != 0
}

// k-tuplet order n is 1 for primes through 7 for septuplets.
func (ps *PrimeSieve) isCount(n int) bool {
	return ps.isFlag(CountPrimes << (n - 1))
}

func (ps *PrimeSieve) isPrint(n int) bool {
	return ps.isFlag(PrintPrimes << (n - 1))
}

func (ps *PrimeSieve) isStatus() bool {
	return ps.isFlag(CalculateStatus | PrintStatus)
}
