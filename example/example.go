// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

// This program provides a command line interface to the sieve package.
// It counts or prints the primes and prime k-tuplets in [start, stop],
// optionally in parallel, and reports the sieve rate. Send SIGINFO (or
// SIGUSR1) to print a one-line progress report of a running sieve; the
// percentage is only tracked when -v is given.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"leb.io/hrff"
	"leb.io/sieve"
	"leb.io/sieve/internal/siginfo"
)

var start = flag.Uint64("start", 0, "start of the sieve interval")
var stop = flag.Uint64("stop", 1000000000, "end of the sieve interval")
var tuplets = flag.Int("k", 1, "count prime k-tuplets of this order, 1..7")
var pr = flag.Bool("p", false, "print instead of count")
var threads = flag.Int("t", 0, "number of threads, 0 means one per core")
var sieveSize = flag.Int("s", 0, "sieve size in kilobytes, 0 for the default")
var preSieve = flag.Int("ps", 0, "pre-sieve limit, 0 for the default")
var status = flag.Bool("v", false, "print sieving status")
var cp = flag.String("cp", "", "write cpu profile to file")

func main() {
	flag.Parse()
	if *cp != "" {
		f, err := os.Create(*cp)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}
	if *tuplets < 1 || *tuplets > 7 {
		log.Fatalf("bad k-tuplet order %d", *tuplets)
	}

	ps := sieve.NewParallelPrimeSieve()
	ps.NumThreads = *threads
	if *sieveSize != 0 {
		if err := ps.SetSieveSize(*sieveSize); err != nil {
			log.Fatal(err)
		}
	}
	if *preSieve != 0 {
		if err := ps.SetPreSieve(*preSieve); err != nil {
			log.Fatal(err)
		}
	}

	flags := sieve.CountPrimes << (*tuplets - 1)
	if *pr {
		flags = sieve.PrintPrimes << (*tuplets - 1)
	}
	if *status {
		flags |= sieve.PrintStatus
	}
	siginfo.SetHandler(func() {
		fmt.Fprintf(os.Stderr, "\r%.0f%% of [%d, %d]\n", ps.GetStatus(), ps.GetStart(), ps.GetStop())
	})

	t := time.Now()
	if err := ps.Sieve(*start, *stop, flags); err != nil {
		log.Fatal(err)
	}
	d := time.Since(t)
	if *status {
		fmt.Println()
	}

	counts := ps.GetCounts()
	if !*pr {
		fmt.Printf("count: %d\n", counts[*tuplets-1])
	}
	interval := hrff.Float64{V: float64(*stop - *start + 1), U: "numbers"}
	rate := hrff.Float64{V: float64(*stop-*start+1) / d.Seconds(), U: "numbers/sec"}
	fmt.Printf("sieved %h in %v, %h\n", interval, d, rate)
}
