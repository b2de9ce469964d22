// Copyright © 2016 Lawrence E. Bakst. All rights reserved.

// Package siginfo installs a signal handler so a long sieve run can be
// poked for a progress report from the terminal.
package siginfo

import (
	"os"
	"os/signal"
	"syscall"
)

// SIGINFO isn't part of the stdlib, but it's 29 on most systems;
// Linux has no SIGINFO, so SIGUSR1 is hooked as well.
const SIGINFO = syscall.Signal(29)

func SetHandler(f func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, SIGINFO, syscall.SIGUSR1)

	go func() {
		for range ch {
			f()
		}
	}()
}
