//go:build !windows

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// registerQuitHandler registers a SIGQUIT handler that exits immediately
// without the graceful shutdown. kill runs first so the recognizer is not
// left behind.
func registerQuitHandler(kill func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGQUIT)
	go func() {
		<-sigs
		fmt.Fprintln(os.Stderr, "SIGQUIT: stopping immediately")
		if kill != nil {
			kill()
		}
		os.Exit(1)
	}()
}
