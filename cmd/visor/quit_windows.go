//go:build windows

package main

// registerQuitHandler is a no-op on Windows, which has no SIGQUIT.
func registerQuitHandler(func()) {}
