//go:build !windows
// +build !windows

// Package platform holds OS specific process plumbing.
package platform

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// NewShutdownContext returns a context cancelled on SIGINT or SIGTERM. Both
// the interactive menu and the HTTP server stop when it is done.
func NewShutdownContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
