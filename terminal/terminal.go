// Package terminal puts the controlling terminal into raw mode and reports
// its size.
package terminal

import "io"

type Terminal interface {
	EnableRawMode() error
	DisableRawMode() error
	GetWindowSize() (width, height int, err error)
	Stdin() io.Reader
	Stdout() io.Writer
	// NotifyResize sends on ch whenever the window size may have changed,
	// until stop is called. Platforms without a resize signal never send;
	// callers poll GetWindowSize as well.
	NotifyResize(ch chan<- struct{}) (stop func())
	Close() error
}

const (
	fallbackWidth  = 80
	fallbackHeight = 24
)
