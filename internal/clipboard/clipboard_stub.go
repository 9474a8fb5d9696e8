//go:build !(windows || (cgo && (linux || freebsd || openbsd || netbsd || dragonfly || darwin)))

package clipboard

import "errors"

var errUnsupported = errors.New("clipboard operations require cgo support on this platform")

func readPNG() ([]byte, error) { return nil, errUnsupported }

func readText() ([]byte, error) { return nil, errUnsupported }

func writePNG([]byte) error { return errUnsupported }

func writeText(string) error { return errUnsupported }
