//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"context"
	"errors"
	"image"
)

var errUnsupported = errors.New("screen capture is not supported on this platform")

func portalScreenshot(context.Context, Options) ([]byte, error) { return nil, errUnsupported }

func rootWindowImage() (*image.RGBA, error) { return nil, errUnsupported }

func runningOnWayland() bool { return false }
