// Package capture grabs the screen as an image intake source.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/example/bananaboard/internal/intake"
)

// ErrCancelled is returned when the user dismisses an interactive capture.
var ErrCancelled = errors.New("screenshot cancelled")

// Options tunes a capture.
type Options struct {
	// Interactive lets the user pick a region or window through the desktop
	// portal. It has no effect on the X11 fallback.
	Interactive   bool
	IncludeCursor bool
}

// Screen captures the desktop. The portal is tried first; on X11 sessions a
// root window grab is used when the portal is unavailable.
func Screen(ctx context.Context, opts Options) (intake.File, error) {
	data, err := portalScreenshot(ctx, opts)
	if err == nil {
		return intake.FromBytes("screenshot.png", "image/png", data), nil
	}
	if errors.Is(err, ErrCancelled) || ctx.Err() != nil || runningOnWayland() {
		return intake.File{}, err
	}
	log.Printf("portal screenshot: %v; trying X11", err)
	img, xerr := rootWindowImage()
	if xerr != nil {
		return intake.File{}, fmt.Errorf("screenshot: %v; x11 fallback: %w", err, xerr)
	}
	shot, xerr := intake.FromImage(img)
	if xerr != nil {
		return intake.File{}, xerr
	}
	return intake.FromBytes("screenshot.png", shot.MIMEType, shot.Data), nil
}
