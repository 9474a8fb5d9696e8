//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/jezek/xgb/xproto"
)

func TestPortalScreenshotOptions(t *testing.T) {
	prevToken := portalHandleToken
	portalHandleToken = func() string { return "test-token" }
	t.Cleanup(func() { portalHandleToken = prevToken })

	tests := []struct {
		name       string
		opts       Options
		wantCursor string
	}{
		{"defaults", Options{}, "hidden"},
		{"interactive with cursor", Options{Interactive: true, IncludeCursor: true}, "embedded"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			values := portalScreenshotOptions(tc.opts)
			if got := values["interactive"].Value(); got != tc.opts.Interactive {
				t.Fatalf("interactive = %v", got)
			}
			if got := values["modal"].Value(); got != tc.opts.Interactive {
				t.Fatalf("modal = %v", got)
			}
			if got := values["cursor_mode"].Value(); got != tc.wantCursor {
				t.Fatalf("cursor_mode = %v, want %q", got, tc.wantCursor)
			}
			if got := values["handle_token"].Value(); got != "test-token" {
				t.Fatalf("handle_token = %v", got)
			}
			if len(values) != 4 {
				t.Fatalf("expected 4 options, got %d", len(values))
			}
		})
	}
}

func TestPortalResponsePath(t *testing.T) {
	ok := map[string]dbus.Variant{"uri": dbus.MakeVariant("file:///tmp/Screenshot%20from%20today.png")}
	tests := []struct {
		name      string
		body      []any
		want      string
		wantErr   bool
		cancelled bool
	}{
		{name: "success", body: []any{uint32(0), ok}, want: "/tmp/Screenshot from today.png"},
		{name: "cancelled", body: []any{uint32(1), ok}, wantErr: true, cancelled: true},
		{name: "short body", body: []any{uint32(0)}, wantErr: true},
		{name: "no uri", body: []any{uint32(0), map[string]dbus.Variant{}}, wantErr: true},
		{name: "not a file", body: []any{uint32(0), map[string]dbus.Variant{"uri": dbus.MakeVariant("https://x/y.png")}}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := portalResponsePath(tc.body)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v", err)
			}
			if errors.Is(err, ErrCancelled) != tc.cancelled {
				t.Fatalf("cancelled mismatch: %v", err)
			}
			if got != tc.want {
				t.Fatalf("path = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReadAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := readAndRemove(path)
	if err != nil || string(data) != "png" {
		t.Fatalf("readAndRemove = %q, %v", data, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("file not removed")
	}
}

func TestZPixmapToRGBA(t *testing.T) {
	formats := []xproto.Format{{Depth: 24, BitsPerPixel: 32}}
	// Two pixels per row plus four bytes of padding.
	data := []byte{
		0x10, 0x20, 0x30, 0x00, 0x40, 0x50, 0x60, 0x00, 0, 0, 0, 0,
		0x01, 0x02, 0x03, 0x00, 0x04, 0x05, 0x06, 0x00, 0, 0, 0, 0,
	}
	img, err := zPixmapToRGBA(formats, 24, data, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0x30, 0x20, 0x10, 0xFF}) {
		t.Fatalf("pixel (0,0) = %v", got)
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{0x06, 0x05, 0x04, 0xFF}) {
		t.Fatalf("pixel (1,1) = %v", got)
	}

	if _, err := zPixmapToRGBA(formats, 16, data, 2, 2); err == nil {
		t.Fatal("expected unsupported depth error")
	}
	if _, err := zPixmapToRGBA(formats, 24, data[:5], 2, 2); err == nil {
		t.Fatal("expected stride error")
	}
}

func TestRunningOnWayland(t *testing.T) {
	t.Setenv("XDG_SESSION_TYPE", "wayland")
	t.Setenv("WAYLAND_DISPLAY", "")
	if !runningOnWayland() {
		t.Fatalf("expected wayland session when XDG_SESSION_TYPE=wayland")
	}
	t.Setenv("XDG_SESSION_TYPE", "x11")
	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	if !runningOnWayland() {
		t.Fatalf("expected wayland session when WAYLAND_DISPLAY is set")
	}
	t.Setenv("XDG_SESSION_TYPE", "x11")
	t.Setenv("WAYLAND_DISPLAY", "")
	if runningOnWayland() {
		t.Fatalf("did not expect wayland session when indicators are absent")
	}
}
