package platform

import "time"

// DefaultAppName is reported to the notification service when Options leaves
// AppName empty.
const DefaultAppName = "bananaboard"

// DefaultTimeout is how long a notification stays visible where the platform
// honours it.
const DefaultTimeout = 5 * time.Second

// Options configures how a notification is displayed on the host platform.
type Options struct {
	AppName string
	// IconPath, when non-empty, points to an image file shown with the
	// notification if the platform supports it.
	IconPath string
	Timeout  time.Duration
}

func (o Options) appName() string {
	if o.AppName == "" {
		return DefaultAppName
	}
	return o.AppName
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}
