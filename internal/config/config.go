package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/bananaboard/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Generate bool
	Save     bool
	Copy     bool
}

// Config holds the application configuration.
type Config struct {
	Theme        string
	SaveDir      string
	APIKey       string
	ImageModel   string
	ContentModel string
	CanvasWidth  int
	CanvasHeight int
	Notify       Notify
	Themes       map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme: "", // Default to empty to allow fallback to Env/Default
		Notify: Notify{
			Generate: false,
			Save:     false,
			Copy:     false,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	root := []struct{ key, value string }{
		{"theme", c.Theme},
		{"save_dir", c.SaveDir},
		{"api_key", c.APIKey},
		{"image_model", c.ImageModel},
		{"content_model", c.ContentModel},
	}
	for _, kv := range root {
		if kv.value != "" {
			fmt.Fprintf(&sb, "%s = %s\n", kv.key, kv.value)
		}
	}
	if c.CanvasWidth > 0 {
		fmt.Fprintf(&sb, "canvas_width = %d\n", c.CanvasWidth)
	}
	if c.CanvasHeight > 0 {
		fmt.Fprintf(&sb, "canvas_height = %d\n", c.CanvasHeight)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "generate = %v\n", c.Notify.Generate)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_ = c.Themes[name].Format(&sb)
		sb.WriteString("\n")
	}

	return sb.String()
}

// ResolveTheme picks the named theme: a [theme.x] section first, then the
// loader's search path. An empty name gives the default theme.
func (c *Config) ResolveTheme(l *theme.Loader) (*theme.Theme, error) {
	if t, ok := c.Themes[c.Theme]; ok {
		return t, nil
	}
	if l == nil {
		l = theme.NewLoader()
	}
	return l.Load(c.Theme)
}
