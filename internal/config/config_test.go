package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme
save_dir = /tmp/banana
api_key = "abc:123"
image_model = imagen-test
content_model = gemini-test
canvas_width = 640
canvas_height = 360

[notify]
generate = true
save = false
copy = true

[theme.my_custom_theme]
Background = #111111
Foreground = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "my_custom_theme" {
		t.Errorf("Expected theme 'my_custom_theme', got '%s'", cfg.Theme)
	}
	if cfg.SaveDir != "/tmp/banana" {
		t.Errorf("Expected save_dir '/tmp/banana', got '%s'", cfg.SaveDir)
	}
	if cfg.APIKey != "abc:123" {
		t.Errorf("api_key = %q", cfg.APIKey)
	}
	if cfg.ImageModel != "imagen-test" || cfg.ContentModel != "gemini-test" {
		t.Errorf("models %q %q", cfg.ImageModel, cfg.ContentModel)
	}
	if cfg.CanvasWidth != 640 || cfg.CanvasHeight != 360 {
		t.Errorf("canvas %dx%d", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if !cfg.Notify.Generate || cfg.Notify.Save || !cfg.Notify.Copy {
		t.Errorf("notify %+v", cfg.Notify)
	}

	th, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}
	if th.Background.R != 0x11 || th.Background.G != 0x11 || th.Background.B != 0x11 {
		t.Errorf("Unexpected Background color: %+v", th.Background)
	}
	resolved, err := cfg.ResolveTheme(nil)
	if err != nil || resolved != th {
		t.Errorf("ResolveTheme = %v, %v", resolved, err)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"bad bool":   "[notify]\ngenerate = maybe\n",
		"bad size":   "canvas_width = wide\n",
		"zero size":  "canvas_height = 0\n",
		"bad colour": "[theme.x]\nBackground = red\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(input)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
save_dir = /home/user/banana
image_model = imagen-4.0-generate-001
canvas_width = 800

[notify]
generate = true
save = true
copy = false

[theme.custom]
Name = custom
Background = #000000
Overlay = #00000080
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}
	cfg2, err := Parse(strings.NewReader(cfg.String()))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	if cfg.Theme != cfg2.Theme || cfg.SaveDir != cfg2.SaveDir || cfg.ImageModel != cfg2.ImageModel {
		t.Errorf("root mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.CanvasWidth != cfg2.CanvasWidth || cfg2.CanvasHeight != 0 {
		t.Errorf("canvas mismatch: %d/%d", cfg2.CanvasWidth, cfg2.CanvasHeight)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}
	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if *t1 != *t2 {
		t.Errorf("Theme mismatch: %+v vs %+v", t1, t2)
	}
}

func TestLoaderOverrideAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.rc")
	l := NewLoader("v1.0.0", path)

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load without file: %v", err)
	}
	cfg.SaveDir = "/tmp/out"
	cfg.Notify.Generate = true
	written, err := l.Save(cfg)
	if err != nil || written != path {
		t.Fatalf("Save = %q, %v", written, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config mode %v", info.Mode().Perm())
	}
	back, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if back.SaveDir != "/tmp/out" || !back.Notify.Generate {
		t.Errorf("reloaded %+v", back)
	}
}

func TestLoaderDevLocalFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.WriteFile(localFileName, []byte("theme = dark\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewLoader("dev", "").Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme != "dark" {
		t.Fatalf("theme %q", cfg.Theme)
	}
}

type memStore struct {
	key string
	err error
}

func (m *memStore) APIKey() (string, error)  { return m.key, m.err }
func (m *memStore) SetAPIKey(k string) error { m.key = k; return nil }
func (m *memStore) DeleteAPIKey() error      { m.key = ""; return nil }

func TestResolveAPIKeyOrder(t *testing.T) {
	cfg := New()
	cfg.APIKey = "from-config"
	env := map[string]string{}
	getenv := func(k string) string { return env[k] }

	cases := []struct {
		name  string
		env   map[string]string
		store SecretStore
		want  string
	}{
		{"config only", nil, nil, "from-config"},
		{"keyring beats config", nil, &memStore{key: "from-keyring"}, "from-keyring"},
		{"keyring error falls through", nil, &memStore{err: errors.New("locked")}, "from-config"},
		{"API_KEY beats keyring", map[string]string{"API_KEY": "plain"}, &memStore{key: "from-keyring"}, "plain"},
		{"GEMINI_API_KEY first", map[string]string{"API_KEY": "plain", "GEMINI_API_KEY": "gemini"}, nil, "gemini"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clear(env)
			for k, v := range tc.env {
				env[k] = v
			}
			if got := resolveAPIKey(cfg, tc.store, getenv); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
	if got := resolveAPIKey(nil, nil, func(string) string { return "" }); got != "" {
		t.Fatalf("got %q", got)
	}
}
