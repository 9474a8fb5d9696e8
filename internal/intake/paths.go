package intake

import (
	"net/url"
	"os"
	"strings"

	"github.com/google/shlex"
)

// Paths extracts file paths from pasted, dropped or typed text. Terminals and
// file managers hand over dropped files as quoted, escaped or file:// paths,
// one per line or several on a line separated by spaces. Only existing
// regular files are returned, in the order given.
func Paths(text string) []string {
	var paths []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if p := cleanPath(line); isFile(p) {
			paths = append(paths, p)
			continue
		}
		words, err := shlex.Split(line)
		if err != nil {
			continue
		}
		for _, w := range words {
			if p := cleanPath(w); isFile(p) {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

func cleanPath(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if q := s[0]; (q == '\'' || q == '"') && s[len(s)-1] == q {
			s = s[1 : len(s)-1]
		}
	}
	if rest, ok := strings.CutPrefix(s, "file://"); ok {
		if p, err := url.PathUnescape(rest); err == nil {
			rest = p
		}
		return rest
	}
	return strings.ReplaceAll(s, `\ `, " ")
}

func isFile(path string) bool {
	if path == "" {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
