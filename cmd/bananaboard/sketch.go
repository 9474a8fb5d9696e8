package main

import (
	"bufio"
	"flag"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/example/bananaboard/internal/canvas"
	"github.com/example/bananaboard/internal/intake"
	"github.com/example/bananaboard/internal/session"
	"github.com/example/bananaboard/internal/theme"
)

// sketchCmd draws strokes onto the canvas and submits it in canvas mode.
type sketchCmd struct {
	prompt      string
	script      string
	background  string
	colorSpec   string
	output      string
	dryRun      bool
	toClipboard bool
	tokens      []string
	strokes     [][]canvas.Point
	color       color.RGBA
	*root
	fs *flag.FlagSet
}

func (s *sketchCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseSketchCmd(args []string, r *root) (*sketchCmd, error) {
	fs := flag.NewFlagSet("sketch", flag.ExitOnError)
	s := &sketchCmd{root: r, fs: fs}
	fs.Usage = usageFunc(s)
	fs.StringVar(&s.prompt, "prompt", "", "instruction sent with the drawing")
	fs.StringVar(&s.script, "script", "", "read strokes from this file, - for stdin")
	fs.StringVar(&s.background, "background", "", "image stretched over the canvas before drawing")
	fs.StringVar(&s.colorSpec, "color", "black", "stroke color name or hex value")
	fs.StringVar(&s.output, "output", "", "write the result to this file, - for stdout (defaults to a timestamped file in the save directory)")
	fs.BoolVar(&s.dryRun, "dry-run", false, "write the drawing itself instead of sending it")
	fs.BoolVar(&s.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.BoolVar(&s.toClipboard, "to-clip", false, "copy the result to the clipboard (alias)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	c, err := parseColor(s.colorSpec)
	if err != nil {
		return nil, err
	}
	s.color = c
	s.tokens = fs.Args()
	if s.script == "" {
		strokes, err := parseStrokes(s.tokens)
		if err != nil {
			return nil, err
		}
		s.strokes = strokes
	}
	return s, nil
}

func parseColor(s string) (color.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	c, err := theme.ParseColor(name)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return c, nil
}

// parseStrokes reads "line x0 y0 x1 y1" and "stroke x0 y0 x1 y1 ..." commands
// from a flat token list.
func parseStrokes(tokens []string) ([][]canvas.Point, error) {
	var strokes [][]canvas.Point
	for i := 0; i < len(tokens); {
		kind := strings.ToLower(tokens[i])
		if kind != "line" && kind != "stroke" {
			return nil, fmt.Errorf("unsupported stroke %q", tokens[i])
		}
		j := i + 1
		var nums []float64
		for ; j < len(tokens); j++ {
			v, err := strconv.ParseFloat(tokens[j], 64)
			if err != nil {
				break
			}
			nums = append(nums, v)
		}
		switch {
		case kind == "line" && len(nums) != 4:
			return nil, fmt.Errorf("line requires x0 y0 x1 y1")
		case len(nums) < 4 || len(nums)%2 != 0:
			return nil, fmt.Errorf("stroke requires at least two x y pairs")
		}
		pts := make([]canvas.Point, 0, len(nums)/2)
		for k := 0; k < len(nums); k += 2 {
			pts = append(pts, canvas.Pt(nums[k], nums[k+1]))
		}
		strokes = append(strokes, pts)
		i = j
	}
	return strokes, nil
}

// readScript tokenises a stroke script. Blank lines and lines starting with
// # are skipped.
func readScript(path string) ([]string, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
	}
	var tokens []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens = append(tokens, strings.Fields(line)...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return tokens, nil
}

func (s *sketchCmd) Run() error {
	if s.script != "" {
		tokens, err := readScript(s.script)
		if err != nil {
			return err
		}
		strokes, err := parseStrokes(append(tokens, s.tokens...))
		if err != nil {
			return fmt.Errorf("%s: %w", s.script, err)
		}
		s.strokes = strokes
	}

	st, err := s.root.newSession(session.ModeCanvas, s.dryRun)
	if err != nil {
		return err
	}
	st.SetPrompt(s.prompt)
	if s.background != "" {
		if err := st.Upload(s.root.context(), []intake.File{intake.FromPath(s.background)}); err != nil {
			return err
		}
	}
	if err := s.draw(st); err != nil {
		return err
	}

	if s.dryRun {
		data, err := st.CanvasPNG()
		if err != nil {
			return err
		}
		return s.root.writeResult(intake.Image{MIMEType: "image/png", Data: data}, s.output)
	}
	return s.root.submit(st, s.output, s.toClipboard)
}

func (s *sketchCmd) draw(st *session.State) error {
	canvas.StrokeColor = s.color
	size := st.CanvasSize()
	for _, pts := range s.strokes {
		st.BeginStroke(pts[0], size)
		for _, p := range pts[1:] {
			if err := st.ContinueStroke(p, size); err != nil {
				st.EndStroke()
				return err
			}
		}
		st.EndStroke()
	}
	return nil
}
