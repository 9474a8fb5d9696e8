package main

import (
	"flag"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/bananaboard/internal/intake"
	"github.com/example/bananaboard/internal/session"
	"github.com/example/bananaboard/internal/tui"
)

type tuiCmd struct {
	modeName string
	prompt   string
	logFile  string
	files    []string
	mode     session.Mode
	*root
	fs *flag.FlagSet
}

func (t *tuiCmd) FlagSet() *flag.FlagSet {
	return t.fs
}

func parseTUICmd(args []string, r *root) (*tuiCmd, error) {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	t := &tuiCmd{root: r, fs: fs}
	fs.Usage = usageFunc(t)
	fs.StringVar(&t.modeName, "mode", "editor", "starting mode: editor, multi, canvas or imagegen")
	fs.StringVar(&t.prompt, "prompt", "", "initial prompt text")
	fs.StringVar(&t.logFile, "log", "", "append log output to this file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	mode, err := session.ParseMode(t.modeName)
	if err != nil {
		return nil, err
	}
	t.mode = mode
	t.files = fs.Args()
	return t, nil
}

func (t *tuiCmd) Run() error {
	// The alt screen owns the terminal, so log lines must go elsewhere.
	if t.logFile != "" {
		f, err := tea.LogToFile(t.logFile, "bananaboard")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	s, err := t.root.newSession(t.mode, true)
	if err != nil {
		return err
	}
	s.SetPrompt(t.prompt)
	return tui.Run(t.root.context(), s,
		tui.WithTheme(t.root.activeTheme),
		tui.WithNotifier(t.root.notifier),
		tui.WithSaveDir(t.root.saveDir),
		tui.WithFiles(intake.FromPaths(t.files)),
	)
}
