package main

import (
	"flag"

	"github.com/example/bananaboard/internal/appstate"
	"github.com/example/bananaboard/internal/intake"
	"github.com/example/bananaboard/internal/session"
)

type windowCmd struct {
	modeName string
	prompt   string
	files    []string
	mode     session.Mode
	*root
	fs *flag.FlagSet
}

func (w *windowCmd) FlagSet() *flag.FlagSet {
	return w.fs
}

func parseWindowCmd(args []string, r *root) (*windowCmd, error) {
	fs := flag.NewFlagSet("window", flag.ExitOnError)
	w := &windowCmd{root: r, fs: fs}
	fs.Usage = usageFunc(w)
	fs.StringVar(&w.modeName, "mode", "editor", "starting mode: editor, multi, canvas or imagegen")
	fs.StringVar(&w.prompt, "prompt", "", "initial prompt text")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	mode, err := session.ParseMode(w.modeName)
	if err != nil {
		return nil, err
	}
	w.mode = mode
	w.files = fs.Args()
	return w, nil
}

func (w *windowCmd) Run() error {
	s, err := w.root.newSession(w.mode, true)
	if err != nil {
		return err
	}
	s.SetPrompt(w.prompt)
	st := appstate.New(
		appstate.WithSession(s),
		appstate.WithTheme(w.root.activeTheme),
		appstate.WithNotifier(w.root.notifier),
		appstate.WithSaveDir(w.root.saveDir),
		appstate.WithFiles(intake.FromPaths(w.files)),
	)
	st.Run()
	return nil
}
