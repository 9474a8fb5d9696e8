// Package tui is the terminal front-end. It drives the same session as the
// desktop window: mode selection, prompt entry, file intake and submission.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/bananaboard/internal/intake"
	"github.com/example/bananaboard/internal/notify"
	"github.com/example/bananaboard/internal/session"
	"github.com/example/bananaboard/internal/theme"
)

// Model is the root Bubble Tea model.
type Model struct {
	ctx      context.Context
	session  *session.State
	notifier *notify.Notifier
	saveDir  string
	styles   styles
	pending  []intake.File

	prompt  textinput.Model
	path    textinput.Model
	adding  bool
	spinner spinner.Model

	selected int
	status   string

	width, height int
}

// Option configures a Model.
type Option func(*Model)

// WithNotifier sets the desktop notifier used after generate and save.
func WithNotifier(n *notify.Notifier) Option { return func(m *Model) { m.notifier = n } }

// WithSaveDir sets the directory results are saved into.
func WithSaveDir(dir string) Option { return func(m *Model) { m.saveDir = dir } }

// WithTheme colours the interface from a window theme.
func WithTheme(t *theme.Theme) Option { return func(m *Model) { m.styles = newStyles(t) } }

// WithFiles queues files to upload when the program starts.
func WithFiles(files []intake.File) Option { return func(m *Model) { m.pending = files } }

// New creates a Model over s.
func New(ctx context.Context, s *session.State, opts ...Option) Model {
	prompt := textinput.New()
	prompt.Placeholder = "Describe what to generate..."
	prompt.Prompt = "> "
	prompt.SetValue(s.Prompt())
	prompt.Focus()

	path := textinput.New()
	path.Placeholder = "path/to/image.png"
	path.Prompt = "add file: "

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:     ctx,
		session: s,
		saveDir: ".",
		styles:  newStyles(theme.Default()),
		prompt:  prompt,
		path:    path,
		spinner: sp,
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// Init starts the spinner and uploads files given on the command line.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if len(m.pending) > 0 {
		cmds = append(cmds, m.uploadCmd(m.pending))
	}
	return tea.Batch(cmds...)
}

// Run starts the terminal UI and blocks until the user quits.
func Run(ctx context.Context, s *session.State, opts ...Option) error {
	m := New(ctx, s, opts...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
