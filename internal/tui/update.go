package tui

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/bananaboard/internal/clipboard"
	"github.com/example/bananaboard/internal/intake"
	"github.com/example/bananaboard/internal/session"
)

type submitDoneMsg struct {
	mode   session.Mode
	prompt string
	err    error
}

type uploadDoneMsg struct {
	files int
	err   error
}

type savedMsg struct {
	path string
	err  error
}

var errNothingToSave = errors.New("nothing to save")

// Update handles all TUI interactions.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.prompt.Width = msg.Width - 16
		m.path.Width = msg.Width - 16
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submitDoneMsg:
		if msg.err == nil {
			m.status = "generated"
			m.notifyGenerated(fmt.Sprintf("%s: %s", msg.mode.Label(), msg.prompt))
		}
		return m, nil

	case uploadDoneMsg:
		switch {
		case msg.err != nil:
			log.Print(msg.err)
			m.status = "upload failed: " + msg.err.Error()
		default:
			m.status = fmt.Sprintf("added %d file(s)", msg.files)
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "saved " + msg.path
		m.notifier.Saved(msg.path)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	st := m.session.Status()
	if st.ShowError {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			m.session.DismissError()
		}
		return m, nil
	}

	if msg.Paste {
		if paths := intake.Paths(string(msg.Runes)); len(paths) > 0 {
			if m.adding {
				m.closeAddFile()
			}
			return m, m.uploadCmd(intake.FromPaths(paths))
		}
	}

	if m.adding {
		switch msg.Type {
		case tea.KeyEsc:
			m.closeAddFile()
			return m, nil
		case tea.KeyEnter:
			paths := intake.Paths(m.path.Value())
			m.closeAddFile()
			if len(paths) == 0 {
				m.status = "no such file"
				return m, nil
			}
			return m, m.uploadCmd(intake.FromPaths(paths))
		}
		var cmd tea.Cmd
		m.path, cmd = m.path.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "tab":
		m.setMode(nextMode(st.Mode, 1))
		return m, nil
	case "shift+tab":
		m.setMode(nextMode(st.Mode, -1))
		return m, nil
	case "alt+1", "alt+2", "alt+3", "alt+4":
		m.setMode(session.Modes[msg.String()[4]-'1'])
		return m, nil
	case "ctrl+l":
		m.session.Clear()
		m.selected = 0
		m.status = ""
		return m, nil
	case "ctrl+o":
		if !st.Mode.AcceptsUploads() {
			m.status = session.ErrUploadUnavailable.Error()
			return m, nil
		}
		m.adding = true
		m.prompt.Blur()
		cmd := m.path.Focus()
		return m, cmd
	case "ctrl+v":
		if !st.Mode.AcceptsUploads() {
			m.status = session.ErrUploadUnavailable.Error()
			return m, nil
		}
		f, err := clipboard.Paste()
		if err != nil {
			m.status = "clipboard has no image"
			return m, nil
		}
		return m, m.uploadCmd([]intake.File{f})
	case "ctrl+s":
		return m, m.saveCmd(time.Now())
	case "up":
		if st.Mode == session.ModeMulti && m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down":
		if st.Mode == session.ModeMulti && m.selected < st.Images-1 {
			m.selected++
		}
		return m, nil
	case "ctrl+x":
		if st.Mode == session.ModeMulti && st.Images > 0 {
			m.session.RemoveImage(m.selected)
			if m.selected >= st.Images-1 && m.selected > 0 {
				m.selected--
			}
		}
		return m, nil
	case "enter":
		if st.Busy {
			return m, nil
		}
		m.session.SetPrompt(m.prompt.Value())
		m.status = ""
		return m, m.submitCmd()
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	m.session.SetPrompt(m.prompt.Value())
	return m, cmd
}

func (m *Model) setMode(mode session.Mode) {
	m.session.SetMode(mode)
	m.selected = 0
	m.status = ""
}

func (m *Model) closeAddFile() {
	m.adding = false
	m.path.Reset()
	m.path.Blur()
	m.prompt.Focus()
}

// nextMode steps through the modes in display order, wrapping at both ends.
func nextMode(cur session.Mode, step int) session.Mode {
	n := len(session.Modes)
	for i, mode := range session.Modes {
		if mode == cur {
			return session.Modes[((i+step)%n+n)%n]
		}
	}
	return session.Modes[0]
}

func (m Model) submitCmd() tea.Cmd {
	s, ctx := m.session, m.ctx
	mode, prompt := s.Mode(), s.Prompt()
	return func() tea.Msg {
		return submitDoneMsg{mode: mode, prompt: prompt, err: s.Submit(ctx)}
	}
}

func (m Model) uploadCmd(files []intake.File) tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		n := len(intake.Filter(files))
		return uploadDoneMsg{files: n, err: s.Upload(ctx, files)}
	}
}

func (m Model) saveCmd(now time.Time) tea.Cmd {
	s, dir := m.session, m.saveDir
	return func() tea.Msg {
		img, ok := s.Result()
		if s.Mode() == session.ModeCanvas {
			data, err := s.CanvasPNG()
			if err != nil {
				return savedMsg{err: err}
			}
			img, ok = intake.Image{MIMEType: "image/png", Data: data}, true
		}
		if !ok {
			return savedMsg{err: errNothingToSave}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return savedMsg{err: err}
		}
		path := intake.SaveName(dir, now)
		if err := intake.Save(path, img); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{path: path}
	}
}

func (m Model) notifyGenerated(detail string) {
	img, ok := m.session.Result()
	if !ok || m.notifier == nil {
		return
	}
	preview, err := img.Decode()
	if err != nil {
		log.Printf("notification preview: %v", err)
		preview = nil
	}
	m.notifier.Generated(detail, preview)
}
