package tui

import (
	"bytes"
	"fmt"
	"image"
	imgcolor "image/color"
	"strings"

	// Registers decoders for DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/charmbracelet/lipgloss"

	"github.com/example/bananaboard/internal/intake"
	"github.com/example/bananaboard/internal/session"
	"github.com/example/bananaboard/internal/theme"
)

const helpLine = "tab mode • enter send • ctrl+o add file • ctrl+v paste • ctrl+s save • ctrl+l clear • ctrl+c quit"

type styles struct {
	title      lipgloss.Style
	tab        lipgloss.Style
	activeTab  lipgloss.Style
	body       lipgloss.Style
	muted      lipgloss.Style
	selected   lipgloss.Style
	status     lipgloss.Style
	modal      lipgloss.Style
	modalTitle lipgloss.Style
	modalText  lipgloss.Style
}

// termColor converts a theme colour. Terminals have no alpha so it is dropped.
func termColor(c imgcolor.RGBA) lipgloss.Color {
	c.A = 255
	return lipgloss.Color(theme.Hex(c))
}

func newStyles(t *theme.Theme) styles {
	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(termColor(t.Foreground)),
		tab: lipgloss.NewStyle().Padding(0, 1).
			Foreground(termColor(t.ModeText)).
			Background(termColor(t.ModeBackground)),
		activeTab: lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Foreground(termColor(t.ModeTextActive)).
			Background(termColor(t.ModeActive)),
		body: lipgloss.NewStyle().Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(termColor(t.DisplayBorder)),
		muted:    lipgloss.NewStyle().Foreground(termColor(t.Muted)),
		selected: lipgloss.NewStyle().Bold(true).Foreground(termColor(t.InputFocus)),
		status:   lipgloss.NewStyle().Foreground(termColor(t.Muted)).Italic(true),
		modal: lipgloss.NewStyle().Padding(1, 3).Width(56).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(termColor(t.RemoveBadge)),
		modalTitle: lipgloss.NewStyle().Bold(true).Foreground(termColor(t.RemoveBadge)),
		modalText:  lipgloss.NewStyle().Foreground(termColor(t.Foreground)),
	}
}

// View renders the interface.
func (m Model) View() string {
	snap := m.session.Snapshot()
	if snap.ShowError {
		return m.errorView(snap)
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render("bananaboard"))
	b.WriteString("  ")
	b.WriteString(m.tabs(snap.Mode))
	b.WriteString("\n\n")

	body := m.styles.body
	if m.width > 4 {
		body = body.Width(m.width - 4)
	}
	b.WriteString(body.Render(m.modeBody(snap)))
	b.WriteString("\n\n")

	if m.adding {
		b.WriteString(m.path.View())
	} else {
		b.WriteString(m.prompt.View())
	}
	b.WriteString("\n")

	switch {
	case snap.Busy:
		b.WriteString(m.spinner.View() + " generating...")
	case m.status != "":
		b.WriteString(m.styles.status.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(m.styles.muted.Render(helpLine))
	return b.String()
}

func (m Model) tabs(active session.Mode) string {
	parts := make([]string, 0, len(session.Modes))
	for i, mode := range session.Modes {
		label := fmt.Sprintf("%d %s", i+1, mode.Label())
		if mode == active {
			parts = append(parts, m.styles.activeTab.Render(label))
			continue
		}
		parts = append(parts, m.styles.tab.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) modeBody(snap session.Snapshot) string {
	switch snap.Mode {
	case session.ModeMulti:
		if len(snap.Images) == 0 {
			return m.styles.muted.Render("No images yet. ctrl+o adds a file, ctrl+v pastes one.")
		}
		lines := make([]string, len(snap.Images))
		for i, img := range snap.Images {
			line := fmt.Sprintf("%d. %s", i+1, describe(img))
			if i == m.selected {
				lines[i] = m.styles.selected.Render("› " + line)
				continue
			}
			lines[i] = "  " + line
		}
		lines = append(lines, "", m.styles.muted.Render("up/down select • ctrl+x remove"))
		return strings.Join(lines, "\n")

	case session.ModeCanvas:
		note := fmt.Sprintf("Canvas %dx%d. Draw in the window front-end, or add a file to start from.",
			snap.CanvasSize.X, snap.CanvasSize.Y)
		if snap.Result != nil {
			return "Result: " + describe(*snap.Result) + "\n" + m.styles.muted.Render(note)
		}
		return m.styles.muted.Render(note)

	case session.ModeImageGen:
		if snap.Result != nil {
			return "Result: " + describe(*snap.Result)
		}
		return m.styles.muted.Render("Generates a new image from the prompt alone.")
	}

	if snap.Result != nil {
		return "Result: " + describe(*snap.Result)
	}
	return m.styles.muted.Render("No image yet. ctrl+o adds a file, ctrl+v pastes one.")
}

func (m Model) errorView(snap session.Snapshot) string {
	box := m.styles.modal.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.styles.modalTitle.Render("Failed to generate"),
		"",
		m.styles.modalText.Render(snap.ErrorText()),
		"",
		m.styles.muted.Render("enter/esc to dismiss"),
	))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// describe summarises an image as its size and type.
func describe(img intake.Image) string {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return fmt.Sprintf("%s, %d bytes", img.MIMEType, len(img.Data))
	}
	return fmt.Sprintf("%dx%d %s", cfg.Width, cfg.Height, img.MIMEType)
}
