// Package ui provides the terminal reader: a markdown viewport with a
// playback status bar, driven by the speech controller.
package ui

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/ftjoosen-hub/speakgpt/speech"
)

// Config describes what the reader shows and how.
type Config struct {
	// Path of the markdown source; empty when reading from stdin.
	Path string

	// Content is the initial markdown text.
	Content string

	// Width caps the rendered line width. Zero means terminal width.
	Width int

	// Style is the glamour style name or JSON path; "auto" picks by
	// terminal background.
	Style string

	// Watch reloads the source when the file changes on disk.
	Watch bool
}

// Messages flowing through the bubbletea loop.
type (
	statusMsg    struct{ status speech.Status }
	reloadMsg    struct{ content string }
	fileEventMsg struct{}
	errMsg       struct{ err error }
)

// Model is the bubbletea model for the reader.
type Model struct {
	cfg        Config
	controller *speech.Controller

	viewport  viewport.Model
	spinner   spinner.Model
	statusBar *StatusDisplay

	content string
	ready   bool
	width   int
	height  int
	flash   string

	statusCh chan speech.Status
	watcher  *fsnotify.Watcher
}

// NewModel wires a reader around the controller. Status changes feed
// the bubbletea loop through a buffered channel; a burst beyond the
// buffer drops intermediate values and the bar catches up on the next
// change.
func NewModel(cfg Config, controller *speech.Controller) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AAFF"))

	m := &Model{
		cfg:        cfg,
		controller: controller,
		spinner:    sp,
		statusBar:  NewStatusDisplay(controller.Voice()),
		content:    cfg.Content,
		statusCh:   make(chan speech.Status, 16),
	}

	controller.OnStatusChange(func(s speech.Status) {
		select {
		case m.statusCh <- s:
		default:
		}
	})

	if cfg.Watch && cfg.Path != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Warn("file watching unavailable", "err", err)
		} else if err := watcher.Add(cfg.Path); err != nil {
			log.Warn("cannot watch source", "path", cfg.Path, "err", err)
			watcher.Close()
		} else {
			m.watcher = watcher
		}
	}

	controller.SetText(cfg.Content)
	return m
}

// Init starts the spinner, the status bridge and the file watcher.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.listenStatus()}
	if m.watcher != nil {
		cmds = append(cmds, m.listenFile())
	}
	return tea.Batch(cmds...)
}

// listenStatus forwards one controller status change into the loop.
func (m *Model) listenStatus() tea.Cmd {
	return func() tea.Msg {
		return statusMsg{status: <-m.statusCh}
	}
}

// listenFile forwards one file change notification into the loop.
func (m *Model) listenFile() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-m.watcher.Events:
				if !ok {
					return nil
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					return fileEventMsg{}
				}
			case err, ok := <-m.watcher.Errors:
				if !ok {
					return nil
				}
				return errMsg{err: err}
			}
		}
	}
}

// reload re-reads the source file off the loop.
func (m *Model) reload() tea.Cmd {
	path := m.cfg.Path
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return errMsg{err: fmt.Errorf("reload %s: %w", path, err)}
		}
		return reloadMsg{content: string(data)}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-1)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 1
		}
		m.renderContent()
		return m, nil

	case statusMsg:
		m.statusBar.Update(msg.status, m.controller.ProgressMessage(), m.controller.AudioBytes())
		m.flash = ""
		return m, m.listenStatus()

	case fileEventMsg:
		return m, tea.Batch(m.reload(), m.listenFile())

	case reloadMsg:
		m.content = msg.content
		m.controller.SetText(msg.content)
		// Fresh text invalidates whatever is playing.
		m.controller.Stop()
		m.renderContent()
		m.flash = "Reloaded"
		return m, nil

	case errMsg:
		log.Warn("reader", "err", msg.err)
		m.flash = msg.err.Error()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleKey dispatches keyboard input.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.controller.Close()
		if m.watcher != nil {
			m.watcher.Close()
		}
		return m, tea.Quit

	case " ", "s":
		if err := m.controller.Speak(); err != nil {
			m.flash = speech.UserMessage(err)
		}
		return m, nil

	case "x":
		m.controller.Stop()
		return m, nil

	case "v":
		voice := nextVoice(m.controller.Voice())
		if err := m.controller.SetVoice(voice); err == nil {
			m.statusBar.SetVoice(voice)
			m.flash = "Voice: " + voice.Label
		}
		return m, nil

	case "c":
		if err := clipboard.WriteAll(m.controller.Transcript()); err != nil {
			m.flash = "Copy failed"
		} else {
			m.flash = "Copied transcript"
		}
		return m, nil

	case "r":
		if m.cfg.Path != "" {
			return m, m.reload()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the viewport above the status bar.
func (m *Model) View() string {
	if !m.ready {
		return "\n  Loading..."
	}
	return m.viewport.View() + "\n" + m.statusLine()
}

// statusLine composes the bottom bar: spinner while busy, then the
// status segments, then any transient flash message.
func (m *Model) statusLine() string {
	line := m.statusBar.BarLine(m.width - 4)
	if m.controller.Status().IsBusy() {
		line = m.spinner.View() + " " + line
	}
	if m.flash != "" {
		flashStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
		line += "  " + flashStyle.Render(m.flash)
	}
	return line
}

// renderContent re-renders the markdown into the viewport.
func (m *Model) renderContent() {
	width := m.cfg.Width
	if width <= 0 || width > m.width {
		width = m.width
	}

	renderer, err := newRenderer(m.cfg.Style, width)
	if err != nil {
		log.Warn("markdown renderer", "err", err)
		m.viewport.SetContent(m.content)
		return
	}

	out, err := renderer.Render(m.content)
	if err != nil {
		m.viewport.SetContent(m.content)
		return
	}
	m.viewport.SetContent(out)
}

// newRenderer builds a glamour renderer for the style and width.
func newRenderer(style string, width int) (*glamour.TermRenderer, error) {
	opts := []glamour.TermRendererOption{
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	}
	switch style {
	case "", "auto":
		opts = append(opts, glamour.WithAutoStyle())
	default:
		opts = append(opts, glamour.WithStylePath(style))
	}
	return glamour.NewTermRenderer(opts...)
}

// nextVoice cycles through the catalog.
func nextVoice(current speech.VoiceProfile) speech.VoiceProfile {
	catalog := speech.Voices()
	for i, v := range catalog {
		if v.ID == current.ID {
			return catalog[(i+1)%len(catalog)]
		}
	}
	return catalog[0]
}

// Run starts the reader and blocks until it exits.
func Run(cfg Config, controller *speech.Controller) error {
	p := tea.NewProgram(NewModel(cfg, controller), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
