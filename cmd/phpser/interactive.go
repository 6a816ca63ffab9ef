package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	phpserial "github.com/wippyai/php-serial"
	"github.com/wippyai/php-serial/codec"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	modeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD166"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inputMode int

const (
	modeDecode inputMode = iota
	modeDecodeJSON
	modeEncode
)

func (m inputMode) String() string {
	switch m {
	case modeDecodeJSON:
		return "decode → json"
	case modeEncode:
		return "json → serialized"
	default:
		return "decode"
	}
}

func (m inputMode) placeholder() string {
	if m == modeEncode {
		return `{"name": "bob", "__class": "User"}`
	}
	return `a:1:{s:4:"name";s:3:"bob";}`
}

// headerLines and footerLines are the rows View draws around the viewport.
const (
	headerLines = 4
	footerLines = 2
)

type interactiveModel struct {
	codec   *codec.Codec
	rec     *phpserial.Recorder
	err     error
	result  string
	notices []string
	input   textinput.Model
	output  viewport.Model
	mode    inputMode
	ready   bool
	decodes int
}

func newInteractiveModel() *interactiveModel {
	rec := &phpserial.Recorder{}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = modeDecode.placeholder()
	ti.CharLimit = 0
	ti.Width = 72
	ti.Focus()

	return &interactiveModel{
		codec: codec.New(codec.WithDiagnostics(rec)),
		rec:   rec,
		input: ti,
	}
}

type resultMsg struct {
	err     error
	result  string
	notices []string
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab":
			m.mode = (m.mode + 1) % 3
			m.input.Placeholder = m.mode.placeholder()
			return m, nil

		case "enter":
			text := m.input.Value()
			if strings.TrimSpace(text) == "" {
				return m, nil
			}
			return m, m.process(text, m.mode)

		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.output, cmd = m.output.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		h := msg.Height - headerLines - footerLines
		if h < 1 {
			h = 1
		}
		if !m.ready {
			m.output = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.output.Width = msg.Width
			m.output.Height = h
		}
		m.input.Width = msg.Width - len(m.input.Prompt) - 1
		m.refresh()

	case resultMsg:
		m.decodes++
		m.err = msg.err
		m.result = msg.result
		m.notices = msg.notices
		m.refresh()
		m.output.GotoTop()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// process runs one decode or encode off the update loop.
func (m *interactiveModel) process(text string, mode inputMode) tea.Cmd {
	return func() tea.Msg {
		m.rec.Reset()
		var (
			out string
			err error
		)
		switch mode {
		case modeEncode:
			out, err = encodeJSON(m.codec, []byte(text))
		default:
			out, err = decodeText(m.codec, []byte(text), mode == modeDecodeJSON)
		}

		var notices []string
		for _, n := range m.rec.Notices() {
			notices = append(notices, n.Error())
		}
		return resultMsg{err: err, result: out, notices: notices}
	}
}

func (m *interactiveModel) refresh() {
	if !m.ready {
		return
	}
	var b strings.Builder
	for _, n := range m.notices {
		b.WriteString(noticeStyle.Render("notice: " + n))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else {
		b.WriteString(resultStyle.Render(m.result))
	}
	m.output.SetContent(b.String())
}

func (m *interactiveModel) View() string {
	if !m.ready {
		return "Starting..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("phpser"))
	b.WriteString(" ")
	b.WriteString(modeStyle.Render(m.mode.String()))
	if st := m.codec.Cache().Stats(); m.decodes > 0 {
		b.WriteString(helpStyle.Render(fmt.Sprintf("  cache %d/%d hits", st.Hits, st.Hits+st.Misses)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.output.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter run • tab mode • pgup/pgdown scroll • esc quit"))
	return b.String()
}

func runInteractive() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("interactive mode needs a terminal")
	}
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
