package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	ksmdisasm "github.com/wippyai/ksm-disasm"
	"github.com/wippyai/ksm-disasm/report"
	"github.com/wippyai/ksm-disasm/script"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browserModel struct {
	err      error
	prog     *script.Program
	opts     script.Options
	filename string
	funcs    []*script.FunctionDef
	filter   textinput.Model
	body     viewport.Model
	selected int
	height   int
	state    modelState
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateFilter
	stateShowBody
)

const chromeLines = 6

func newBrowserModel(filename string, opts script.Options) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "name or 0xid"
	ti.Prompt = "/"
	ti.Width = 40
	return &browserModel{
		filename: filename,
		opts:     opts,
		filter:   ti,
		body:     viewport.New(80, 20),
		height:   24,
		state:    stateSelectFunc,
	}
}

type loadedMsg struct {
	err  error
	prog *script.Program
}

func (m *browserModel) Init() tea.Cmd {
	return m.loadProgram
}

func (m *browserModel) loadProgram() tea.Msg {
	prog, err := ksmdisasm.DisassembleFile(m.filename, m.opts)
	return loadedMsg{prog: prog, err: err}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.body.Width = msg.Width
		m.body.Height = max(msg.Height-chromeLines, 1)
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.prog = msg.prog
		m.applyFilter()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.state {
		case stateSelectFunc:
			return m.updateList(msg)
		case stateFilter:
			return m.updateFilter(msg)
		case stateShowBody:
			return m.updateBody(msg)
		}
	}

	if m.state == stateShowBody {
		var cmd tea.Cmd
		m.body, cmd = m.body.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *browserModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.funcs)-1 {
			m.selected++
		}
	case "/":
		m.state = stateFilter
		return m, m.filter.Focus()
	case "enter":
		if len(m.funcs) > 0 {
			m.body.SetContent(m.renderBody(m.funcs[m.selected]))
			m.body.GotoTop()
			m.state = stateShowBody
		}
	}
	return m, nil
}

func (m *browserModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filter.Blur()
		m.state = stateSelectFunc
		return m, nil
	case "esc":
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		m.state = stateSelectFunc
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *browserModel) updateBody(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.state = stateSelectFunc
		return m, nil
	}
	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	return m, cmd
}

func (m *browserModel) applyFilter() {
	if m.prog == nil {
		return
	}
	m.funcs = filterFunctions(m.prog.Functions, m.filter.Value())
	if m.selected >= len(m.funcs) {
		m.selected = max(len(m.funcs)-1, 0)
	}
}

// filterFunctions keeps functions whose name contains q or whose id, in
// hex, starts with q.
func filterFunctions(fns []*script.FunctionDef, q string) []*script.FunctionDef {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return fns
	}
	var out []*script.FunctionDef
	for _, fn := range fns {
		if strings.Contains(strings.ToLower(fn.String()), q) ||
			strings.HasPrefix(fmt.Sprintf("0x%x", fn.ID), q) {
			out = append(out, fn)
		}
	}
	return out
}

func (m *browserModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress ctrl+c to quit.", m.err))
	}
	if m.prog == nil {
		return "Loading script..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("KSM Disassembler"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc, stateFilter:
		b.WriteString(report.FormatSummary(m.prog.Summary()))
		b.WriteString("\n")
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
		}
		b.WriteString("\n")
		rows := max(m.height-chromeLines-1, 1)
		start := 0
		if m.selected >= rows {
			start = m.selected - rows + 1
		}
		for i := start; i < len(m.funcs) && i < start+rows; i++ {
			row := formatFunc(m.funcs[i])
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + row))
			} else {
				b.WriteString("  " + row)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.state == stateFilter {
			b.WriteString(helpStyle.Render("enter keep filter • esc clear"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ select • enter show body • / filter • q quit"))
		}

	case stateShowBody:
		b.WriteString(m.body.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("↑/↓ scroll • esc back • q quit  %3.f%%", m.body.ScrollPercent()*100)))
	}

	return b.String()
}

func formatFunc(fn *script.FunctionDef) string {
	status := fn.Status.String()
	switch fn.Status {
	case script.StatusClean:
		status = okStyle.Render(status)
	case script.StatusTruncated, script.StatusMalformed:
		status = errorStyle.Render(status)
	default:
		status = helpStyle.Render(status)
	}
	return fmt.Sprintf("%s 0x%x %s (%d)", funcStyle.Render(fn.String()), fn.ID, status, len(fn.Instructions))
}

func (m *browserModel) renderBody(fn *script.FunctionDef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 0x%x %s\n", funcStyle.Render(fn.String()), fn.ID, fn.Status)
	if fn.Err != nil {
		b.WriteString(errorStyle.Render(fn.Err.Error()))
		b.WriteString("\n")
	}
	if src, op, ok := script.ThreadOrigin(fn); ok {
		b.WriteString(helpStyle.Render(fmt.Sprintf("generated from %s in %s", op, m.prog.Functions[src])))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for _, l := range report.Body(fn) {
		fmt.Fprintf(&b, "%5d  %s%s", l.Offset, strings.Repeat("    ", l.Depth), opStyle.Render(l.Mnemonic))
		if l.Operands != "" {
			b.WriteString(" ")
			b.WriteString(l.Operands)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func runInteractive(filename string, opts script.Options) error {
	p := tea.NewProgram(newBrowserModel(filename, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
