package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/gamespec/internal/engine"
	"github.com/tatianab/gamespec/internal/models"
	"github.com/tatianab/gamespec/internal/pipeline"
	"github.com/tatianab/gamespec/internal/report"
)

type sessionState int

const (
	stateInput sessionState = iota
	stateLoading
	stateReport
	stateError
)

// Options configures the inspector.
type Options struct {
	Engine *engine.Engine
	Store  *report.Store
	Genre  models.GameType
	// Online asks for a hint and generates a scene. Otherwise the input is
	// raw generator text to recover.
	Online bool
	// Raw, when set, is recovered immediately. Source names where it came from.
	Raw    string
	Source string
}

type model struct {
	opts     Options
	state    sessionState
	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	err      error
	result   pipeline.Result
	raw      string
	source   string
	status   string
	width    int
	height   int
}

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	statsStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	parsedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ECC71")).Bold(true)
	fallbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C")).Bold(true)
)

func NewModel(opts Options) model {
	if !opts.Genre.Valid() {
		opts.Genre = models.Platformer
	}

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	if opts.Online {
		ta.Placeholder = "Describe the game you want, or leave empty for a surprise..."
		ta.SetHeight(3)
	} else {
		ta.Placeholder = "Paste generator output here..."
		ta.SetHeight(12)
	}
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		opts:     opts,
		state:    stateInput,
		input:    ta,
		viewport: viewport.New(80, 20),
		spinner:  sp,
	}
	if opts.Raw != "" {
		m.state = stateLoading
	}
	return m
}

func (m model) Init() tea.Cmd {
	if m.state == stateLoading {
		return tea.Batch(m.spinner.Tick, m.recover(m.opts.Raw, m.opts.Source))
	}
	return textarea.Blink
}

type resultMsg struct {
	result pipeline.Result
	raw    string
	source string
}

type savedMsg struct {
	id string
}

type errMsg struct {
	err error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyCtrlD:
			if m.state != stateInput {
				break
			}
			text := m.input.Value()
			m.state = stateLoading
			if m.opts.Online {
				return m, tea.Batch(m.spinner.Tick, m.generate(text))
			}
			return m, tea.Batch(m.spinner.Tick, m.recover(text, "pasted text"))

		case tea.KeyCtrlN:
			if m.state == stateReport || m.state == stateError {
				m.state = stateInput
				m.err = nil
				m.status = ""
				m.input.Reset()
				return m, textarea.Blink
			}

		case tea.KeyCtrlS:
			if m.state == stateReport {
				return m, m.save()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(msg.Width - 4)
		m.viewport.Width = m.reportWidth()
		m.viewport.Height = msg.Height - 6
		if m.state == stateReport {
			m.viewport.SetContent(m.renderReport())
		}

	case spinner.TickMsg:
		if m.state == stateLoading {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case resultMsg:
		m.result = msg.result
		m.raw = msg.raw
		m.source = msg.source
		m.state = stateReport
		m.status = ""
		m.viewport.SetContent(m.renderReport())
		m.viewport.GotoTop()
		return m, nil

	case savedMsg:
		m.status = "Saved report " + msg.id
		return m, nil

	case errMsg:
		if m.state == stateReport {
			// Saving failed; the report is still worth showing.
			m.status = "Save failed: " + msg.err.Error()
			return m, nil
		}
		m.err = msg.err
		m.state = stateError
		return m, nil
	}

	switch m.state {
	case stateInput:
		m.input, cmd = m.input.Update(msg)
	case stateReport:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateInput:
		prompt := "Paste the text a generator produced; it will be recovered into a game specification."
		if m.opts.Online {
			prompt = fmt.Sprintf("Give me a hint about the %s game you want:", strings.ToLower(m.opts.Genre.Title()))
		}
		s = lipgloss.JoinVertical(lipgloss.Left,
			headerStyle.Render("Game Specification Inspector"),
			"",
			prompt,
			"",
			m.input.View(),
			"",
			helpStyle.Render("ctrl+d: submit, esc: quit"),
		)

	case stateLoading:
		what := "Recovering specification"
		if m.opts.Online && m.opts.Raw == "" {
			what = "Generating your scene"
		}
		s = fmt.Sprintf("\n  %s %s... please wait.\n", m.spinner.View(), what)

	case stateReport:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderStats(),
		)
		help := "ctrl+s: save report, ctrl+n: new input, arrows/pgup/pgdn: scroll, esc: quit"
		if m.status != "" {
			help = m.status + "  |  " + help
		}
		s = lipgloss.JoinVertical(lipgloss.Left,
			mainView,
			"\n"+helpStyle.Render(help),
		)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress ctrl+n to try again or esc to quit.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) reportWidth() int {
	if m.width == 0 {
		return 80
	}
	return int(float64(m.width) * 0.7)
}

func (m model) renderReport() string {
	md := report.Markdown(m.result)
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(m.reportWidth()-4, 20)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func (m model) renderStats() string {
	if m.result.Spec == nil {
		return ""
	}
	spec := m.result.Spec

	path := parsedStyle.Render(string(m.result.Path))
	if m.result.Path == pipeline.PathFallback {
		path = fallbackStyle.Render(string(m.result.Path))
	}
	content := titleStyle.Render("RESULT") + "\n" + path + "\n"
	if m.result.Stage != 0 {
		content += m.result.Stage.String() + "\n"
	}
	content += "\n"

	counts := map[string]int{}
	for _, w := range m.result.Warnings {
		counts[w.Stage]++
	}
	content += titleStyle.Render("WARNINGS") + "\n"
	if len(counts) == 0 {
		content += "(none)\n"
	}
	for _, stage := range []string{
		models.StageParse, models.StagePartial, models.StageFallback, models.StageValidate,
		models.StageConsistency, models.StagePlaytest, models.StagePipeline,
	} {
		if n := counts[stage]; n > 0 {
			content += fmt.Sprintf("%s: %d\n", stage, n)
		}
	}
	content += "\n"

	content += titleStyle.Render("SCENE") + "\n"
	content += fmt.Sprintf("Entities: %d\nLevels: %d\n", len(spec.Entities), len(spec.Levels))
	if m.source != "" {
		content += "\n" + titleStyle.Render("SOURCE") + "\n" + m.source + "\n"
	}

	width := max(m.width-m.reportWidth()-2, 20)
	return statsStyle.Width(width).Height(m.viewport.Height).Render(content)
}

func (m model) recover(raw, source string) tea.Cmd {
	eng, genre := m.opts.Engine, m.opts.Genre
	return func() tea.Msg {
		return resultMsg{result: eng.Recover(raw, genre), raw: raw, source: source}
	}
}

func (m model) generate(hint string) tea.Cmd {
	eng, genre := m.opts.Engine, m.opts.Genre
	return func() tea.Msg {
		scene, err := eng.GenerateScene(context.Background(), hint, genre)
		if err != nil {
			return errMsg{err}
		}
		source := "hint: " + strings.TrimSpace(hint)
		if strings.TrimSpace(hint) == "" {
			source = "hint: (none)"
		}
		return resultMsg{result: scene.Result, raw: scene.Raw, source: source}
	}
}

func (m model) save() tea.Cmd {
	store, res, raw, source := m.opts.Store, m.result, m.raw, m.source
	return func() tea.Msg {
		if store == nil {
			return errMsg{fmt.Errorf("no report directory configured")}
		}
		id, err := store.Save(res, raw, source)
		if err != nil {
			return errMsg{err}
		}
		return savedMsg{id}
	}
}

func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
