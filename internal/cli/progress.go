package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/bookgraph/internal/service"
	"golang.org/x/term"
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// tickMsg refreshes the elapsed-time display.
type tickMsg time.Time

// analysisDoneMsg carries the pipeline outcome into the UI loop.
type analysisDoneMsg struct {
	analysis service.Analysis
	err      error
}

// progressModel is the bubbletea model shown while the pipeline runs.
type progressModel struct {
	bookID   string
	spinner  spinner.Model
	theme    Theme
	start    time.Time
	done     bool
	canceled bool
	analysis service.Analysis
	err      error
}

func newProgressModel(bookID string) progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return progressModel{
		bookID:  bookID,
		spinner: sp,
		theme:   defaultTheme,
		start:   time.Now(),
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init returns the initial commands (spin + elapsed ticker).
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.canceled = true
			m.done = true
			return m, tea.Quit
		}

	case tickMsg:
		return m, tickCmd()

	case analysisDoneMsg:
		m.analysis = msg.analysis
		m.err = msg.err
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m progressModel) renderContent() string {
	if m.done {
		if m.canceled {
			return m.theme.hintStyle().Render("Canceled.\n")
		}
		if m.err != nil {
			return m.theme.errorStyle().Render(fmt.Sprintf("✗ Analysis failed: %s\n", m.err))
		}
		return ""
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("Analyzing book %s", m.bookID))
	elapsed := m.theme.hintStyle().Render(fmt.Sprintf("%ds", int(time.Since(m.start).Seconds())))
	return fmt.Sprintf("%s %s %s\n", m.spinner.View(), status, elapsed)
}

// runWithProgress runs the pipeline, showing a spinner when stderr is a
// terminal. Non-interactive runs (pipes, CI) skip the UI entirely.
func runWithProgress(ctx context.Context, svc *service.AnalysisService, bookID string) (service.Analysis, error) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return svc.Analyze(ctx, bookID)
	}

	p := tea.NewProgram(newProgressModel(bookID))

	go func() {
		a, err := svc.Analyze(ctx, bookID)
		p.Send(analysisDoneMsg{analysis: a, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		// UI failure; fall back to waiting on the pipeline directly.
		return svc.Analyze(ctx, bookID)
	}

	if m, ok := final.(progressModel); ok {
		if m.canceled {
			return service.Analysis{}, fmt.Errorf("canceled")
		}
		return m.analysis, m.err
	}
	return svc.Analyze(ctx, bookID)
}
