package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/blockgroot/signer-wallet-tool/internal/networks"
	"github.com/blockgroot/signer-wallet-tool/internal/safes"
)

type networkState string

const (
	statePending networkState = "pending"
	stateProbing networkState = "probing"
	stateFound   networkState = "found"
	stateAbsent  networkState = "absent"
	stateFault   networkState = "fault"
)

type networkStatus struct {
	network   networks.Network
	state     networkState
	err       error
	startTime time.Time
	doneTime  time.Time
}

type Model struct {
	target     string
	statuses   []*networkStatus
	byID       map[int64]*networkStatus
	logs       []string
	spinner    spinner.Model
	progress   progress.Model
	width      int
	height     int
	quit       bool
	done       bool
	doneMsg    string
	completed  int
	faultCount int
	foundCount int
}

// ProbeUpdate carries one probe event into the model.
type ProbeUpdate struct {
	NetworkID int64
	Started   bool
	Outcome   safes.ProbeOutcome
	Err       error
}

// LogMessage appends one line to the scrolling log pane.
type LogMessage struct {
	Message string
}

// Completed marks the whole operation finished.
type Completed struct {
	Message string
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	foundStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	absentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	faultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	logStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func NewModel(target string, scope []networks.Network) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	pr := progress.New(progress.WithDefaultGradient())

	statuses := make([]*networkStatus, 0, len(scope))
	byID := make(map[int64]*networkStatus, len(scope))
	for _, n := range scope {
		st := &networkStatus{network: n, state: statePending}
		statuses = append(statuses, st)
		byID[n.ID] = st
	}

	return Model{
		target:   target,
		statuses: statuses,
		byID:     byID,
		logs:     []string{},
		spinner:  sp,
		progress: pr,
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		case "enter":
			if m.done {
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 10

	case ProbeUpdate:
		m = m.handleProbeUpdate(msg)

	case LogMessage:
		m.logs = append(m.logs, msg.Message)
		if len(m.logs) > 8 {
			m.logs = m.logs[len(m.logs)-8:]
		}

	case Completed:
		m.done = true
		m.doneMsg = msg.Message

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleProbeUpdate(msg ProbeUpdate) Model {
	st, ok := m.byID[msg.NetworkID]
	if !ok {
		return m
	}

	if msg.Started {
		st.state = stateProbing
		st.startTime = time.Now()
		return m
	}

	st.doneTime = time.Now()
	m.completed++
	switch msg.Outcome {
	case safes.OutcomeFound:
		st.state = stateFound
		m.foundCount++
	case safes.OutcomeAbsent:
		st.state = stateAbsent
	case safes.OutcomeFault:
		st.state = stateFault
		st.err = msg.Err
		m.faultCount++
	}
	return m
}

func (m Model) View() string {
	if m.quit {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Probing networks for %s", m.target)))
	b.WriteString("\n\n")

	for _, st := range m.statuses {
		b.WriteString(m.renderNetwork(st))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if len(m.statuses) > 0 {
		b.WriteString(m.progress.ViewAs(float64(m.completed) / float64(len(m.statuses))))
		b.WriteString("\n")
	}

	if len(m.logs) > 0 {
		b.WriteString("\n")
		for _, line := range m.logs {
			b.WriteString(logStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(foundStyle.Render(m.doneMsg))
		b.WriteString("\n")
		b.WriteString(logStyle.Render("Press enter or q to exit"))
	} else {
		b.WriteString(logStyle.Render("Press q to abort"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderNetwork(st *networkStatus) string {
	name := fmt.Sprintf("%-18s", st.network.DisplayName)

	switch st.state {
	case stateProbing:
		return fmt.Sprintf("  %s %s probing...", m.spinner.View(), name)
	case stateFound:
		return fmt.Sprintf("  %s %s %s", foundStyle.Render("*"), name,
			foundStyle.Render(fmt.Sprintf("found (%v)", st.doneTime.Sub(st.startTime).Round(time.Millisecond))))
	case stateAbsent:
		return fmt.Sprintf("    %s %s", name, absentStyle.Render("nothing here"))
	case stateFault:
		return fmt.Sprintf("  %s %s %s", faultStyle.Render("!"), name,
			faultStyle.Render(fmt.Sprintf("fault: %v", st.err)))
	default:
		return fmt.Sprintf("    %s %s", name, absentStyle.Render("waiting"))
	}
}
