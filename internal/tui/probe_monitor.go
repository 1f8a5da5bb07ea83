package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/blockgroot/signer-wallet-tool/internal/networks"
	"github.com/blockgroot/signer-wallet-tool/internal/safes"
)

// ProbeMonitor bridges resolver/scanner probe events into the bubbletea
// program. Logging must be switched to file-only mode before Run, since the
// TUI owns the terminal.
type ProbeMonitor struct {
	program *tea.Program
}

// NewProbeMonitor prepares a monitor for one target (wallet or owner
// address) over the given network scope.
func NewProbeMonitor(target string, scope []networks.Network) *ProbeMonitor {
	model := NewModel(target, scope)
	return &ProbeMonitor{
		program: tea.NewProgram(model, tea.WithAltScreen()),
	}
}

// Observer returns the callback to install on a resolver or scanner.
func (pm *ProbeMonitor) Observer() safes.Observer {
	return func(ev safes.ProbeEvent) {
		pm.program.Send(ProbeUpdate{
			NetworkID: ev.Network.ID,
			Started:   ev.Started,
			Outcome:   ev.Outcome,
			Err:       ev.Err,
		})
	}
}

// AddLog appends a line to the monitor's log pane.
func (pm *ProbeMonitor) AddLog(message string) {
	pm.program.Send(LogMessage{Message: message})
}

// Complete marks the operation finished with a summary line.
func (pm *ProbeMonitor) Complete(message string) {
	pm.program.Send(Completed{Message: message})
}

// Run blocks until the user exits the monitor.
func (pm *ProbeMonitor) Run() error {
	_, err := pm.program.Run()
	return err
}

// Quit stops the program.
func (pm *ProbeMonitor) Quit() {
	pm.program.Quit()
}
