// Package app provides TUI application adapters for command wiring.
package app

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ProgramRunner defines the interface for running a bubbletea program.
// This abstraction allows for easier testing and swapping of implementations.
type ProgramRunner interface {
	// Run starts the bubbletea program with the given model.
	Run(model tea.Model) error
}

// DefaultProgramRunner is the default implementation of ProgramRunner
// that wraps tea.NewProgram with standard options.
type DefaultProgramRunner struct {
	opts []tea.ProgramOption
}

// NewDefaultProgramRunner creates a new DefaultProgramRunner. Extra options
// are appended to the defaults.
func NewDefaultProgramRunner(opts ...tea.ProgramOption) *DefaultProgramRunner {
	return &DefaultProgramRunner{opts: opts}
}

// Run starts a bubbletea program with the given model.
// It uses tea.WithAltScreen by default.
func (r *DefaultProgramRunner) Run(model tea.Model) error {
	opts := append([]tea.ProgramOption{tea.WithAltScreen()}, r.opts...)
	p := tea.NewProgram(model, opts...)

	_, err := p.Run()
	return err
}
