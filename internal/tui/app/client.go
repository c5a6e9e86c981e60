package app

import (
	"context"
	"fmt"

	"github.com/cristianoliveira/smarthome-dash/internal/colors"
	"github.com/cristianoliveira/smarthome-dash/internal/events"
	"github.com/cristianoliveira/smarthome-dash/internal/tui/state"
	"github.com/google/uuid"
)

// Client defines dependencies needed by the watch command.
type Client interface {
	CreateModel(ctx context.Context) (*state.Model, func(), error)
	RunProgram(model *state.Model) error
}

// DefaultClient wires a state.Model to a dashboard and its events bus.
type DefaultClient struct {
	opts          state.Options
	bus           *events.Bus
	programRunner ProgramRunner
}

// NewDefaultClient creates a default TUI client adapter. The model
// subscribes to bus. If programRunner is nil, a DefaultProgramRunner will
// be used.
func NewDefaultClient(opts state.Options, bus *events.Bus, programRunner ProgramRunner) *DefaultClient {
	if programRunner == nil {
		programRunner = NewDefaultProgramRunner()
	}
	return &DefaultClient{opts: opts, bus: bus, programRunner: programRunner}
}

// CreateModel builds the TUI model with a fresh bus subscription. The
// returned function releases the subscription.
func (d *DefaultClient) CreateModel(ctx context.Context) (*state.Model, func(), error) {
	opts := d.opts
	opts.Context = ctx
	release := func() {}
	if d.bus != nil {
		id := "tui-" + uuid.New().String()
		opts.Updates = d.bus.Subscribe(id)
		release = func() { d.bus.Unsubscribe(id) }
	}
	m, err := state.NewModel(opts)
	if err != nil {
		release()
		return nil, nil, err
	}
	return m, release, nil
}

// RunProgram starts the bubbletea program using the configured ProgramRunner.
func (d *DefaultClient) RunProgram(model *state.Model) error {
	err := d.programRunner.Run(model)
	if err != nil {
		colors.Error(fmt.Sprintf("Error running TUI: %v", err))
		return err
	}
	return nil
}
