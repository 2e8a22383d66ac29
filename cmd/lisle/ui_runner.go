package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"lisle/internal/driver"
	"lisle/internal/ui"
)

type checkOutcome struct {
	results []driver.CheckResult
	err     error
}

// runCheckWithUI runs CheckFiles while a Bubble Tea view follows its
// events.
func runCheckWithUI(cmd *cobra.Command, files []string, opts driver.CheckOptions) ([]driver.CheckResult, error) {
	events := make(chan driver.Event, 64)
	opts.Events = events

	outcomeCh := make(chan checkOutcome, 1)
	go func() {
		results, err := driver.CheckFiles(cmd.Context(), files, opts)
		close(events)
		outcomeCh <- checkOutcome{results: results, err: err}
	}()

	model := ui.NewProgressModel("checking", files, events)
	program := tea.NewProgram(model, tea.WithOutput(cmd.OutOrStdout()), tea.WithInput(nil))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
