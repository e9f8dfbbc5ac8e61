package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"apiforge/internal/facade"
	"apiforge/internal/meta"
	"apiforge/internal/ui"
)

type facadeOutcome struct {
	result *facade.Result
	err    error
}

// runFacadeWithUI runs synthesis in the background and renders its progress
// events until the run finishes.
func runFacadeWithUI(ctx context.Context, title string, contracts []string, h *meta.Host, req facade.Request) (*facade.Result, error) {
	events := make(chan facade.Event, 256)
	outcomeCh := make(chan facadeOutcome, 1)

	go func() {
		reqCopy := req
		reqCopy.Options.Progress = facade.ChannelSink{Ch: events}
		res, err := facade.Synthesize(ctx, h, reqCopy)
		outcomeCh <- facadeOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, contracts, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		// Synthesize blocks on a full channel once nobody reads it
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
