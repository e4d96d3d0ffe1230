package main

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"typewatch/internal/typecheck"
	"typewatch/internal/ui"
)

// runWatchWithUI drives tc in the background and renders its events until
// the user quits or the session ends.
func runWatchWithUI(ctx context.Context, title string, root string, tc *typecheck.Typechecker) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan ui.Event, 64)
	send := func(ev ui.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}
	tc.OnWatcherRerun(func(context.Context) error {
		send(ui.Event{Kind: ui.EventRerun})
		return nil
	})
	tc.OnParseStart(func(context.Context) error {
		send(ui.Event{Kind: ui.EventChecking})
		return nil
	})
	tc.OnParseEnd(func(_ context.Context, snap *typecheck.Snapshot) error {
		send(ui.Event{Kind: ui.EventResult, Snapshot: snap})
		return nil
	})

	errCh := make(chan error, 1)
	go func() {
		err := tc.Start(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			send(ui.Event{Kind: ui.EventError, Err: err})
		}
		errCh <- err
		close(events)
	}()

	model := ui.NewWatchModel(title, root, tc.Files(), events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	go func() {
		<-ctx.Done()
		program.Quit()
	}()
	_, uiErr := program.Run()
	cancel()
	err := <-errCh
	if uiErr != nil {
		return uiErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
