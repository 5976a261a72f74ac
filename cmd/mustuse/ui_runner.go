package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"mustuse/internal/driver"
	"mustuse/internal/ui"
)

type analyzeOutcome struct {
	result driver.Result
	err    error
}

// runAnalyzeWithUI запускает анализ в горутине и рисует прогресс через
// Bubble Tea, слушая канал событий до его закрытия.
func runAnalyzeWithUI(ctx context.Context, title string, req driver.Request) (driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan analyzeOutcome, 1)

	go func() {
		reqCopy := req
		reqCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Analyze(ctx, reqCopy)
		outcomeCh <- analyzeOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, req.Paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
