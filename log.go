package main

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// setupLog silences logging unless a log file is requested. The TUI
// owns the terminal, so log output has to go elsewhere.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	logfile := os.Getenv("SPEAKGPT_LOGFILE")
	if logfile == "" {
		return func() error { return nil }, nil
	}

	f, err := tea.LogToFileWith(logfile, "speakgpt", log.Default())
	if err != nil {
		return nil, err
	}
	if os.Getenv("SPEAKGPT_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}
	return f.Close, nil
}
