package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNilWorkflow is returned when Run or RunResend get no flow to drive.
	ErrNilWorkflow = errors.New("tui: workflow is nil")
)
