// Package ui provides terminal user interface components for taskboard.
// This file defines message types for async I/O operations using the Bubble Tea
// command pattern. All storage operations should return these messages to keep
// the event loop non-blocking.
package ui

import "taskboard/internal/storage"

// =============================================================================
// Board Messages
// =============================================================================

// boardLoadedMsg carries a fresh snapshot of the board.
type boardLoadedMsg struct {
	snap Snapshot
	err  error
}

// samplesSeededMsg is sent after the first-run sample check.
type samplesSeededMsg struct {
	seeded bool
	err    error
}

// =============================================================================
// Task Messages
// =============================================================================

// taskCreatedMsg is sent when a new task is created. On a persistence error
// task is still set.
type taskCreatedMsg struct {
	task storage.Task
	err  error
}

// taskToggledMsg is sent when a task's completed flag is flipped.
type taskToggledMsg struct {
	id  string
	err error
}

// taskDeletedMsg is sent when a task is removed.
type taskDeletedMsg struct {
	id  string
	err error
}

// =============================================================================
// Project Messages
// =============================================================================

// projectCreatedMsg is sent when a project is added.
type projectCreatedMsg struct {
	project storage.Project
	err     error
}

// =============================================================================
// Theme Messages
// =============================================================================

// themeToggledMsg is sent when the theme has been flipped.
type themeToggledMsg struct {
	theme string
	err   error
}
