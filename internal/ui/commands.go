// Package ui provides terminal user interface components for taskboard.
// This file contains tea.Cmd factories that wrap board operations. These
// commands run I/O operations asynchronously to keep the Bubble Tea event
// loop responsive. Each command returns a corresponding message type defined
// in messages.go.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// Board Commands
// =============================================================================

// loadBoardCmd returns a command that reads a snapshot of the board.
func loadBoardCmd(board *Board) tea.Cmd {
	return func() tea.Msg {
		snap, err := board.Snapshot()
		return boardLoadedMsg{snap: snap, err: err}
	}
}

// seedSamplesCmd returns a command that seeds example tasks into an empty
// board.
func seedSamplesCmd(board *Board) tea.Cmd {
	return func() tea.Msg {
		seeded, err := board.SeedSamples()
		return samplesSeededMsg{seeded: seeded, err: err}
	}
}

// selectCmd returns a command that changes the selection and reads the
// board for it.
func selectCmd(board *Board, project, filter string) tea.Cmd {
	return func() tea.Msg {
		board.OnSelectionChange(project, filter)
		snap, err := board.Snapshot()
		return boardLoadedMsg{snap: snap, err: err}
	}
}

// =============================================================================
// Task Commands
// =============================================================================

// createTaskCmd returns a command that creates a task from raw input.
func createTaskCmd(board *Board, text, dueDate string) tea.Cmd {
	return func() tea.Msg {
		task, err := board.OnCreateTask(text, dueDate)
		return taskCreatedMsg{task: task, err: err}
	}
}

// toggleTaskCmd returns a command that flips a task's completed flag.
func toggleTaskCmd(board *Board, id string) tea.Cmd {
	return func() tea.Msg {
		return taskToggledMsg{id: id, err: board.OnToggle(id)}
	}
}

// deleteTaskCmd returns a command that removes a task.
func deleteTaskCmd(board *Board, id string) tea.Cmd {
	return func() tea.Msg {
		return taskDeletedMsg{id: id, err: board.OnDelete(id)}
	}
}

// =============================================================================
// Project Commands
// =============================================================================

// createProjectCmd returns a command that adds a project.
func createProjectCmd(board *Board, name string) tea.Cmd {
	return func() tea.Msg {
		project, err := board.OnProjectCreate(name)
		return projectCreatedMsg{project: project, err: err}
	}
}

// =============================================================================
// Theme Commands
// =============================================================================

// toggleThemeCmd returns a command that flips and stores the theme.
func toggleThemeCmd(board *Board) tea.Cmd {
	return func() tea.Msg {
		theme, err := board.ToggleTheme()
		return themeToggledMsg{theme: theme, err: err}
	}
}
