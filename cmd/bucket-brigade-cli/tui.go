// ABOUTME: Starts the bucket-brigade-cli's bubbletea program
// ABOUTME: Returns the running *tea.Program so callers can forward StatusMsg updates
package main

import (
	tea "github.com/charmbracelet/bubbletea"
)

// runTUI starts the bubbletea program and returns it so the caller can
// forward StatusMsg updates via p.Send.
func runTUI(mode, serverAddr string, quit chan struct{}) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(mode, serverAddr, quit), tea.WithAltScreen())
	return p, nil
}
