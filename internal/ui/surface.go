package ui

import tea "github.com/charmbracelet/bubbletea"

// ProgramSurface forwards backend error text into the running program
// as a message. It is registered with the client when the shell mounts
// and cleared again on quit, so no bare package-level handle exists.
type ProgramSurface struct {
	program *tea.Program
}

// NewProgramSurface creates a surface bound to the program
func NewProgramSurface(p *tea.Program) ProgramSurface {
	return ProgramSurface{program: p}
}

// ShowError implements api.ErrorSurface
func (s ProgramSurface) ShowError(text string) {
	s.program.Send(backendErrorMsg{text: text})
}
