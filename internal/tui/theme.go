package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// theme returns the prompt theme: huh's base theme with the same accent
// colours the printer package uses.
func theme() *huh.Theme {
	t := huh.ThemeBase()

	accent := lipgloss.Color("6")
	selected := lipgloss.Color("2")

	t.Focused.Title = t.Focused.Title.Foreground(accent).Bold(true)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(accent)
	t.Focused.MultiSelectSelector = t.Focused.MultiSelectSelector.Foreground(accent)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(selected)
	t.Focused.SelectedPrefix = t.Focused.SelectedPrefix.Foreground(selected)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(accent)

	return t
}
