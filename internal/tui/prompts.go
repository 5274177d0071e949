package tui

import (
	"github.com/charmbracelet/huh"
)

// Confirm asks a yes/no question. def is the preselected answer.
func Confirm(title, description string, def bool) (bool, error) {
	value := def
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&value).
		WithTheme(theme()).
		Run()
	return value, err
}

// Input asks for a line of text prefilled with def. validate may be nil.
func Input(title, description, def string, validate func(string) error) (string, error) {
	value := def
	field := huh.NewInput().
		Title(title).
		Description(description).
		Value(&value)
	if validate != nil {
		field = field.Validate(validate)
	}
	err := field.WithTheme(theme()).Run()
	return value, err
}

// MultiSelect lets the user pick any number of values. Values listed in
// defaults start selected.
func MultiSelect(title, description string, options []string, defaults []string) ([]string, error) {
	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o, o)
	}

	selected := append([]string(nil), defaults...)
	err := huh.NewMultiSelect[string]().
		Title(title).
		Description(description).
		Options(opts...).
		Value(&selected).
		WithTheme(theme()).
		Run()
	return selected, err
}
