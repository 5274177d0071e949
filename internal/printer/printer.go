package printer

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Style definitions for consistent console output across the application.
var (
	faintStyle   = lipgloss.NewStyle().Faint(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // Yellow
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan
	keyStyle     = lipgloss.NewStyle().Bold(true).Width(14)
)

// out is where the Print functions write.
var out io.Writer = os.Stdout

// SetOutput redirects the Print functions. A nil writer restores stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// SetNoColor switches every style to plain text when disabled is true, and
// back to the detected terminal profile otherwise. NO_COLOR is honoured
// by the detection itself.
func SetNoColor(disabled bool) {
	if disabled {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.EnvColorProfile())
}

// Faint returns text with faint styling.
func Faint(text string) string {
	return faintStyle.Render(text)
}

// Bold returns text with bold styling.
func Bold(text string) string {
	return boldStyle.Render(text)
}

// Success returns text with success (green) styling.
func Success(text string) string {
	return successStyle.Render(text)
}

// Error returns text with error (red) styling.
func Error(text string) string {
	return errorStyle.Render(text)
}

// Warning returns text with warning (yellow) styling.
func Warning(text string) string {
	return warningStyle.Render(text)
}

// Info returns text with info (cyan) styling.
func Info(text string) string {
	return infoStyle.Render(text)
}

// KeyValue renders an aligned "key value" row.
func KeyValue(key, value string) string {
	return keyStyle.Render(key) + " " + value
}

// Mark returns the status glyph for a check: a tick when passed, a warning
// sign for warnings, and a cross for failures.
func Mark(passed, warning bool) string {
	switch {
	case warning:
		return Warning("!")
	case passed:
		return Success("✓")
	default:
		return Error("✗")
	}
}

// PrintFaint prints text with faint styling.
func PrintFaint(text string) {
	fmt.Fprintln(out, Faint(text))
}

// PrintBold prints text with bold styling.
func PrintBold(text string) {
	fmt.Fprintln(out, Bold(text))
}

// PrintSuccess prints text with success (green) styling.
func PrintSuccess(text string) {
	fmt.Fprintln(out, Success(text))
}

// PrintError prints text with error (red) styling.
func PrintError(text string) {
	fmt.Fprintln(out, Error(text))
}

// PrintWarning prints text with warning (yellow) styling.
func PrintWarning(text string) {
	fmt.Fprintln(out, Warning(text))
}

// PrintInfo prints text with info (cyan) styling.
func PrintInfo(text string) {
	fmt.Fprintln(out, Info(text))
}

// PrintKeyValue prints an aligned "key value" row.
func PrintKeyValue(key, value string) {
	fmt.Fprintln(out, KeyValue(key, value))
}

// PrintCheck prints a status line prefixed with its Mark.
func PrintCheck(passed, warning bool, text string) {
	fmt.Fprintf(out, "  %s %s\n", Mark(passed, warning), text)
}

// Println prints text unstyled.
func Println(text string) {
	fmt.Fprintln(out, text)
}
