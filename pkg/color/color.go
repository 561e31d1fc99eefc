package color

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI color codes
const (
	Reset     = "\033[0m"
	Red       = "\033[31m"
	Green     = "\033[32m"
	Yellow    = "\033[33m"
	Cyan      = "\033[36m"
	BoldStyle = "\033[1m"
)

var markers = []struct {
	name string
	code string
}{
	{"{green}", Green},
	{"{red}", Red},
	{"{yellow}", Yellow},
	{"{cyan}", Cyan},
	{"{bold}", BoldStyle},
	{"{reset}", Reset},
}

// isColorEnabled checks if color output should be enabled for w
func isColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}

	t := os.Getenv("TERM")
	return t != "dumb" && t != ""
}

// colorize wraps text with color codes if color is enabled
func colorize(w io.Writer, color, text string) string {
	if !isColorEnabled(w) {
		return text
	}
	return color + text + Reset
}

// Successf writes a green line to w
func Successf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, colorize(w, Green, fmt.Sprintf(format, args...)))
}

// Errorf writes a red line to w
func Errorf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, colorize(w, Red, fmt.Sprintf(format, args...)))
}

// Warningf writes a yellow line to w
func Warningf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, colorize(w, Yellow, fmt.Sprintf(format, args...)))
}

// Fprintf writes formatted text to w, replacing {color} markers with ANSI
// codes when w is a color-capable terminal and dropping them otherwise.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	enabled := isColorEnabled(w)
	for _, m := range markers {
		code := ""
		if enabled {
			code = m.code
		}
		format = strings.ReplaceAll(format, m.name, code)
	}

	fmt.Fprintf(w, format, args...)
}
