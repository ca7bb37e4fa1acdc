package trace

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// OutputFormatter renders events as one line per step, colorized when the
// writer is a terminal.
type OutputFormatter struct {
	writer   io.Writer
	useColor bool
}

// NewOutputFormatter creates a formatter writing to w (stdout when nil).
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		useColor = err == nil && (stat.Mode()&os.ModeCharDevice) != 0
	}
	return &OutputFormatter{writer: w, useColor: useColor}
}

// Handle implements Handler.
func (f *OutputFormatter) Handle(event Event) {
	fmt.Fprintln(f.writer, f.Format(event))
}

// Format renders a single event.
func (f *OutputFormatter) Format(event Event) string {
	deps := "-"
	if len(event.Deps) > 0 {
		parts := make([]string, len(event.Deps))
		for i, d := range event.Deps {
			parts[i] = fmt.Sprintf("%d", d)
		}
		deps = strings.Join(parts, ",")
	}
	args := ""
	if len(event.Args) > 0 {
		args = "(" + strings.Join(event.Args, ", ") + ")"
	}
	return fmt.Sprintf("%3d %s%s deps=%s -> %s",
		event.Step,
		f.colorize(event.Function, color.FgCyan),
		args,
		f.colorize(deps, color.FgYellow),
		f.colorize(event.Result, color.FgGreen))
}

func (f *OutputFormatter) colorize(s string, attr color.Attribute) string {
	if !f.useColor {
		return s
	}
	return color.New(attr).Sprint(s)
}
