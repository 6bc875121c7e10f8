package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/nullslate/nullslate/pkg/events"
)

// newLogger builds the stderr logger shared by every command.
func newLogger(cmd *cli.Command) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "nullslate",
	})
	logger.SetLevel(logLevel(cmd.Bool("verbose"), cmd.Bool("quiet")))
	return logger
}

func logLevel(verbose, quiet bool) log.Level {
	switch {
	case verbose:
		return log.DebugLevel
	case quiet:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// logPrinter prints scaffold events as they happen. Events outside
// [minLevel, maxLevel] are left to the end-of-run summary.
type logPrinter struct {
	out                io.Writer
	minLevel, maxLevel events.Level
	mu                 sync.Mutex

	levelStyles map[events.Level]lipgloss.Style
	stepStyle   lipgloss.Style
	hintStyle   lipgloss.Style
}

func newLogPrinter(out io.Writer, minLevel, maxLevel events.Level) *logPrinter {
	p := &logPrinter{
		out:      out,
		minLevel: minLevel,
		maxLevel: maxLevel,
	}

	if !isTerminal(out) {
		return p
	}

	p.levelStyles = map[events.Level]lipgloss.Style{
		events.Debug:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086")), // muted
		events.Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")), // blue
		events.Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af")), // yellow
		events.Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")), // red
	}
	p.stepStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8")) // grey
	p.hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086")).Italic(true)
	return p
}

func (p *logPrinter) Handle(e events.Event) {
	if e.Level < p.minLevel || e.Level > p.maxLevel {
		return
	}
	p.Print(e)
}

func (p *logPrinter) Print(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if levelStyle, ok := p.levelStyles[e.Level]; ok {
		fmt.Fprintln(p.out, formatEventRich(e, levelStyle.Render(e.Level.String()), p.stepStyle, p.hintStyle))
		return
	}
	fmt.Fprintln(p.out, formatEventPlain(e))
}

func formatEventPlain(e events.Event) string {
	var b strings.Builder

	b.WriteString(e.Level.String())
	if e.Step != "" {
		b.WriteString(" [")
		b.WriteString(e.Step)
		b.WriteString("]")
	}
	b.WriteString(": ")

	b.WriteString(e.Message)
	if e.Error != nil {
		b.WriteString(": ")
		b.WriteString(e.Error.Error())
	}
	if e.Hint != "" {
		b.WriteString("\n  ")
		b.WriteString(e.Hint)
	}

	return b.String()
}

func formatEventRich(e events.Event, levelToken string, stepStyle, hintStyle lipgloss.Style) string {
	var b strings.Builder

	b.WriteString(levelToken)
	if e.Step != "" {
		b.WriteString(" ")
		b.WriteString(stepStyle.Render("[" + e.Step + "]"))
	}
	b.WriteString(": ")

	b.WriteString(e.Message)
	if e.Error != nil {
		b.WriteString(": ")
		b.WriteString(e.Error.Error())
	}
	if e.Hint != "" {
		b.WriteString("\n  ")
		b.WriteString(hintStyle.Render(e.Hint))
	}

	return b.String()
}

// heldEvents keeps scaffold events back while a spinner owns the terminal.
// Flush replays them once the spinner has stopped.
type heldEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (h *heldEvents) Handle(e events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *heldEvents) Flush(to events.Handler) {
	h.mu.Lock()
	held := h.events
	h.events = nil
	h.mu.Unlock()

	for _, e := range held {
		to.Handle(e)
	}
}

// debugEvents forwards debug events to logger as they happen; logger only
// prints them in verbose mode.
func debugEvents(logger *log.Logger) events.Handler {
	return events.HandlerFunc(func(e events.Event) {
		if e.Level != events.Debug {
			return
		}
		kv := []any{"step", e.Step}
		if e.Error != nil {
			kv = append(kv, "err", e.Error)
		}
		logger.Debug(e.Message, kv...)
	})
}

// printSummary prints the warnings and errors collected during a run.
func printSummary(p *logPrinter, summary *events.Summary) {
	if summary == nil || summary.Clean() {
		return
	}
	for _, e := range summary.Errors {
		p.Print(e)
	}
	for _, e := range summary.Warnings {
		p.Print(e)
	}
}
