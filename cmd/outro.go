package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nullslate/nullslate/pkg/features"
)

var (
	introStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1e1e2e")).Background(lipgloss.Color("#cba6f7")).Padding(0, 1)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	cancelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	stepsStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4"))
)

// nextSteps lists the commands that start a freshly created project.
func nextSteps(flavor features.Flavor, dir, manager string, installed bool) []string {
	steps := []string{"cd " + dir}

	switch flavor {
	case features.FlavorFullstack:
		if !installed {
			steps = append(steps, fmt.Sprintf("(cd web && %s install)", manager))
		}
		steps = append(steps, "nullslate dev")
	case features.FlavorLib:
		if !installed {
			steps = append(steps, manager+" install")
		}
		steps = append(steps, manager+" run build")
	default:
		if !installed {
			steps = append(steps, manager+" install")
		}
		steps = append(steps, manager+" dev")
	}

	return steps
}

func outroMessage(name, path string, steps []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Created %s at %s\n\n  Next steps:", name, path)
	for _, s := range steps {
		b.WriteString("\n    ")
		b.WriteString(s)
	}
	return b.String()
}

func printIntro(w io.Writer) {
	if isTerminal(w) {
		fmt.Fprintln(w, introStyle.Render("nullslate"))
	} else {
		fmt.Fprintln(w, "nullslate")
	}
	fmt.Fprintln(w)
}

func printOutro(w io.Writer, msg string) {
	if !isTerminal(w) {
		fmt.Fprintln(w, msg)
		return
	}
	head, rest, _ := strings.Cut(msg, "\n")
	fmt.Fprintln(w, doneStyle.Render("✔ "+head))
	if rest != "" {
		fmt.Fprintln(w, stepsStyle.Render(rest))
	}
}

func printCancel(w io.Writer, msg string) {
	if isTerminal(w) {
		fmt.Fprintln(w, cancelStyle.Render("✖ "+msg))
		return
	}
	fmt.Fprintln(w, msg)
}

func printDone(w io.Writer, msg string) {
	if isTerminal(w) {
		fmt.Fprintln(w, doneStyle.Render("✔ ")+msg)
		return
	}
	fmt.Fprintln(w, msg)
}
