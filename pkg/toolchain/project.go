package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrNoProject = errors.New("no project root found (looked for devforge.toml, package.json, or Cargo.toml)")

// Kind is the kind of project found by Detect.
type Kind int

const (
	Fullstack Kind = iota
	Frontend
	Rust
)

func (k Kind) String() string {
	switch k {
	case Fullstack:
		return "fullstack"
	case Frontend:
		return "frontend"
	case Rust:
		return "rust"
	default:
		return "unknown"
	}
}

// markers are checked in priority order in each directory.
var markers = []struct {
	file string
	kind Kind
}{
	{"devforge.toml", Fullstack},
	{"package.json", Frontend},
	{"Cargo.toml", Rust},
}

// Detect walks up from start to the first directory holding a project
// marker file and returns it with the project's kind.
func Detect(start string) (string, Kind, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", 0, err
	}

	for {
		for _, m := range markers {
			if _, err := os.Stat(filepath.Join(dir, m.file)); err == nil {
				return dir, m.kind, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", 0, ErrNoProject
		}
		dir = parent
	}
}

// Command is one program invocation of a plan.
type Command struct {
	Dir  string
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// DevPlan returns the commands that start a development server.
func DevPlan(root string, kind Kind, manager string) []Command {
	switch kind {
	case Fullstack:
		return []Command{{Dir: root, Name: "cargo", Args: []string{"xtask", "dev"}}}
	case Frontend:
		return []Command{{Dir: root, Name: manager, Args: []string{"dev"}}}
	default:
		return []Command{{Dir: root, Name: "cargo", Args: []string{"run"}}}
	}
}

// BuildPlan returns the commands that produce a release build. A fullstack
// project also builds its web/ frontend when present.
func BuildPlan(root string, kind Kind, manager string) []Command {
	switch kind {
	case Fullstack:
		plan := []Command{{Dir: root, Name: "cargo", Args: []string{"build", "--release"}}}
		web := filepath.Join(root, "web")
		if info, err := os.Stat(web); err == nil && info.IsDir() {
			plan = append(plan, Command{Dir: web, Name: manager, Args: []string{"run", "build"}})
		}
		return plan
	case Frontend:
		return []Command{{Dir: root, Name: manager, Args: []string{"run", "build"}}}
	default:
		return []Command{{Dir: root, Name: "cargo", Args: []string{"build", "--release"}}}
	}
}

// Execute runs plan in order with output streamed to stdout and stderr. It
// stops at the first command that fails.
func Execute(ctx context.Context, r Runner, plan []Command, stdin io.Reader, stdout, stderr io.Writer) error {
	for _, c := range plan {
		res, err := r.Run(ctx, c.Name, c.Args, RunOpts{
			Dir:    c.Dir,
			Stdin:  stdin,
			Stdout: stdout,
			Stderr: stderr,
		})
		if err != nil {
			return fmt.Errorf("running %s: %w", c.Name, err)
		}
		if res.ExitCode != 0 {
			return &ExitError{Name: c.Name, Code: res.ExitCode}
		}
	}
	return nil
}
