package steps

import (
	"context"
	"fmt"
)

type StepID struct {
	Owner string
	Name  string
	Sub   string
}

func (s StepID) String() string {
	if s.Sub == "" {
		return fmt.Sprintf("%s:%s", s.Owner, s.Name)
	}
	return fmt.Sprintf("%s:%s:%s", s.Owner, s.Name, s.Sub)
}

func StepFunc(id StepID, fn func(context.Context, Context) error) Step {
	return Step{
		ID: id,
		Fn: fn,
	}
}

// Step is one unit of a pipeline. Reads and Writes name the registry keys the
// step may touch.
type Step struct {
	ID     StepID
	Reads  []string
	Writes []string
	Fn     func(context.Context, Context) error
}

func (s Step) WithReads(reads ...string) Step {
	s.Reads = append([]string(nil), reads...)
	return s
}

func (s Step) WithWrites(writes ...string) Step {
	s.Writes = append([]string(nil), writes...)
	return s
}
