package steps

import (
	"context"
	"fmt"

	"github.com/nullslate/nullslate/pkg/events"
)

// Run executes steps in order against reg. The first failing step stops the
// run and its error is returned wrapped with the step's ID. Nothing already
// done is undone.
func Run(ctx context.Context, reg *Registry, handler events.Handler, steps ...Step) error {
	if handler == nil {
		handler = events.Discard
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		sc := NewStepContext(reg, handler, step)
		sc.Debug("running")

		if err := step.Fn(ctx, sc); err != nil {
			sc.Error(err, "step failed")
			return fmt.Errorf("%s: %w", step.ID, err)
		}
	}

	return nil
}
