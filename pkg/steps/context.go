package steps

import (
	"fmt"

	"github.com/nullslate/nullslate/pkg/events"
	"github.com/nullslate/nullslate/pkg/utils/set"
)

// Context is how a step talks to the pipeline running it.
type Context interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Debug(message string)
	Debugf(format string, args ...any)
	Info(message string)
	Infof(format string, args ...any)
	Warn(err error, message, hint string)
	Error(err error, message string)
}

func NewStepContext(reg *Registry, handler events.Handler, step Step) Context {
	if handler == nil {
		handler = events.Discard
	}
	return &stepContext{
		id:           step.ID,
		registry:     reg,
		reads:        set.FromSlice(step.Reads),
		writes:       set.FromSlice(step.Writes),
		eventHandler: handler,
	}
}

type stepContext struct {
	id StepID

	registry *Registry
	reads    *set.Set[string]
	writes   *set.Set[string]

	eventHandler events.Handler
}

func (sc *stepContext) Get(key string) (any, bool) {
	if !sc.reads.Has(key) && !sc.writes.Has(key) {
		panic(fmt.Sprintf("step %s read registry key %q without declaring it", sc.id, key))
	}
	return sc.registry.Get(key)
}

func (sc *stepContext) Set(key string, value any) {
	if !sc.writes.Has(key) {
		panic(fmt.Sprintf("step %s wrote registry key %q without declaring it", sc.id, key))
	}
	sc.registry.Set(key, value)
}

func (sc *stepContext) event(level events.Level, message, hint string, err error) {
	sc.eventHandler.Handle(events.Event{
		Level:   level,
		Step:    sc.id.String(),
		Message: message,
		Hint:    hint,
		Error:   err,
	})
}

func (sc *stepContext) Debug(message string) {
	sc.event(events.Debug, message, "", nil)
}

func (sc *stepContext) Debugf(format string, args ...any) {
	sc.event(events.Debug, fmt.Sprintf(format, args...), "", nil)
}

func (sc *stepContext) Info(message string) {
	sc.event(events.Info, message, "", nil)
}

func (sc *stepContext) Infof(format string, args ...any) {
	sc.event(events.Info, fmt.Sprintf(format, args...), "", nil)
}

func (sc *stepContext) Warn(err error, message, hint string) {
	sc.event(events.Warning, message, hint, err)
}

func (sc *stepContext) Error(err error, message string) {
	sc.event(events.Error, message, "", err)
}
