package scaffold

import (
	"github.com/charmbracelet/log"
)

func defaultOptions() *options {
	return &options{
		logger: log.Default(),
	}
}

type options struct {
	logger  *log.Logger
	exclude []string
	ignore  []string
}

func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}

	return o
}

type Option func(*options)

func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithExclude omits the given root-relative paths and everything below them.
func WithExclude(paths ...string) Option {
	return func(o *options) {
		o.exclude = append(o.exclude, paths...)
	}
}

// WithIgnore omits paths matching any of the doublestar patterns.
func WithIgnore(patterns ...string) Option {
	return func(o *options) {
		o.ignore = append(o.ignore, patterns...)
	}
}
