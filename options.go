package eventfsm

import "github.com/go-logr/logr"

type options struct {
	logger logr.Logger
	name   string
}

// Option configures a Machine.
type Option func(*options)

// WithLogger sets the logger. Committed and rejected transitions are logged
// at V(1), callback failures as errors. The default discards everything.
func WithLogger(logger logr.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithName names the machine in log output.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func newOptions(opts []Option) options {
	o := options{logger: logr.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.name != "" {
		o.logger = o.logger.WithName(o.name)
	}
	return o
}
