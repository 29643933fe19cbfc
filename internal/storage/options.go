package storage

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a store.
type Option func(*options)

type options struct {
	logger      *zap.Logger
	now         func() time.Time
	constraints []Constraint
}

func defaultOptions() options {
	return options{
		logger:      zap.NewNop(),
		now:         time.Now,
		constraints: DefaultConstraints,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for warnings and migrations.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the clock used for created_date.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithConstraints replaces DefaultConstraints.
func WithConstraints(c []Constraint) Option {
	return func(o *options) {
		o.constraints = c
	}
}

func (o options) createdDate() string {
	return o.now().UTC().Format(time.RFC3339)
}
