package service

import (
	"log/slog"
	"time"

	"github.com/alexanderramin/tally/internal/advance"
	"github.com/alexanderramin/tally/internal/domain"
)

type options struct {
	now          func() time.Time
	engineLogger *slog.Logger
	observer     UseCaseObserver
	consensus    bool
	weightBasis  domain.WeightBasis
}

// Option configures a service.
type Option func(*options)

// WithClock fixes the current date used for percentages and measurement
// communication dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithEngineLogger passes a logger to the aggregation engine.
func WithEngineLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.engineLogger = l
	}
}

// WithObserver sets the use-case observer. Nil keeps the no-op observer.
func WithObserver(obs UseCaseObserver) Option {
	return func(o *options) {
		o.observer = useCaseObserverOrNoop([]UseCaseObserver{obs})
	}
}

// WithConsensusSelection lets groups report through the indirect type every
// child agrees on when nothing else is chosen.
func WithConsensusSelection() Option {
	return func(o *options) {
		o.consensus = true
	}
}

// WithDefaultWeightBasis sets the weight basis of orders created without one.
func WithDefaultWeightBasis(b domain.WeightBasis) Option {
	return func(o *options) {
		if domain.ValidWeightBases[string(b)] {
			o.weightBasis = b
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:         time.Now,
		observer:    NoopUseCaseObserver{},
		weightBasis: domain.WeightHours,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) treeOptions() []advance.Option {
	opts := []advance.Option{advance.WithClock(o.now)}
	if o.engineLogger != nil {
		opts = append(opts, advance.WithLogger(o.engineLogger))
	}
	if o.consensus {
		opts = append(opts, advance.WithConsensusSelection())
	}
	return opts
}
