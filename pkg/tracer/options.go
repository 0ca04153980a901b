package tracer

import "runtime"

type options struct {
	observer      Observer
	workers       int
	maxCandidates int
}

// Option configures a Tracer.
type Option func(*options)

// WithObserver sets the observer notified while tracing.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observer = o
		}
	}
}

// WithWorkers sets how many goroutines TraceParallel uses. Values below 1
// select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(opts *options) {
		opts.workers = n
	}
}

// WithMaxCandidates caps the number of candidate sequences one query may
// enumerate. Zero means no cap.
func WithMaxCandidates(n int) Option {
	return func(opts *options) {
		opts.maxCandidates = n
	}
}

func defaultOptions() options {
	return options{
		observer: NopObserver{},
		workers:  runtime.GOMAXPROCS(0),
	}
}
