package analyst

import "time"

// DefaultDelay is the simulated response latency of the analyst
const DefaultDelay = 2 * time.Second

// Options provides configuration for the simulated analyst
type Options struct {
	// Delay is waited before the report is generated
	Delay time.Duration

	// Timeout bounds a single analysis including the delay; zero disables it
	Timeout time.Duration
}

// DefaultOptions returns default analyst options
func DefaultOptions() Options {
	return Options{
		Delay:   DefaultDelay,
		Timeout: 0,
	}
}

// InstantOptions returns options for generation without simulated latency,
// used by the batch endpoint and the CLI
func InstantOptions() Options {
	opts := DefaultOptions()
	opts.Delay = 0
	return opts
}

// Validate clamps out-of-range values
func (o *Options) Validate() {
	if o.Delay < 0 {
		o.Delay = 0
	}
	if o.Timeout < 0 {
		o.Timeout = 0
	}
}
