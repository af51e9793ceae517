package engine

import "github.com/itohio/inferlite/pkg/core/options"

// engineOpts configures the tflite.InterpreterOptions an Engine builds its
// interpreter with. Grounded on
// pkg/core/marshaller/tflite/model.go's WithNumThreads/WithErrorReporter.
type engineOpts struct {
	numThreads    int
	errorReporter func(string)
}

// WithNumThreads sets the tflite interpreter's thread count (spec.md §9
// Design Notes' `tflite.WithNumThreads`).
func WithNumThreads(numThreads int) options.Option {
	return func(cfg interface{}) {
		if o, ok := cfg.(*engineOpts); ok {
			o.numThreads = numThreads
		}
	}
}

// WithErrorReporter installs a callback for tflite's internal diagnostic
// messages (spec.md §9 Design Notes' `tflite.WithErrorReporter`).
func WithErrorReporter(reporter func(string)) options.Option {
	return func(cfg interface{}) {
		if o, ok := cfg.(*engineOpts); ok {
			o.errorReporter = reporter
		}
	}
}
