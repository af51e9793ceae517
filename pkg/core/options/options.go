// Package options implements the functional-options convention used by the
// engine constructor: an Option mutates a pointer to a private options
// struct, and ApplyOptions folds a slice of them in order.
package options

// Option mutates the options struct passed to a constructor.
type Option func(cfg interface{})

// ApplyOptions applies each opt to optionsStructPtr in order.
func ApplyOptions(optionsStructPtr interface{}, opts ...Option) {
	for _, opt := range opts {
		opt(optionsStructPtr)
	}
}
