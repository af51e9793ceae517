// Package engine implements the per-model inference engine (spec.md §4.5):
// interpreter materialization, input reconciliation across the four
// documented batching strategies, and batched invocation.
package engine

import (
	gt "gorgonia.org/tensor"
)

// Interpreter is the opaque abstraction boundary between the engine and the
// underlying ML runtime (spec.md §9 Design Notes): everything the engine
// needs from an interpreter, and nothing about how it is implemented.
type Interpreter interface {
	InputCount() int
	OutputCount() int

	InputDtype(i int) gt.Dtype
	InputShape(i int) []int
	OutputShape(i int) []int

	// ResizeInput attempts a native resize of input i to shape. A returned
	// error means the runtime rejected the resize; the caller falls back to
	// manual batching.
	ResizeInput(i int, shape []int) error
	AllocateTensors() error

	SetInput(i int, t *gt.Dense) error
	Invoke() error
	Output(i int) (*gt.Dense, error)

	Close()
}
