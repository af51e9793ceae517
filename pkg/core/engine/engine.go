package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/itohio/inferlite/pkg/core/gwerrors"
	"github.com/itohio/inferlite/pkg/core/options"
	coretensor "github.com/itohio/inferlite/pkg/core/tensor"
	gt "gorgonia.org/tensor"
)

// Source is the interpreter construction source an Engine materializes
// from: exactly one of Bytes/Path is populated.
type Source struct {
	Bytes []byte
	Path  string
}

// Engine is the per-model inference engine (spec.md §4.5): it lazily
// materializes an Interpreter on first Predict and reuses it for the
// model's lifetime.
type Engine struct {
	source Source
	opts   engineOpts

	mu     sync.Mutex
	interp Interpreter
}

// New returns an Engine that will materialize its interpreter from source
// on first use, configured by opts (WithNumThreads, WithErrorReporter).
func New(source Source, opts ...options.Option) *Engine {
	e := &Engine{source: source}
	options.ApplyOptions(&e.opts, opts...)
	return e
}

// materialize constructs the interpreter if it hasn't been already (spec.md
// §4.5.1). Callers must hold e.mu.
func (e *Engine) materialize() error {
	if e.interp != nil {
		return nil
	}

	var (
		interp Interpreter
		err    error
	)
	switch {
	case e.source.Bytes != nil:
		interp, err = NewFromBytes(e.source.Bytes, e.opts)
	case e.source.Path != "":
		interp, err = NewFromPath(e.source.Path, e.opts)
	default:
		return gwerrors.NewModelLoadError("engine has neither model bytes nor a path")
	}
	if err != nil {
		return err
	}

	e.interp = interp
	return nil
}

// Close releases the underlying interpreter, if materialized.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.interp != nil {
		e.interp.Close()
		e.interp = nil
	}
}

// batchPlan is the per-input outcome of shape classification (spec.md
// §4.5.2).
type batchPlan struct {
	tensor      *gt.Dense // always [mb, *shape], with mb == 1 when no manual batching applies
	manualBatch int
}

// Predict runs inference with inputs against the materialized interpreter,
// implementing dtype coercion, shape classification, manual batch
// normalization and consistency checking, and batched invocation (spec.md
// §4.5.2, §4.5.3). It returns the output tensors and the wall-clock time
// spent inside Invoke calls; pkg/core/metrics turns the latter into a wire
// Metrics value.
func (e *Engine) Predict(inputs []*gt.Dense) ([]*gt.Dense, time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.materialize(); err != nil {
		return nil, 0, err
	}

	n := e.interp.InputCount()
	if len(inputs) != n {
		return nil, 0, gwerrors.NewTensorTypeError(
			"expected %d input tensors, got %d", n, len(inputs))
	}

	plans := make([]batchPlan, n)
	for i, t := range inputs {
		plan, err := e.reconcileInput(i, t)
		if err != nil {
			return nil, 0, err
		}
		plans[i] = plan
	}

	mb := plans[0].manualBatch
	observed := make([]int, n)
	for i, p := range plans {
		observed[i] = p.manualBatch
		if p.manualBatch != mb {
			return nil, 0, gwerrors.NewTensorTypeError(
				"inconsistent manual batch sizes across inputs: %v", observed)
		}
	}

	return e.runBatch(plans, mb)
}

// reconcileInput implements spec.md §4.5.2 steps 1-3 for input i.
func (e *Engine) reconcileInput(i int, t *gt.Dense) (batchPlan, error) {
	expectedDtype := e.interp.InputDtype(i)
	t, err := coerceDtype(t, expectedDtype)
	if err != nil {
		return batchPlan{}, err
	}

	shapeI := e.interp.InputShape(i)
	s := []int(t.Shape())
	rs, rx := len(s), len(shapeI)

	manualBatch := 0

	switch {
	case rs == rx+1 && sliceEqual(s[1:], shapeI):
		if err := e.interp.ResizeInput(i, s); err == nil {
			break
		}
		if err := e.interp.ResizeInput(i, s[1:]); err != nil {
			return batchPlan{}, gwerrors.NewTensorTypeError(
				"unable to resize input %d to %v or %v: %v", i, s, s[1:], err)
		}
		manualBatch = s[0]

	case rs == rx && len(shapeI) > 0 && sliceEqual(s[1:], shapeI[1:]) && shapeI[0] == 1 && s[0] != 1:
		if err := e.interp.ResizeInput(i, s); err == nil {
			break
		}
		if err := e.interp.ResizeInput(i, shapeI); err != nil {
			return batchPlan{}, gwerrors.NewTensorTypeError(
				"unable to resize input %d to %v or %v: %v", i, s, shapeI, err)
		}
		manualBatch = s[0]
		reshaped, err := reshape(t, append([]int{s[0]}, shapeI...))
		if err != nil {
			return batchPlan{}, err
		}
		t = reshaped

	case rs == rx-1 && len(shapeI) > 0 && shapeI[0] == 1 && sliceEqual(s, shapeI[1:]):
		if err := e.interp.ResizeInput(i, shapeI); err != nil {
			return batchPlan{}, gwerrors.NewTensorTypeError(
				"unable to resize input %d to %v: %v", i, shapeI, err)
		}
		reshaped, err := reshape(t, shapeI)
		if err != nil {
			return batchPlan{}, err
		}
		t = reshaped

	case sliceEqual(s, shapeI):
		if err := e.interp.ResizeInput(i, shapeI); err != nil {
			return batchPlan{}, gwerrors.NewTensorTypeError(
				"unable to resize input %d to %v: %v", i, shapeI, err)
		}

	default:
		return batchPlan{}, gwerrors.NewTensorTypeError(
			"tensor shape mismatch for input %d: expected %v, %v (batch), %v (leading-dim batch), or %v (singular), got %v",
			i, shapeI, append([]int{-1}, shapeI...), append([]int{-1}, shapeI...), shapeI[minInt(1, len(shapeI)):], s)
	}

	if manualBatch == 0 {
		wrapped, err := reshape(t, append([]int{1}, []int(t.Shape())...))
		if err != nil {
			return batchPlan{}, err
		}
		t = wrapped
		manualBatch = 1
	}

	return batchPlan{tensor: t, manualBatch: manualBatch}, nil
}

// runBatch implements spec.md §4.5.3: for k in 0..mb-1, set each input's
// k-th slice, invoke, and append each output's slice along the leading
// dimension.
func (e *Engine) runBatch(plans []batchPlan, mb int) ([]*gt.Dense, time.Duration, error) {
	outCount := e.interp.OutputCount()
	accum := make([][]*gt.Dense, outCount)

	var execTime time.Duration
	for k := 0; k < mb; k++ {
		for i, p := range plans {
			slice, err := sliceLeading(p.tensor, k)
			if err != nil {
				return nil, 0, err
			}
			if err := e.interp.SetInput(i, slice); err != nil {
				return nil, 0, gwerrors.NewTensorTypeError("setting input %d batch element %d: %v", i, k, err)
			}
		}

		start := time.Now()
		err := e.interp.Invoke()
		execTime += time.Since(start)
		if err != nil {
			return nil, 0, fmt.Errorf("inference failed: %w", err)
		}

		for j := 0; j < outCount; j++ {
			out, err := e.interp.Output(j)
			if err != nil {
				return nil, 0, fmt.Errorf("reading output %d: %w", j, err)
			}
			accum[j] = append(accum[j], out)
		}
	}

	outputs := make([]*gt.Dense, outCount)
	for j := range accum {
		concatenated, err := concatLeading(accum[j])
		if err != nil {
			return nil, 0, err
		}
		outputs[j] = concatenated
	}
	return outputs, execTime, nil
}

// coerceDtype implements spec.md §4.5.2 step 1.
func coerceDtype(t *gt.Dense, expected gt.Dtype) (*gt.Dense, error) {
	if t.Dtype() == expected {
		return t, nil
	}
	switch expected {
	case gt.Uint8, gt.Int8, gt.Int16, gt.Int64:
		return coretensor.CastElements(t, expected)
	default:
		return nil, gwerrors.NewTensorTypeError("dtype mismatch: expected %s, got %s", expected, t.Dtype())
	}
}

func sliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// reshape clones t and reshapes it to shape (gorgonia's Reshape mutates in
// place, so models/callers that still reference t are unaffected).
func reshape(t *gt.Dense, shape []int) (*gt.Dense, error) {
	clone := t.Clone().(*gt.Dense)
	if err := clone.Reshape(shape...); err != nil {
		return nil, gwerrors.NewTensorTypeError("reshaping tensor to %v: %v", shape, err)
	}
	return clone, nil
}

// sliceLeading returns the k-th slice of t along its leading dimension as a
// tensor with that dimension dropped. gorgonia's S(k, k+1) keeps a length-1
// leading axis, so the result is reshaped to drop it.
func sliceLeading(t *gt.Dense, k int) (*gt.Dense, error) {
	sliced, err := t.Slice(gt.S(k, k+1))
	if err != nil {
		return nil, gwerrors.NewTensorTypeError("slicing batch element %d: %v", k, err)
	}
	dense, ok := sliced.(*gt.Dense)
	if !ok {
		return nil, gwerrors.NewTensorTypeError("slicing batch element %d produced a non-dense tensor", k)
	}
	rest := []int(dense.Shape())[1:]
	return reshape(dense, rest)
}

// concatLeading concatenates parts along a new leading dimension (spec.md
// §4.5.3's "append ... along the leading dimension").
func concatLeading(parts []*gt.Dense) (*gt.Dense, error) {
	if len(parts) == 0 {
		return nil, gwerrors.NewTensorTypeError("no output produced")
	}
	withLeadingAxis := make([]*gt.Dense, len(parts))
	for i, p := range parts {
		reshaped, err := reshape(p, append([]int{1}, []int(p.Shape())...))
		if err != nil {
			return nil, err
		}
		withLeadingAxis[i] = reshaped
	}
	if len(withLeadingAxis) == 1 {
		return withLeadingAxis[0], nil
	}

	out, err := gt.Concat(0, withLeadingAxis[0], withLeadingAxis[1:]...)
	if err != nil {
		return nil, gwerrors.NewTensorTypeError("concatenating batch outputs: %v", err)
	}
	dense, ok := out.(*gt.Dense)
	if !ok {
		return nil, gwerrors.NewTensorTypeError("concatenating batch outputs produced a non-dense tensor")
	}
	return dense, nil
}
