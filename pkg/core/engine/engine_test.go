package engine

import (
	"testing"

	"github.com/itohio/inferlite/pkg/core/gwerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gt "gorgonia.org/tensor"
)

// fakeInterpreter is a scriptable Interpreter for exercising the
// reconciliation algorithm without a real tflite runtime.
type fakeInterpreter struct {
	inputShape  []int
	outputShape []int
	inputDtype  gt.Dtype

	// allowNativeResize controls whether ResizeInput succeeds for the
	// originally-requested shape (simulating the interpreter accepting or
	// rejecting a native batch resize).
	allowNativeResize bool

	currentInputShape []int
	setInputs         []*gt.Dense
	invokeCount       int
}

func (f *fakeInterpreter) InputCount() int  { return 1 }
func (f *fakeInterpreter) OutputCount() int { return 1 }

func (f *fakeInterpreter) InputDtype(int) gt.Dtype { return f.inputDtype }
func (f *fakeInterpreter) InputShape(int) []int    { return f.inputShape }
func (f *fakeInterpreter) OutputShape(int) []int   { return f.outputShape }

func (f *fakeInterpreter) ResizeInput(_ int, shape []int) error {
	if sliceEqual(shape, f.inputShape) {
		f.currentInputShape = shape
		return nil
	}
	if !f.allowNativeResize {
		return assertErr{"native resize refused"}
	}
	f.currentInputShape = shape
	f.inputShape = shape
	return nil
}

func (f *fakeInterpreter) AllocateTensors() error { return nil }

func (f *fakeInterpreter) SetInput(_ int, t *gt.Dense) error {
	f.setInputs = append(f.setInputs, t)
	return nil
}

func (f *fakeInterpreter) Invoke() error {
	f.invokeCount++
	return nil
}

func (f *fakeInterpreter) Output(int) (*gt.Dense, error) {
	n := 1
	for _, d := range f.outputShape {
		n *= d
	}
	data := make([]float32, n)
	return gt.New(gt.WithShape(f.outputShape...), gt.Of(gt.Float32), gt.WithBacking(data)), nil
}

func (f *fakeInterpreter) Close() {}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }

func newEngineWithFake(f *fakeInterpreter) *Engine {
	e := &Engine{source: Source{Bytes: []byte("x")}}
	e.interp = f
	return e
}

func TestPredictIdentityShape(t *testing.T) {
	f := &fakeInterpreter{inputShape: []int{1, 4}, outputShape: []int{1, 2}, inputDtype: gt.Float32, allowNativeResize: true}
	e := newEngineWithFake(f)

	input := gt.New(gt.WithShape(1, 4), gt.Of(gt.Float32), gt.WithBacking([]float32{1, 2, 3, 4}))
	outputs, _, err := e.Predict([]*gt.Dense{input})
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, 1, f.invokeCount)
}

func TestPredictNativeBatch(t *testing.T) {
	f := &fakeInterpreter{inputShape: []int{1, 4}, outputShape: []int{1, 2}, inputDtype: gt.Float32, allowNativeResize: true}
	e := newEngineWithFake(f)

	input := gt.New(gt.WithShape(3, 4), gt.Of(gt.Float32), gt.WithBacking(make([]float32, 12)))
	outputs, _, err := e.Predict([]*gt.Dense{input})
	require.NoError(t, err)
	assert.Equal(t, 1, f.invokeCount) // native batch: one invoke call
	assert.Equal(t, []int{3, 4}, f.currentInputShape)
	require.Len(t, outputs, 1)
}

func TestPredictManualBatchFallback(t *testing.T) {
	f := &fakeInterpreter{inputShape: []int{1, 4}, outputShape: []int{1, 2}, inputDtype: gt.Float32, allowNativeResize: false}
	e := newEngineWithFake(f)

	input := gt.New(gt.WithShape(3, 4), gt.Of(gt.Float32), gt.WithBacking(make([]float32, 12)))
	outputs, _, err := e.Predict([]*gt.Dense{input})
	require.NoError(t, err)
	assert.Equal(t, 3, f.invokeCount) // manual batch: one invoke per element
	require.Len(t, outputs, 1)
	assert.Equal(t, []int{3, 1, 2}, []int(outputs[0].Shape()))
}

func TestPredictSingularWrapping(t *testing.T) {
	f := &fakeInterpreter{inputShape: []int{1, 4}, outputShape: []int{1, 2}, inputDtype: gt.Float32, allowNativeResize: true}
	e := newEngineWithFake(f)

	input := gt.New(gt.WithShape(4), gt.Of(gt.Float32), gt.WithBacking([]float32{1, 2, 3, 4}))
	outputs, _, err := e.Predict([]*gt.Dense{input})
	require.NoError(t, err)
	assert.Equal(t, 1, f.invokeCount)
	require.Len(t, outputs, 1)
}

func TestPredictWrongInputCount(t *testing.T) {
	f := &fakeInterpreter{inputShape: []int{1, 4}, outputShape: []int{1, 2}, inputDtype: gt.Float32}
	e := newEngineWithFake(f)

	_, _, err := e.Predict(nil)
	assert.Error(t, err)
}

func TestPredictDtypeMismatch(t *testing.T) {
	f := &fakeInterpreter{inputShape: []int{4}, outputShape: []int{2}, inputDtype: gt.Float32}
	e := newEngineWithFake(f)

	input := gt.New(gt.WithShape(4), gt.Of(gt.Int32), gt.WithBacking([]int32{1, 2, 3, 4}))
	_, _, err := e.Predict([]*gt.Dense{input})
	assert.Error(t, err)
}

func TestPredictDtypeCoercionFromInt32(t *testing.T) {
	f := &fakeInterpreter{inputShape: []int{3}, outputShape: []int{1}, inputDtype: gt.Uint8, allowNativeResize: true}
	e := newEngineWithFake(f)

	input := gt.New(gt.WithShape(3), gt.Of(gt.Int32), gt.WithBacking([]int32{1, 2, 3}))
	_, _, err := e.Predict([]*gt.Dense{input})
	require.NoError(t, err)
}

func TestPredictUnmatchedShapeIsTensorTypeError(t *testing.T) {
	f := &fakeInterpreter{inputShape: []int{1, 4}, outputShape: []int{1, 2}, inputDtype: gt.Float32, allowNativeResize: true}
	e := newEngineWithFake(f)

	input := gt.New(gt.WithShape(5), gt.Of(gt.Float32), gt.WithBacking(make([]float32, 5)))
	_, _, err := e.Predict([]*gt.Dense{input})
	assert.Error(t, err)
	assert.Equal(t, gwerrors.TensorTypeError, gwerrors.Classify(err))
}
