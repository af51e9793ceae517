package engine

import (
	"fmt"

	"github.com/itohio/inferlite/pkg/core/accelerator"
	"github.com/itohio/inferlite/pkg/core/gwerrors"
	"github.com/itohio/inferlite/pkg/core/logger"
	tflite "github.com/mattn/go-tflite"
	gt "gorgonia.org/tensor"
)

// tfliteInterpreter is the go-tflite backed Interpreter implementation
// (spec.md §4.5.1), grounded on
// pkg/core/marshaller/tflite/model.go's NewModel/Forward lifecycle.
type tfliteInterpreter struct {
	model       *tflite.Model
	options     *tflite.InterpreterOptions
	interpreter *tflite.Interpreter
	modelData   []byte // kept alive: go-tflite doesn't copy it
}

// NewFromBytes constructs an Interpreter from canonical tflite flatbuffer
// bytes. The NCore delegate is not attached: when the accelerator probe
// found one, newInterpreter logs a warning and the interpreter runs
// unaccelerated.
func NewFromBytes(data []byte, opts engineOpts) (Interpreter, error) {
	if len(data) == 0 {
		return nil, gwerrors.NewModelLoadError("model bytes are empty")
	}
	m := tflite.NewModel(data)
	if m == nil {
		return nil, gwerrors.NewModelLoadError("failed to parse tflite model")
	}
	return newInterpreter(m, data, opts)
}

// NewFromPath constructs an Interpreter from a model file on disk.
func NewFromPath(path string, opts engineOpts) (Interpreter, error) {
	m := tflite.NewModelFromFile(path)
	if m == nil {
		return nil, gwerrors.NewModelLoadError("failed to load tflite model from %q", path)
	}
	return newInterpreter(m, nil, opts)
}

func newInterpreter(m *tflite.Model, keepAlive []byte, cfg engineOpts) (Interpreter, error) {
	options := tflite.NewInterpreterOptions()
	if options == nil {
		m.Delete()
		return nil, gwerrors.NewModelLoadError("failed to create interpreter options")
	}

	if cfg.numThreads > 0 {
		options.SetNumThread(cfg.numThreads)
	}
	if cfg.errorReporter != nil {
		reporter := cfg.errorReporter
		options.SetErrorReporter(func(msg string, _ interface{}) {
			reporter(msg)
		}, nil)
	}

	if accelerator.Present() {
		// go-tflite's public API wraps only the delegates it's built against
		// (nnapi, xnnpack, ...); it exposes no generic "load this .so as an
		// external delegate" entry point, so the probed NCore library can't
		// be attached here. Surfacing the mismatch loudly is better than
		// silently pretending acceleration is in effect.
		logger.Log.Warn().Str("delegate", accelerator.DelegatePath()).
			Msg("NCore accelerator present but no delegate binding available in this interpreter; running unaccelerated")
	}

	interp := tflite.NewInterpreter(m, options)
	if interp == nil {
		options.Delete()
		m.Delete()
		return nil, gwerrors.NewModelLoadError("failed to create tflite interpreter")
	}

	if status := interp.AllocateTensors(); status != tflite.OK {
		interp.Delete()
		options.Delete()
		m.Delete()
		return nil, gwerrors.NewModelLoadError("failed to allocate tensors: status %d", status)
	}

	return &tfliteInterpreter{model: m, options: options, interpreter: interp, modelData: keepAlive}, nil
}

func (t *tfliteInterpreter) InputCount() int  { return t.interpreter.GetInputTensorCount() }
func (t *tfliteInterpreter) OutputCount() int { return t.interpreter.GetOutputTensorCount() }

func (t *tfliteInterpreter) InputDtype(i int) gt.Dtype {
	return fromTFLiteType(t.interpreter.GetInputTensor(i).Type())
}

func (t *tfliteInterpreter) InputShape(i int) []int {
	return tensorDims(t.interpreter.GetInputTensor(i))
}

func (t *tfliteInterpreter) OutputShape(i int) []int {
	return tensorDims(t.interpreter.GetOutputTensor(i))
}

func (t *tfliteInterpreter) ResizeInput(i int, shape []int) error {
	dims := make([]int32, len(shape))
	for idx, d := range shape {
		dims[idx] = int32(d)
	}
	if status := t.interpreter.ResizeInputTensor(i, dims); status != tflite.OK {
		return fmt.Errorf("resize input %d to %v failed: status %d", i, shape, status)
	}
	if status := t.interpreter.AllocateTensors(); status != tflite.OK {
		return fmt.Errorf("allocate tensors after resizing input %d failed: status %d", i, status)
	}
	return nil
}

func (t *tfliteInterpreter) AllocateTensors() error {
	if status := t.interpreter.AllocateTensors(); status != tflite.OK {
		return fmt.Errorf("allocate tensors failed: status %d", status)
	}
	return nil
}

func (t *tfliteInterpreter) SetInput(i int, tensor *gt.Dense) error {
	dst := t.interpreter.GetInputTensor(i)
	if dst == nil {
		return fmt.Errorf("no input tensor at index %d", i)
	}
	return copyToTFLiteTensor(dst, tensor.Data())
}

func (t *tfliteInterpreter) Invoke() error {
	if status := t.interpreter.Invoke(); status != tflite.OK {
		return fmt.Errorf("invoke failed: status %d", status)
	}
	return nil
}

func (t *tfliteInterpreter) Output(i int) (*gt.Dense, error) {
	src := t.interpreter.GetOutputTensor(i)
	if src == nil {
		return nil, fmt.Errorf("no output tensor at index %d", i)
	}

	dt := fromTFLiteType(src.Type())
	shape := tensorDims(src)

	out := gt.New(gt.WithShape(shape...), gt.Of(dt))
	if err := copyFromTFLiteTensor(src, out.Data()); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *tfliteInterpreter) Close() {
	if t.interpreter != nil {
		t.interpreter.Delete()
		t.interpreter = nil
	}
	if t.options != nil {
		t.options.Delete()
		t.options = nil
	}
	if t.model != nil {
		t.model.Delete()
		t.model = nil
	}
}

func tensorDims(t *tflite.Tensor) []int {
	if t == nil {
		return nil
	}
	dims := make([]int, t.NumDims())
	for i := range dims {
		dims[i] = t.Dim(i)
	}
	return dims
}

func fromTFLiteType(t tflite.TensorType) gt.Dtype {
	switch t {
	case tflite.Float32:
		return gt.Float32
	case tflite.Int32:
		return gt.Int32
	case tflite.UInt8:
		return gt.Uint8
	case tflite.Int8:
		return gt.Int8
	case tflite.Int16:
		return gt.Int16
	case tflite.Int64:
		return gt.Int64
	case tflite.Bool:
		return gt.Bool
	case tflite.Complex64:
		return gt.Complex64
	case tflite.String:
		return gt.String
	default:
		return gt.Float32
	}
}

func copyToTFLiteTensor(dst *tflite.Tensor, data any) error {
	switch v := data.(type) {
	case []float32:
		return statusErr(dst.CopyFromBuffer(v), "CopyFromBuffer float32")
	case []int32:
		return statusErr(dst.CopyFromBuffer(v), "CopyFromBuffer int32")
	case []uint8:
		return statusErr(dst.CopyFromBuffer(v), "CopyFromBuffer uint8")
	case []int8:
		return statusErr(dst.CopyFromBuffer(v), "CopyFromBuffer int8")
	case []int16:
		return statusErr(dst.CopyFromBuffer(v), "CopyFromBuffer int16")
	case []int64:
		return statusErr(dst.CopyFromBuffer(v), "CopyFromBuffer int64")
	case []bool:
		return statusErr(dst.CopyFromBuffer(v), "CopyFromBuffer bool")
	default:
		return fmt.Errorf("unsupported input data type %T", data)
	}
}

func copyFromTFLiteTensor(src *tflite.Tensor, data any) error {
	switch v := data.(type) {
	case []float32:
		return statusErr(src.CopyToBuffer(v), "CopyToBuffer float32")
	case []int32:
		return statusErr(src.CopyToBuffer(v), "CopyToBuffer int32")
	case []uint8:
		return statusErr(src.CopyToBuffer(v), "CopyToBuffer uint8")
	case []int8:
		return statusErr(src.CopyToBuffer(v), "CopyToBuffer int8")
	case []int16:
		return statusErr(src.CopyToBuffer(v), "CopyToBuffer int16")
	case []int64:
		return statusErr(src.CopyToBuffer(v), "CopyToBuffer int64")
	case []bool:
		return statusErr(src.CopyToBuffer(v), "CopyToBuffer bool")
	default:
		return fmt.Errorf("unsupported output data type %T", data)
	}
}

func statusErr(status tflite.Status, op string) error {
	if status != tflite.OK {
		return fmt.Errorf("%s failed with status %d", op, status)
	}
	return nil
}
