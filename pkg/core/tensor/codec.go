package tensor

import (
	"github.com/itohio/inferlite/pkg/core/gwerrors"
	gt "gorgonia.org/tensor"
)

func product(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// Decode converts a wire Tensor into a runtime *tensor.Dense (spec.md
// §4.1).
//
// Fails with InvalidTensorMessage if no payload variant is set, and with
// MisshapenTensor if product(dimensions) != len(payload).
func Decode(w Wire) (*gt.Dense, error) {
	variant := w.Variant()
	if variant == PayloadNone {
		return nil, gwerrors.NewInvalidTensorMessage("tensor has no populated payload variant")
	}

	expected := product(w.Dimensions)
	actual := w.payloadLen()
	if expected != actual {
		return nil, gwerrors.NewMisshapenTensor(
			"expected %d elements for dimensions %v, got %d", expected, w.Dimensions, actual)
	}

	dt := wireDtype[variant]

	var backing any
	switch variant {
	case PayloadFloat:
		backing = append([]float32(nil), w.Floats...)
	case PayloadInt:
		backing = append([]int32(nil), w.Ints...)
	case PayloadBool:
		backing = append([]bool(nil), w.Bools...)
	case PayloadComplex:
		out := make([]complex64, actual)
		for i := range out {
			out[i] = complex(float32(w.Complexes[2*i]), float32(w.Complexes[2*i+1]))
		}
		backing = out
	case PayloadString:
		out := make([]string, actual)
		for i, b := range w.Strings {
			out[i] = string(b)
		}
		backing = out
	}

	if len(w.Dimensions) == 0 {
		// A scalar-shaped wire tensor; gorgonia needs at least a length-1 shape
		// to build a Dense, which is equivalent for a single element.
		return gt.New(gt.WithShape(1), gt.Of(dt), gt.WithBacking(backing)), nil
	}

	return gt.New(gt.WithShape(w.Dimensions...), gt.Of(dt), gt.WithBacking(backing)), nil
}

// Encode converts a runtime *tensor.Dense into its wire Tensor (spec.md
// §4.1).
//
// Rejects with TensorConversionError any runtime dtype that isn't in the
// mapping table. Dtypes not directly representable on the wire (u8/i8/i16/
// i64) are mapped to the int32 payload via an element-wise cast.
func Encode(t *gt.Dense) (Wire, error) {
	dt := t.Dtype()
	if !supported(dt) {
		return Wire{}, gwerrors.NewTensorConversionError("runtime dtype %s cannot be placed on the wire", dt)
	}

	dims := append([]int(nil), t.Shape()...)
	out := Wire{Dimensions: dims}

	if upcastToInt32[dt] {
		out.Ints = castToInt32(t.Data(), dt)
		return out, nil
	}

	switch dt {
	case gt.Float32:
		src := t.Data().([]float32)
		out.Floats = append([]float32(nil), src...)
	case gt.Int32:
		src := t.Data().([]int32)
		out.Ints = append([]int32(nil), src...)
	case gt.Bool:
		src := t.Data().([]bool)
		out.Bools = append([]bool(nil), src...)
	case gt.Complex64:
		src := t.Data().([]complex64)
		pairs := make([]int32, 0, len(src)*2)
		for _, c := range src {
			pairs = append(pairs, int32(real(c)), int32(imag(c)))
		}
		out.Complexes = pairs
	case gt.String:
		src := t.Data().([]string)
		strs := make([][]byte, len(src))
		for i, s := range src {
			strs[i] = []byte(s)
		}
		out.Strings = strs
	default:
		return Wire{}, gwerrors.NewTensorConversionError("runtime dtype %s cannot be placed on the wire", dt)
	}

	return out, nil
}

// castToInt32 implements the documented u8/i8/i16/i64 -> int32 downcast
// mapping (spec.md §3, §4.1).
func castToInt32(data any, dt gt.Dtype) []int32 {
	switch dt {
	case gt.Int8:
		src := data.([]int8)
		out := make([]int32, len(src))
		for i, v := range src {
			out[i] = int32(v)
		}
		return out
	case gt.Uint8:
		src := data.([]uint8)
		out := make([]int32, len(src))
		for i, v := range src {
			out[i] = int32(v)
		}
		return out
	case gt.Int16:
		src := data.([]int16)
		out := make([]int32, len(src))
		for i, v := range src {
			out[i] = int32(v)
		}
		return out
	case gt.Int64:
		src := data.([]int64)
		out := make([]int32, len(src))
		for i, v := range src {
			out[i] = int32(v)
		}
		return out
	default:
		return nil
	}
}

// CastElements casts the backing data of src to dst's dtype into a freshly
// allocated backing, returning a new Dense with the requested dtype and
// src's shape; src itself is not modified. Used by
// the engine's dtype coercion step (spec.md §4.5.2.1): interpreter inputs
// expecting u8/i8/i16/i64 accept an i32 wire tensor and cast down.
func CastElements(src *gt.Dense, dst gt.Dtype) (*gt.Dense, error) {
	if src.Dtype() == dst {
		return src, nil
	}
	if src.Dtype() != gt.Int32 {
		return nil, gwerrors.NewTensorTypeError("cannot cast dtype %s to %s", src.Dtype(), dst)
	}

	ints := src.Data().([]int32)
	var backing any
	switch dst {
	case gt.Int8:
		out := make([]int8, len(ints))
		for i, v := range ints {
			out[i] = int8(v)
		}
		backing = out
	case gt.Uint8:
		out := make([]uint8, len(ints))
		for i, v := range ints {
			out[i] = uint8(v)
		}
		backing = out
	case gt.Int16:
		out := make([]int16, len(ints))
		for i, v := range ints {
			out[i] = int16(v)
		}
		backing = out
	case gt.Int64:
		out := make([]int64, len(ints))
		for i, v := range ints {
			out[i] = int64(v)
		}
		backing = out
	default:
		return nil, gwerrors.NewTensorTypeError("unsupported cast target dtype %s", dst)
	}

	shape := append([]int(nil), src.Shape()...)
	return gt.New(gt.WithShape(shape...), gt.Of(dst), gt.WithBacking(backing)), nil
}
