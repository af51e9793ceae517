// Package tensor implements the wire ↔ runtime Tensor codec (spec.md §4.1).
// Runtime tensors are *gorgonia.org/tensor.Dense values, the same dense
// multi-dimensional array type the teacher wraps at
// pkg/core/math/tensor/gorgonia/tensor.go.
package tensor

import (
	gt "gorgonia.org/tensor"
)

// Payload identifies which of the five wire payload variants is populated
// (spec.md §3, §6).
type Payload int

const (
	// PayloadNone means no variant is set — an InvalidTensorMessage at decode.
	PayloadNone Payload = iota
	PayloadFloat
	PayloadInt
	PayloadBool
	PayloadComplex
	PayloadString
)

// wireDtype maps each wire payload variant to the runtime dtype it decodes
// to, per spec.md §4.1's "fixed table keyed on the payload variant name".
var wireDtype = map[Payload]gt.Dtype{
	PayloadFloat:   gt.Float32,
	PayloadInt:     gt.Int32,
	PayloadBool:    gt.Bool,
	PayloadComplex: gt.Complex64,
	PayloadString:  gt.String,
}

// runtimeToPayload maps a runtime dtype's "kind" to the wire payload variant
// it encodes to. Dtypes not directly representable (u8/i8/i16/i64) fall
// through to the upcast rule Encode applies via castToInt32.
var runtimeToPayload = map[gt.Dtype]Payload{
	gt.Float32:  PayloadFloat,
	gt.Int32:    PayloadInt,
	gt.Bool:     PayloadBool,
	gt.Complex64: PayloadComplex,
	gt.String:   PayloadString,
}

// upcastToInt32 lists the runtime dtypes the codec silently upcasts to an
// int32 wire payload (spec.md §3: "Runtime may additionally hold i8, u8,
// i16, i64; these are silently upcast from/downcast to i32 at codec
// boundaries").
var upcastToInt32 = map[gt.Dtype]bool{
	gt.Int8:   true,
	gt.Uint8:  true,
	gt.Int16:  true,
	gt.Int64:  true,
}

// supported reports whether dtype is one the codec can place on the
// wire without a byte-order transform. gorgonia's Dense is always
// native-endian in memory, so this only filters out dtypes the mapping table
// doesn't know at all.
func supported(dt gt.Dtype) bool {
	if _, ok := runtimeToPayload[dt]; ok {
		return true
	}
	return upcastToInt32[dt]
}
