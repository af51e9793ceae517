package tensor

import (
	"testing"

	"github.com/itohio/inferlite/pkg/core/gwerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gt "gorgonia.org/tensor"
)

func TestDecodeRoundTripFloats(t *testing.T) {
	w := Wire{
		Dimensions: []int{2, 3},
		Floats:     []float32{0, 1, 2, 3, 4, 5},
	}

	dense, err := Decode(w)
	require.NoError(t, err)
	assert.Equal(t, gt.Float32, dense.Dtype())
	assert.Equal(t, []int{2, 3}, []int(dense.Shape()))

	back, err := Encode(dense)
	require.NoError(t, err)
	assert.Equal(t, w.Dimensions, back.Dimensions)
	assert.Equal(t, w.Floats, back.Floats)
}

func TestDecodeNoVariantIsInvalidTensorMessage(t *testing.T) {
	_, err := Decode(Wire{Dimensions: []int{2}})
	require.Error(t, err)
	assert.Equal(t, gwerrors.InvalidTensorMessage, gwerrors.Classify(err))
}

func TestDecodeMismatchedShapeIsMisshapenTensor(t *testing.T) {
	_, err := Decode(Wire{Dimensions: []int{2, 3}, Floats: []float32{1, 2}})
	require.Error(t, err)
	assert.Equal(t, gwerrors.MisshapenTensor, gwerrors.Classify(err))
}

func TestDecodeZeroDimensionEmptyPayload(t *testing.T) {
	_, err := Decode(Wire{Dimensions: []int{0}, Floats: []float32{}})
	assert.NoError(t, err)
}

func TestDecodeInts(t *testing.T) {
	dense, err := Decode(Wire{Dimensions: []int{3}, Ints: []int32{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, gt.Int32, dense.Dtype())
}

func TestDecodeBools(t *testing.T) {
	dense, err := Decode(Wire{Dimensions: []int{2}, Bools: []bool{true, false}})
	require.NoError(t, err)
	assert.Equal(t, gt.Bool, dense.Dtype())
}

func TestDecodeComplexPairs(t *testing.T) {
	dense, err := Decode(Wire{Dimensions: []int{2}, Complexes: []int32{1, 2, 3, 4}})
	require.NoError(t, err)
	assert.Equal(t, gt.Complex64, dense.Dtype())
	data := dense.Data().([]complex64)
	assert.Equal(t, complex64(complex(1, 2)), data[0])
	assert.Equal(t, complex64(complex(3, 4)), data[1])
}

func TestDecodeStrings(t *testing.T) {
	dense, err := Decode(Wire{Dimensions: []int{2}, Strings: [][]byte{[]byte("a"), []byte("bc")}})
	require.NoError(t, err)
	assert.Equal(t, gt.String, dense.Dtype())
	data := dense.Data().([]string)
	assert.Equal(t, []string{"a", "bc"}, data)
}

func TestEncodeUpcastDtypes(t *testing.T) {
	dense := gt.New(gt.WithShape(3), gt.Of(gt.Int8), gt.WithBacking([]int8{1, -2, 3}))
	w, err := Encode(dense)
	require.NoError(t, err)
	assert.Equal(t, PayloadInt, w.Variant())
	assert.Equal(t, []int32{1, -2, 3}, w.Ints)
}

func TestEncodeUnsupportedDtype(t *testing.T) {
	dense := gt.New(gt.WithShape(2), gt.Of(gt.Float64), gt.WithBacking([]float64{1, 2}))
	_, err := Encode(dense)
	assert.Error(t, err)
}

func TestCastElementsDowncastsFromInt32(t *testing.T) {
	src := gt.New(gt.WithShape(3), gt.Of(gt.Int32), gt.WithBacking([]int32{1, 2, 3}))
	out, err := CastElements(src, gt.Uint8)
	require.NoError(t, err)
	assert.Equal(t, gt.Uint8, out.Dtype())
	assert.Equal(t, []uint8{1, 2, 3}, out.Data().([]uint8))
}

func TestCastElementsNoopSameDtype(t *testing.T) {
	src := gt.New(gt.WithShape(2), gt.Of(gt.Float32), gt.WithBacking([]float32{1, 2}))
	out, err := CastElements(src, gt.Float32)
	require.NoError(t, err)
	assert.Same(t, src, out)
}
