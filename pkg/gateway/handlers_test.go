package gateway

import (
	"testing"

	"github.com/itohio/inferlite/pkg/core/config"
	"github.com/itohio/inferlite/pkg/core/gwerrors"
	"github.com/itohio/inferlite/pkg/gateway/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcho(t *testing.T) {
	g := New(config.Default())
	assert.Equal(t, "hello", g.Echo("hello"))
}

func TestLoadModelInlineTFLiteRoundTrips(t *testing.T) {
	g := New(config.Default())

	resp := g.LoadModel(wire.LoadModelRequest{
		Model: wire.ModelDescriptor{Data: []byte("fake tflite bytes"), Type: "TFLITE_FLAT_BUFFER"},
	})

	require.Nil(t, resp.Error)
	require.NotNil(t, resp.Handle)
	assert.Equal(t, int64(0), resp.Handle.ID)
}

func TestLoadModelDefaultsToTFLiteFormat(t *testing.T) {
	g := New(config.Default())

	resp := g.LoadModel(wire.LoadModelRequest{
		Model: wire.ModelDescriptor{Data: []byte("x")},
	})
	require.Nil(t, resp.Error)
}

func TestLoadModelUnknownTypeErrors(t *testing.T) {
	g := New(config.Default())

	resp := g.LoadModel(wire.LoadModelRequest{
		Model: wire.ModelDescriptor{Data: []byte("x"), Type: "NOT_A_FORMAT"},
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, gwerrors.ModelConversionError.String(), resp.Error.Kind)
}

func TestLoadModelDedupsIdenticalBytes(t *testing.T) {
	g := New(config.Default())

	r1 := g.LoadModel(wire.LoadModelRequest{Model: wire.ModelDescriptor{Data: []byte("same"), Type: "TFLITE_FLAT_BUFFER"}})
	r2 := g.LoadModel(wire.LoadModelRequest{Model: wire.ModelDescriptor{Data: []byte("same"), Type: "TFLITE_FLAT_BUFFER"}})

	require.Nil(t, r1.Error)
	require.Nil(t, r2.Error)
	assert.Equal(t, r1.Handle.ID, r2.Handle.ID)
}

func TestInferUnknownHandleErrors(t *testing.T) {
	g := New(config.Default())

	resp := g.Infer(wire.InferenceRequest{Handle: wire.ModelHandle{ID: 99}})
	require.NotNil(t, resp.Error)
	assert.Equal(t, gwerrors.InvalidHandleError.String(), resp.Error.Kind)
}

func TestInferMalformedModelSurfacesModelLoadError(t *testing.T) {
	g := New(config.Default())

	load := g.LoadModel(wire.LoadModelRequest{
		Model: wire.ModelDescriptor{Data: []byte("not a real tflite flatbuffer"), Type: "TFLITE_FLAT_BUFFER"},
	})
	require.Nil(t, load.Error)

	resp := g.Infer(wire.InferenceRequest{
		Handle:  *load.Handle,
		Tensors: []wire.Tensor{{Dimensions: []int{1}, Floats: []float32{1}}},
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, gwerrors.ModelLoadError.String(), resp.Error.Kind)
}

func TestInferInvalidTensorErrors(t *testing.T) {
	g := New(config.Default())

	load := g.LoadModel(wire.LoadModelRequest{
		Model: wire.ModelDescriptor{Data: []byte("x"), Type: "TFLITE_FLAT_BUFFER"},
	})
	require.Nil(t, load.Error)

	resp := g.Infer(wire.InferenceRequest{
		Handle:  *load.Handle,
		Tensors: []wire.Tensor{{Dimensions: []int{1}}}, // no payload variant set
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, gwerrors.InvalidTensorMessage.String(), resp.Error.Kind)
}
