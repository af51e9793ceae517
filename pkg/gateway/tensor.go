package gateway

import (
	coretensor "github.com/itohio/inferlite/pkg/core/tensor"
	"github.com/itohio/inferlite/pkg/gateway/wire"
	gt "gorgonia.org/tensor"
)

func toCoreWire(t wire.Tensor) coretensor.Wire {
	return coretensor.Wire{
		Dimensions: t.Dimensions,
		Floats:     t.Floats,
		Ints:       t.Ints,
		Bools:      t.Bools,
		Complexes:  t.Complexes,
		Strings:    t.Strings,
	}
}

func fromCoreWire(w coretensor.Wire) wire.Tensor {
	return wire.Tensor{
		Dimensions: w.Dimensions,
		Floats:     w.Floats,
		Ints:       w.Ints,
		Bools:      w.Bools,
		Complexes:  w.Complexes,
		Strings:    w.Strings,
	}
}

func decodeTensors(ts []wire.Tensor) ([]*gt.Dense, error) {
	out := make([]*gt.Dense, len(ts))
	for i, t := range ts {
		dense, err := coretensor.Decode(toCoreWire(t))
		if err != nil {
			return nil, err
		}
		out[i] = dense
	}
	return out, nil
}

func encodeTensors(ts []*gt.Dense) ([]wire.Tensor, error) {
	out := make([]wire.Tensor, len(ts))
	for i, t := range ts {
		w, err := coretensor.Encode(t)
		if err != nil {
			return nil, err
		}
		out[i] = fromCoreWire(w)
	}
	return out, nil
}
