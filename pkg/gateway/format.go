package gateway

import (
	"github.com/itohio/inferlite/pkg/core/gwerrors"
	"github.com/itohio/inferlite/pkg/core/model"
)

var formatByName = map[string]model.Format{
	"TFLITE_FLAT_BUFFER": model.TFLiteFlatBuffer,
	"TF_SAVED_MODEL":     model.TFSavedModel,
	"KERAS_HDF5":         model.KerasHDF5,
	"KERAS_SAVED_MODEL":  model.KerasSavedModel,
	"KERAS_OTHER":        model.KerasOther,
	"TFJS_LAYERS":        model.TFJSLayers,
	"TFJS_GRAPH":         model.TFJSGraph,
	"TF_HUB":             model.TFHub,
	"GRAPH_DEFS":         model.GraphDefs,
}

// parseFormat maps the wire Type string to a model.Format. An empty string
// defaults to TFLITE_FLAT_BUFFER, mirroring the source's "if it wasn't
// specified we'll get 0" comment on the zero-valued protobuf enum.
func parseFormat(s string) (model.Format, error) {
	if s == "" {
		return model.TFLiteFlatBuffer, nil
	}
	f, ok := formatByName[s]
	if !ok {
		return 0, gwerrors.NewModelConversionError("unknown model type %q", s)
	}
	return f, nil
}
