// Package model implements the model format converter (spec.md §4.3):
// fetch, unpack, and a conversion graph that walks any declared format down
// to a canonical tflite flatbuffer.
package model

import "fmt"

// Format is the closed set of model formats a descriptor may declare
// (spec.md §3).
type Format int

const (
	TFLiteFlatBuffer Format = iota
	TFSavedModel
	KerasHDF5
	KerasSavedModel
	KerasOther
	TFJSLayers
	TFJSGraph
	TFHub
	GraphDefs
)

var formatNames = map[Format]string{
	TFLiteFlatBuffer: "TFLITE_FLAT_BUFFER",
	TFSavedModel:     "TF_SAVED_MODEL",
	KerasHDF5:        "KERAS_HDF5",
	KerasSavedModel:  "KERAS_SAVED_MODEL",
	KerasOther:       "KERAS_OTHER",
	TFJSLayers:       "TFJS_LAYERS",
	TFJSGraph:        "TFJS_GRAPH",
	TFHub:            "TF_HUB",
	GraphDefs:        "GRAPH_DEFS",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// unpackPath is the canonical unpack path for each format inside a
// conversion working directory. A trailing "/" means the format is
// archive-shaped (original is unzipped into it); otherwise it's a single
// file (original is renamed to it).
var unpackPath = map[Format]string{
	TFLiteFlatBuffer: "tflite_model.tflite",
	TFSavedModel:     "tf_saved_model/",
	KerasHDF5:        "keras_model.h5",
	KerasSavedModel:  "keras_saved_model/",
	KerasOther:       "keras_model_other.h5",
	TFJSLayers:       "tfjs_layers_model.json",
	TFJSGraph:        "tfjs_graph_model/",
	TFHub:            "tf_hub_model.tfhub",
	GraphDefs:        "graph_defs.gdefs",
}

// SourceKind identifies which field of Descriptor is populated.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceInline
	SourceURL
	SourcePath
)

// Descriptor is the wire model descriptor (spec.md §3): a tagged union over
// inline bytes, a URL, or a server-local relative file path, plus a declared
// Format.
type Descriptor struct {
	Inline []byte
	URL    string
	Path   string
	Format Format
}

// Source reports which field of the descriptor is populated.
func (d Descriptor) Source() SourceKind {
	switch {
	case d.Inline != nil:
		return SourceInline
	case d.URL != "":
		return SourceURL
	case d.Path != "":
		return SourcePath
	default:
		return SourceNone
	}
}
