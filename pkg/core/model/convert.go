package model

import (
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/itohio/inferlite/pkg/core/config"
	"github.com/itohio/inferlite/pkg/core/gwerrors"
	"github.com/itohio/inferlite/pkg/core/logger"
)

// stepFunc converts the canonical bytes at fromPath into the next format's
// canonical bytes at toPath.
type stepFunc func(fromPath, toPath string) error

// conversionGraph is the partial function from declared format to its
// strictly-closer-to-terminal format (spec.md §4.3's table). TFJSGraph,
// TFHub and GraphDefs are deliberately absent: runConversionGraph rejects
// them with a ModelConversionError saying they aren't supported.
var conversionGraph = map[Format]Format{
	TFSavedModel:    TFLiteFlatBuffer,
	KerasHDF5:       TFLiteFlatBuffer,
	KerasSavedModel: TFJSLayers,
	KerasOther:      TFJSLayers,
	TFJSLayers:      KerasHDF5,
}

var conversionSteps = map[Format]stepFunc{
	TFSavedModel:    tfSavedModelToTFLite,
	KerasHDF5:       kerasHDF5ToTFLite,
	KerasSavedModel: kerasToTFJSLayers,
	KerasOther:      kerasToTFJSLayers,
	TFJSLayers:      tfjsLayersToKerasHDF5,
}

// Convert runs the full fetch/unpack/conversion pipeline for d and returns
// the resulting canonical tflite flatbuffer bytes (spec.md §4.3).
func Convert(cfg config.Config, d Descriptor) ([]byte, error) {
	workDir, err := os.MkdirTemp("", "inferlite-model-")
	if err != nil {
		return nil, gwerrors.NewModelDataError("creating working directory: %v", err)
	}
	defer func() {
		if cfg.DeleteModelsAfterConversion {
			os.RemoveAll(workDir)
		}
	}()

	start := time.Now()

	original, err := fetch(d, cfg.ModelDir, workDir)
	if err != nil {
		return nil, err
	}

	canonical, err := unpack(d.Format, original, workDir)
	if err != nil {
		return nil, err
	}

	data, hops, err := runConversionGraph(d.Format, canonical, workDir)
	if cfg.Debug {
		writeManifest(workDir, d.Format, hops, time.Since(start), err)
	}
	return data, err
}

// runConversionGraph walks the conversion graph from format, starting at
// canonical, as a loop rather than recursion (spec.md §9), and returns the
// terminal bytes plus the number of hops taken.
func runConversionGraph(format Format, canonical, workDir string) ([]byte, int, error) {
	current, path, hops := format, canonical, 0

	for {
		if current == TFLiteFlatBuffer {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, hops, gwerrors.NewModelConversionError("reading converted model: %v", err)
			}
			return data, hops, nil
		}

		if current == TFJSGraph || current == TFHub || current == GraphDefs {
			return nil, hops, gwerrors.NewModelConversionError("converting %s models isn't supported yet", current)
		}

		next, ok := conversionGraph[current]
		if !ok {
			return nil, hops, gwerrors.NewModelConversionError("unsupported model format %s", current)
		}
		step, ok := conversionSteps[current]
		if !ok {
			return nil, hops, gwerrors.NewModelConversionError("no conversion step registered for %s", current)
		}

		nextRel, ok := unpackPath[next]
		if !ok {
			return nil, hops, gwerrors.NewModelConversionError("unsupported model format %s", next)
		}
		nextPath := filepath.Join(workDir, nextRel)

		logger.Log.Debug().Stringer("from", current).Stringer("to", next).Msg("running conversion step")
		if err := step(path, nextPath); err != nil {
			if gwerrors.Classify(err) == gwerrors.ModelConversionError {
				return nil, hops, err
			}
			return nil, hops, gwerrors.NewModelConversionError("converting %s model: %v", current, err)
		}

		path, current, hops = nextPath, next, hops+1
	}
}

// The following conversion steps shell out to the external converter
// binaries the corresponding frameworks ship (tflite_convert,
// tensorflowjs_converter); no pack example embeds a pure-Go reimplementation
// of TF SavedModel/Keras HDF5/TFJS parsing, and the source itself invokes
// these as library calls into the same toolchains. A missing binary on PATH,
// like any other converter failure, surfaces as the ModelConversionError
// runConverter builds, which runConversionGraph passes through unchanged
// (spec.md §4.3).

func tfSavedModelToTFLite(savedModelDir, out string) error {
	return runConverter("tflite_convert",
		"--saved_model_dir", savedModelDir,
		"--output_file", out)
}

func kerasHDF5ToTFLite(h5File, out string) error {
	return runConverter("tflite_convert",
		"--keras_model_file", h5File,
		"--output_file", out)
}

func kerasToTFJSLayers(input, outDir string) error {
	if err := runConverter("tensorflowjs_converter",
		"--input_format", "keras",
		input, outDir); err != nil {
		return err
	}
	return nil
}

func tfjsLayersToKerasHDF5(modelJSON, out string) error {
	return runConverter("tensorflowjs_converter",
		"--input_format", "tfjs_layers_model",
		"--output_format", "keras",
		modelJSON, out)
}

func runConverter(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return gwerrors.NewModelConversionError("%s failed: %v (%s)", name, err, output)
	}
	return nil
}
