package model

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/itohio/inferlite/pkg/core/config"
	"github.com/itohio/inferlite/pkg/core/gwerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorSource(t *testing.T) {
	assert.Equal(t, SourceInline, Descriptor{Inline: []byte("x")}.Source())
	assert.Equal(t, SourceURL, Descriptor{URL: "http://x"}.Source())
	assert.Equal(t, SourcePath, Descriptor{Path: "x.tflite"}.Source())
	assert.Equal(t, SourceNone, Descriptor{}.Source())
}

func TestConvertInlineTFLiteIsIdentity(t *testing.T) {
	cfg := config.Default()
	want := []byte("a fake tflite flatbuffer")

	got, err := Convert(cfg, Descriptor{Inline: want, Format: TFLiteFlatBuffer})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConvertUnimplementedFormatsError(t *testing.T) {
	cfg := config.Default()

	// TFJSGraph is archive-shaped, so the data must be a valid zip for the
	// unpack stage to succeed and the conversion stage to be reached.
	var archive bytes.Buffer
	require.NoError(t, zip.NewWriter(&archive).Close())

	for _, f := range []Format{TFJSGraph, TFHub, GraphDefs} {
		_, err := Convert(cfg, Descriptor{Inline: archive.Bytes(), Format: f})
		require.Error(t, err)
		assert.Equal(t, gwerrors.ModelConversionError, gwerrors.Classify(err))
	}
}

func TestConvertUnknownFormatErrors(t *testing.T) {
	cfg := config.Default()
	_, err := Convert(cfg, Descriptor{Inline: []byte("x"), Format: Format(99)})
	require.Error(t, err)
	assert.Equal(t, gwerrors.ModelConversionError, gwerrors.Classify(err))
}

func TestFetchRejectsPathEscapingModelDir(t *testing.T) {
	modelDir := t.TempDir()
	workDir := t.TempDir()

	_, err := fetch(Descriptor{Path: "../../etc/passwd"}, modelDir, workDir)
	require.Error(t, err)
	assert.Equal(t, gwerrors.ModelDataError, gwerrors.Classify(err))
}

func TestFetchCopiesLocalFile(t *testing.T) {
	modelDir := t.TempDir()
	workDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "m.tflite"), []byte("data"), 0o644))

	original, err := fetch(Descriptor{Path: "m.tflite"}, modelDir, workDir)
	require.NoError(t, err)
	data, err := os.ReadFile(original)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)
}

func TestFetchMissingFileIsModelDataError(t *testing.T) {
	modelDir := t.TempDir()
	workDir := t.TempDir()

	_, err := fetch(Descriptor{Path: "missing.tflite"}, modelDir, workDir)
	require.Error(t, err)
	assert.Equal(t, gwerrors.ModelDataError, gwerrors.Classify(err))
}

func TestUnpackRenamesFileShapedFormat(t *testing.T) {
	workDir := t.TempDir()
	original := filepath.Join(workDir, originalName)
	require.NoError(t, os.WriteFile(original, []byte("x"), 0o644))

	canonical, err := unpack(TFLiteFlatBuffer, original, workDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(workDir, "tflite_model.tflite"), canonical)
	_, err = os.Stat(canonical)
	assert.NoError(t, err)
}
