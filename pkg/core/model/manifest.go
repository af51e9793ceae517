package model

import (
	"os"
	"path/filepath"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/itohio/inferlite/pkg/core/logger"
)

// writeManifest serializes a diagnostic conversion-run record as a
// hand-built FlatBuffer into workDir, when DEBUG is truthy. This never
// gates the conversion result — failures here are logged, not returned.
func writeManifest(workDir string, source Format, hops int, elapsed time.Duration, convErr error) {
	b := flatbuffers.NewBuilder(128)

	sourceOff := b.CreateString(source.String())
	terminalOff := b.CreateString(TFLiteFlatBuffer.String())

	var errOff flatbuffers.UOffsetT
	ok := convErr == nil
	if convErr != nil {
		errOff = b.CreateString(convErr.Error())
	}

	startManifest(b)
	addManifestSource(b, sourceOff)
	addManifestTerminal(b, terminalOff)
	addManifestHops(b, int32(hops))
	addManifestDurationUS(b, elapsed.Microseconds())
	addManifestOK(b, ok)
	if convErr != nil {
		addManifestError(b, errOff)
	}
	root := endManifest(b)

	b.Finish(root)

	path := filepath.Join(workDir, "conversion_manifest.fb")
	if err := os.WriteFile(path, b.FinishedBytes(), 0o644); err != nil {
		logger.Log.Warn().Err(err).Msg("failed to write conversion manifest")
		return
	}
	logger.Log.Debug().Str("manifest", path).Msg("wrote conversion manifest")
}

// The manifest schema, hand-built against the low-level Builder API (no
// schema codegen is available in this tree): a flat table with 6 fields.
//
//	table ConversionManifest {
//	  source: string;
//	  terminal: string;
//	  hops: int;
//	  duration_us: long;
//	  ok: bool;
//	  error: string;
//	}
func startManifest(b *flatbuffers.Builder) {
	b.StartObject(6)
}

func addManifestSource(b *flatbuffers.Builder, off flatbuffers.UOffsetT) {
	b.PrependUOffsetTSlot(0, off, 0)
}

func addManifestTerminal(b *flatbuffers.Builder, off flatbuffers.UOffsetT) {
	b.PrependUOffsetTSlot(1, off, 0)
}

func addManifestHops(b *flatbuffers.Builder, v int32) {
	b.PrependInt32Slot(2, v, 0)
}

func addManifestDurationUS(b *flatbuffers.Builder, v int64) {
	b.PrependInt64Slot(3, v, 0)
}

func addManifestOK(b *flatbuffers.Builder, v bool) {
	b.PrependBoolSlot(4, v, false)
}

func addManifestError(b *flatbuffers.Builder, off flatbuffers.UOffsetT) {
	b.PrependUOffsetTSlot(5, off, 0)
}

func endManifest(b *flatbuffers.Builder) flatbuffers.UOffsetT {
	return b.EndObject()
}
