package model

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/itohio/inferlite/pkg/core/gwerrors"
)

// unpack moves workDir/original to its format's canonical unpack path
// (spec.md §4.3's "Unpack stage"), extracting it as a zip archive first if
// the format is archive-shaped.
func unpack(format Format, original, workDir string) (string, error) {
	rel, ok := unpackPath[format]
	if !ok {
		return "", gwerrors.NewModelConversionError("unsupported model format %s: no unpack path known", format)
	}

	canonical := filepath.Join(workDir, rel)

	if strings.HasSuffix(rel, "/") {
		if err := os.MkdirAll(canonical, 0o755); err != nil {
			return "", gwerrors.NewModelDataError("creating unpack directory: %v", err)
		}
		if err := unzip(original, canonical); err != nil {
			return "", gwerrors.NewModelDataError("unzipping model archive: %v", err)
		}
		return canonical, nil
	}

	if err := os.Rename(original, canonical); err != nil {
		return "", gwerrors.NewModelDataError("renaming %q to %q: %v", original, canonical, err)
	}
	return canonical, nil
}

func unzip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(filepath.Separator)) {
			continue // zip-slip guard: skip entries escaping destDir
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		if err := extractEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
