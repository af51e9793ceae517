package model

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/itohio/inferlite/pkg/core/gwerrors"
	"github.com/itohio/inferlite/pkg/core/logger"
)

// originalName is the fetch stage's single local output file (spec.md
// §4.3's "Fetch stage").
const originalName = "original"

// fetch produces workDir/original from d, rejecting local paths that escape
// modelDir. For TFJS sources fetched over a URL, it also walks the weights
// manifest and downloads each shard into workDir.
func fetch(d Descriptor, modelDir, workDir string) (string, error) {
	original := filepath.Join(workDir, originalName)

	switch d.Source() {
	case SourceInline:
		if err := os.WriteFile(original, d.Inline, 0o644); err != nil {
			return "", gwerrors.NewModelDataError("writing inline model data: %v", err)
		}
		return original, nil

	case SourceURL:
		if err := downloadFile(d.URL, original); err != nil {
			return "", gwerrors.NewModelAcquireError("fetching %q: %v", d.URL, err)
		}
		if d.Format == TFJSLayers || d.Format == TFJSGraph {
			if err := fetchWeightShards(d.URL, original, workDir); err != nil {
				return "", err
			}
		}
		return original, nil

	case SourcePath:
		resolved, err := resolveUnderModelDir(modelDir, d.Path)
		if err != nil {
			return "", gwerrors.NewModelDataError("%v", err)
		}
		data, err := os.ReadFile(resolved)
		if err != nil {
			return "", gwerrors.NewModelAcquireError("reading %q: %v", d.Path, err)
		}
		if err := os.WriteFile(original, data, 0o644); err != nil {
			return "", gwerrors.NewModelDataError("writing %q: %v", original, err)
		}
		return original, nil

	default:
		return "", gwerrors.NewModelDataError("model descriptor has no source set")
	}
}

// resolveUnderModelDir rejects any relative path that escapes modelDir
// (spec.md §4.3: "reject paths escaping the configured model directory").
func resolveUnderModelDir(modelDir, rel string) (string, error) {
	joined := filepath.Join(modelDir, rel)
	cleanRoot := filepath.Clean(modelDir)
	cleanJoined := filepath.Clean(joined)
	if cleanJoined != cleanRoot && !strings.HasPrefix(cleanJoined, cleanRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes model directory %q", rel, modelDir)
	}
	if _, err := os.Stat(cleanJoined); err != nil {
		return "", fmt.Errorf("model path %q doesn't exist", rel)
	}
	return cleanJoined, nil
}

func downloadFile(rawURL, dest string) error {
	resp, err := http.Get(rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

// weightsManifest mirrors the subset of the TFJS weights-manifest JSON shape
// this gateway needs: a list of groups, each naming a list of shard file
// paths relative to the model's base URL.
type weightsManifest []struct {
	Paths []string `json:"paths"`
}

// fetchWeightShards parses originalFile as a TFJS weights manifest and
// downloads every named shard, relative to baseURL, into workDir (spec.md
// §4.3's fetch-stage TFJS bullet).
func fetchWeightShards(baseURL, originalFile, workDir string) error {
	raw, err := os.ReadFile(originalFile)
	if err != nil {
		return gwerrors.NewModelDataError("reading weights manifest: %v", err)
	}

	var doc struct {
		WeightsManifest weightsManifest `json:"weightsManifest"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return gwerrors.NewModelDataError("parsing weights manifest: %v", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return gwerrors.NewModelAcquireError("invalid base URL %q: %v", baseURL, err)
	}

	for _, group := range doc.WeightsManifest {
		for _, shard := range group.Paths {
			shardURL := *base
			shardURL.Path = path.Join(path.Dir(base.Path), shard)

			dest := filepath.Join(workDir, filepath.Base(shard))
			logger.Log.Debug().Str("shard", shardURL.String()).Msg("fetching weight shard")
			if err := downloadFile(shardURL.String(), dest); err != nil {
				return gwerrors.NewModelAcquireError("fetching weight shard %q: %v", shard, err)
			}
		}
	}
	return nil
}
