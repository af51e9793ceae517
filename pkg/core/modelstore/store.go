// Package modelstore implements the handle-based model registry (spec.md
// §4.4), grounded on original_source/server/model_store.py's ModelStore:
// a dense vector of LoadedModel, with handles as positions.
package modelstore

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"sync"

	"github.com/itohio/inferlite/pkg/core/accelerator"
	"github.com/itohio/inferlite/pkg/core/gwerrors"
	"github.com/mr-tron/base58"
)

// Handle identifies a LoadedModel by its dense position in the store
// (spec.md §9's "Handle = dense index"). Handles are never invalidated.
type Handle int

// LoadedModel is the store's unit of registration: canonical model bytes
// (already converted to tflite by pkg/core/model), or a path to them. The
// gateway keeps the per-handle engine.Engine separately, keyed by Handle, to
// avoid an import cycle between this package and pkg/core/engine.
type LoadedModel struct {
	Bytes []byte
	Path  string

	mu sync.Mutex
}

// Lock serializes predict calls against this model (spec.md §5: one
// sync.Mutex per LoadedModel).
func (m *LoadedModel) Lock()   { m.mu.Lock() }
func (m *LoadedModel) Unlock() { m.mu.Unlock() }

// Store is the process-wide model registry. All operations are safe for
// concurrent use.
type Store struct {
	mu     sync.RWMutex
	models []*LoadedModel
	dedup  map[string]Handle
}

// New returns an empty Store.
func New() *Store {
	return &Store{dedup: make(map[string]Handle)}
}

// digestKey computes the content-digest dedup key for bytes (spec.md §9's
// Open Question, resolved as a SHA-256 digest rendered in base58).
func digestKey(data []byte) string {
	sum := sha256.Sum256(data)
	return base58.Encode(sum[:])
}

// pathKey computes the dedup key for a source path. It is namespaced
// separately from digestKey so a path and some bytes can never collide.
func pathKey(path string) string {
	return "path:" + path
}

// Load registers canonical model bytes and returns its handle, reusing an
// existing handle on a dedup hit (spec.md §4.4's "Admission check").
// Empty bytes are rejected with ModelRegisterError (spec.md §8), mirroring
// original_source/server/model_store.py's _check_str_model.
func (s *Store) Load(data []byte) (Handle, error) {
	if len(data) == 0 {
		return 0, gwerrors.NewModelRegisterError("provided model was empty")
	}
	return s.admit(digestKey(data), func() *LoadedModel {
		return &LoadedModel{Bytes: data}
	})
}

// LoadFromFile registers a model by its server-local canonical path and
// returns its handle, reusing an existing handle on a dedup hit. path must
// exist, be a regular file, and have a .tflite extension, or the call fails
// with ModelRegisterError (spec.md §8), mirroring
// original_source/server/model_store.py's _check_file_model.
func (s *Store) LoadFromFile(path string) (Handle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, gwerrors.NewModelRegisterError("model path (%s) doesn't exist", path)
	}
	if !info.Mode().IsRegular() {
		return 0, gwerrors.NewModelRegisterError("model path (%s) isn't a file", path)
	}
	if filepath.Ext(path) != ".tflite" {
		return 0, gwerrors.NewModelRegisterError("file (%s) doesn't seem to be a TFLite model", path)
	}
	return s.admit(pathKey(path), func() *LoadedModel {
		return &LoadedModel{Path: path}
	})
}

func (s *Store) admit(key string, build func() *LoadedModel) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.dedup[key]; ok {
		return h, nil
	}

	if accelerator.Present() && len(s.models) >= 1 {
		return 0, gwerrors.NewModelStoreFullError(
			"accelerator is present; it can hold only one loaded model at a time")
	}

	s.models = append(s.models, build())
	h := Handle(len(s.models) - 1)
	s.dedup[key] = h
	return h, nil
}

// Get returns the LoadedModel at handle, bounds-checked.
func (s *Store) Get(h Handle) (*LoadedModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if h < 0 || int(h) >= len(s.models) {
		return nil, gwerrors.NewInvalidHandleError(
			"handle %d does not exist; %d handles are currently registered", h, len(s.models))
	}
	return s.models[h], nil
}

// Len reports how many models are currently registered.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.models)
}
