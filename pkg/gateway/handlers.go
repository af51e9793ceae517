// Package gateway glues the wire protocol to the core gateway (spec.md §6),
// grounded on original_source/server/__main__.py's load_model/run_inference
// route handlers.
package gateway

import (
	"sync"

	"github.com/itohio/inferlite/pkg/core/config"
	"github.com/itohio/inferlite/pkg/core/engine"
	"github.com/itohio/inferlite/pkg/core/logger"
	"github.com/itohio/inferlite/pkg/core/metrics"
	"github.com/itohio/inferlite/pkg/core/model"
	"github.com/itohio/inferlite/pkg/core/modelstore"
	"github.com/itohio/inferlite/pkg/gateway/wire"
)

// Gateway holds the process-wide core state and dispatches wire requests
// against it.
type Gateway struct {
	Config config.Config
	Store  *modelstore.Store

	mu      sync.Mutex
	engines map[modelstore.Handle]*engine.Engine
}

// New returns a Gateway backed by an empty model store.
func New(cfg config.Config) *Gateway {
	return &Gateway{
		Config:  cfg,
		Store:   modelstore.New(),
		engines: make(map[modelstore.Handle]*engine.Engine),
	}
}

// Echo returns s unchanged (spec.md §6's /api/echo/<string> route).
func (g *Gateway) Echo(s string) string { return s }

// LoadModel converts req's model descriptor to canonical tflite bytes,
// registers it in the store, and returns its handle (spec.md §4.3, §4.4).
func (g *Gateway) LoadModel(req wire.LoadModelRequest) wire.LoadModelResponse {
	format, err := parseFormat(req.Model.Type)
	if err != nil {
		return wire.LoadModelResponse{Error: errPtr(err)}
	}

	desc := model.Descriptor{
		Inline: req.Model.Data,
		URL:    req.Model.URL,
		Path:   req.Model.File,
		Format: format,
	}

	canonical, err := model.Convert(g.Config, desc)
	if err != nil {
		return wire.LoadModelResponse{Error: errPtr(err)}
	}

	handle, err := g.Store.Load(canonical)
	if err != nil {
		return wire.LoadModelResponse{Error: errPtr(err)}
	}

	return wire.LoadModelResponse{Handle: &wire.ModelHandle{ID: int64(handle)}}
}

// Infer runs inference against an already-loaded model (spec.md §4.5).
func (g *Gateway) Infer(req wire.InferenceRequest) wire.InferenceResponse {
	handle := modelstore.Handle(req.Handle.ID)

	loaded, err := g.Store.Get(handle)
	if err != nil {
		return wire.InferenceResponse{Error: errPtr(err)}
	}

	inputs, err := decodeTensors(req.Tensors)
	if err != nil {
		return wire.InferenceResponse{Error: errPtr(err)}
	}

	eng := g.engineFor(handle, loaded)

	loaded.Lock()
	outputs, execTime, err := eng.Predict(inputs)
	loaded.Unlock()
	if err != nil {
		return wire.InferenceResponse{Error: errPtr(err)}
	}

	wireOutputs, err := encodeTensors(outputs)
	if err != nil {
		return wire.InferenceResponse{Error: errPtr(err)}
	}

	m := metrics.New(execTime, req.Trace)
	return wire.InferenceResponse{
		Tensors: wireOutputs,
		Metrics: &wire.Metrics{TimeToExecuteUS: m.TimeToExecuteUS, TraceURL: m.TraceURL},
	}
}

// engineFor returns the Engine for handle, constructing it from loaded's
// bytes/path on first use. One Engine per handle, for the process lifetime.
func (g *Gateway) engineFor(handle modelstore.Handle, loaded *modelstore.LoadedModel) *engine.Engine {
	g.mu.Lock()
	defer g.mu.Unlock()

	if eng, ok := g.engines[handle]; ok {
		return eng
	}

	eng := engine.New(
		engine.Source{Bytes: loaded.Bytes, Path: loaded.Path},
		engine.WithErrorReporter(func(msg string) {
			logger.Log.Warn().Int("handle", int(handle)).Str("tflite", msg).Msg("interpreter diagnostic")
		}),
	)
	g.engines[handle] = eng
	return eng
}

func errPtr(err error) *wire.Error {
	e := wire.FromError(err)
	return &e
}
