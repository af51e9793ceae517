// Package wire defines the gateway's JSON request/response envelopes
// (spec.md §6), grounded on
// original_source/server/__main__.py's load_model/run_inference routes
// (structure, not transport — the source uses protobuf over flask_pbj; this
// gateway exposes the same fields as JSON, spec.md §1 having scoped the
// exact wire encoding out of core).
package wire

import (
	"github.com/itohio/inferlite/pkg/core/gwerrors"
)

// Error is the wire form of a core error (spec.md §4.6, §7).
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// FromError builds a wire Error from any error value, classifying it
// through gwerrors' total Kind mapping.
func FromError(err error) Error {
	e := gwerrors.IntoError(err)
	return Error{Kind: e.Kind.String(), Message: e.Message}
}

// ModelDescriptor is the wire model one-of: exactly one of Data/URL/File.
type ModelDescriptor struct {
	Data []byte `json:"data,omitempty"`
	URL  string `json:"url,omitempty"`
	File string `json:"file,omitempty"`
	Type string `json:"type"`
}

// LoadModelRequest is the /api/model request body.
type LoadModelRequest struct {
	Model ModelDescriptor `json:"model"`
}

// ModelHandle is the wire handle one-of partner.
type ModelHandle struct {
	ID int64 `json:"id"`
}

// LoadModelResponse is the /api/model response body: exactly one of
// Handle/Error is populated.
type LoadModelResponse struct {
	Handle *ModelHandle `json:"handle,omitempty"`
	Error  *Error       `json:"error,omitempty"`
}

// Tensor is the wire Tensor message (spec.md §3, §6).
type Tensor struct {
	Dimensions []int     `json:"dimensions"`
	Floats     []float32 `json:"floats,omitempty"`
	Ints       []int32   `json:"ints,omitempty"`
	Bools      []bool    `json:"bools,omitempty"`
	Complexes  []int32   `json:"complex,omitempty"`
	Strings    [][]byte  `json:"strings,omitempty"`
}

// InferenceRequest is the /api/inference request body: handle plus one
// wire Tensor per model input.
type InferenceRequest struct {
	Handle  ModelHandle `json:"handle"`
	Tensors []Tensor    `json:"tensors"`
	Trace   bool        `json:"trace,omitempty"`
}

// Metrics is the wire form of pkg/core/metrics.Metrics.
type Metrics struct {
	TimeToExecuteUS int64  `json:"time_to_execute_us"`
	TraceURL        string `json:"trace_url,omitempty"`
}

// InferenceResponse is the /api/inference response body: exactly one of
// (Tensors, Metrics)/Error is populated.
type InferenceResponse struct {
	Tensors []Tensor `json:"tensors,omitempty"`
	Metrics *Metrics `json:"metrics,omitempty"`
	Error   *Error   `json:"error,omitempty"`
}
