// Package gwerrors implements the closed error taxonomy from spec.md §7: a
// total function from an internal error kind to a wire Error.Kind value,
// plus the human-readable message formatting used at the request boundary.
//
// Grounded on original_source/server/types/error.py's error_code_map and its
// `re.sub(r"([A-Z])", r" \1", ...)` message formatter.
package gwerrors

import (
	"errors"
	"regexp"
	"strings"
)

// Kind is the closed wire error taxonomy (spec.md §7).
type Kind int

const (
	Other Kind = iota
	TensorConversionError
	InvalidTensorMessage
	MisshapenTensor
	ModelRegisterError
	ModelAcquireError
	ModelDataError
	ModelConversionError
	ModelStoreFullError
	ModelLoadError
	InvalidHandleError
	TensorTypeError
	InvalidDelegateLibrary
	NCoreNotPresent
)

var kindNames = map[Kind]string{
	Other:                  "Other",
	TensorConversionError:  "TensorConversionError",
	InvalidTensorMessage:   "InvalidTensorMessage",
	MisshapenTensor:        "MisshapenTensor",
	ModelRegisterError:     "ModelRegisterError",
	ModelAcquireError:      "ModelAcquireError",
	ModelDataError:         "ModelDataError",
	ModelConversionError:   "ModelConversionError",
	ModelStoreFullError:    "ModelStoreFullError",
	ModelLoadError:         "ModelLoadError",
	InvalidHandleError:     "InvalidHandleError",
	TensorTypeError:        "TensorTypeError",
	InvalidDelegateLibrary: "InvalidDelegateLibrary",
	NCoreNotPresent:        "NCoreNotPresent",
}

// String returns the wire-visible kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Other"
}

// Kinded is implemented by every sentinel error type in the taxonomy so
// Classify can map an error to its Kind without a long type switch at every
// call site.
type Kinded interface {
	error
	Kind() Kind
}

// Classify maps any error to its wire Kind. Unmapped error types map to
// Other, the same total-function fallback error.py uses.
func Classify(err error) Kind {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return Other
}

// Error is the wire representation returned at the request boundary.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

var camelBoundary = regexp.MustCompile(`([A-Z])`)

// IntoError converts any error into its wire Error, formatting the message
// as "[Split Camel Case Kind] original message" exactly as error.py does.
func IntoError(err error) Error {
	kind := Classify(err)
	split := strings.TrimSpace(camelBoundary.ReplaceAllString(kind.String(), " $1"))
	return Error{
		Kind:    kind,
		Message: "[" + split + "] " + err.Error(),
	}
}
