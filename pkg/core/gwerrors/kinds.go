package gwerrors

import "fmt"

// kindError is the concrete error type raised at every violation site in the
// core. It carries just a kind and a message — no stack, per spec.md §7's
// propagation policy.
type kindError struct {
	kind Kind
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Kind() Kind    { return e.kind }

func newf(kind Kind, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// NewTensorConversionError reports an encode-side dtype that cannot be
// placed on the wire (spec.md §4.1, §7).
func NewTensorConversionError(format string, args ...any) error {
	return newf(TensorConversionError, format, args...)
}

// NewInvalidTensorMessage reports a decode-side wire Tensor with no payload
// variant set.
func NewInvalidTensorMessage(format string, args ...any) error {
	return newf(InvalidTensorMessage, format, args...)
}

// NewMisshapenTensor reports product(dimensions) != len(payload).
func NewMisshapenTensor(format string, args ...any) error {
	return newf(MisshapenTensor, format, args...)
}

// NewModelRegisterError reports empty bytes, a missing file, or a wrong
// extension at model registration time.
func NewModelRegisterError(format string, args ...any) error {
	return newf(ModelRegisterError, format, args...)
}

// NewModelAcquireError reports a URL fetch failure or unreadable local file.
func NewModelAcquireError(format string, args ...any) error {
	return newf(ModelAcquireError, format, args...)
}

// NewModelDataError reports a missing/unknown source tag or a bad zip.
func NewModelDataError(format string, args ...any) error {
	return newf(ModelDataError, format, args...)
}

// NewModelConversionError reports an unknown format, an unimplemented
// conversion path, or a wrapped conversion-step exception.
func NewModelConversionError(format string, args ...any) error {
	return newf(ModelConversionError, format, args...)
}

// NewModelStoreFullError reports a capacity violation with the accelerator
// present.
func NewModelStoreFullError(format string, args ...any) error {
	return newf(ModelStoreFullError, format, args...)
}

// NewModelLoadError reports an interpreter construction failure.
func NewModelLoadError(format string, args ...any) error {
	return newf(ModelLoadError, format, args...)
}

// NewInvalidHandleError reports a handle out of range.
func NewInvalidHandleError(format string, args ...any) error {
	return newf(InvalidHandleError, format, args...)
}

// NewTensorTypeError reports a dtype/shape reconciliation failure.
func NewTensorTypeError(format string, args ...any) error {
	return newf(TensorTypeError, format, args...)
}

// NewInvalidDelegateLibrary reports an accelerator delegate path that does
// not exist or is not a shared object.
func NewInvalidDelegateLibrary(format string, args ...any) error {
	return newf(InvalidDelegateLibrary, format, args...)
}

// NewNCoreNotPresent reports NCORE being set without the device present.
func NewNCoreNotPresent(format string, args ...any) error {
	return newf(NCoreNotPresent, format, args...)
}
