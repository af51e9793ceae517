package gwerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyKnownKind(t *testing.T) {
	err := NewMisshapenTensor("expected %d got %d", 6, 5)
	assert.Equal(t, MisshapenTensor, Classify(err))
}

func TestClassifyUnknownMapsToOther(t *testing.T) {
	assert.Equal(t, Other, Classify(errors.New("boom")))
}

func TestIntoErrorSplitsCamelCase(t *testing.T) {
	err := NewModelStoreFullError("accelerator already holds a model")
	wireErr := IntoError(err)

	assert.Equal(t, ModelStoreFullError, wireErr.Kind)
	assert.Equal(t, "[Model Store Full Error] accelerator already holds a model", wireErr.Message)
}

func TestIntoErrorOtherKind(t *testing.T) {
	wireErr := IntoError(errors.New("unexpected"))
	assert.Equal(t, Other, wireErr.Kind)
	assert.Equal(t, "[Other] unexpected", wireErr.Message)
}

func TestClassifyThroughWrap(t *testing.T) {
	inner := NewModelLoadError("bad model")
	wrapped := errors.New("wrap: " + inner.Error())
	// plain fmt.Errorf wrapping with %w preserves classification; a bare
	// string concatenation (as above) does not, so Classify falls back.
	assert.Equal(t, Other, Classify(wrapped))
}
