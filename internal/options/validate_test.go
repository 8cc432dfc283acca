package options

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erraggy/specflat/flaterrors"
)

func TestValidateSingleInputSource(t *testing.T) {
	names := []string{"WithFilePath", "WithURL", "WithBytes"}

	assert.NoError(t, ValidateSingleInputSource("flatten", names, false, true, false))

	err := ValidateSingleInputSource("flatten", names, false, false, false)
	assert.ErrorIs(t, err, flaterrors.ErrConfig)
	assert.Contains(t, err.Error(), "use WithFilePath, WithURL, or WithBytes")

	err = ValidateSingleInputSource("flatten", names, true, false, true)
	assert.ErrorIs(t, err, flaterrors.ErrConfig)
	assert.Contains(t, err.Error(), "exactly one input source")
}

func TestNonNegative(t *testing.T) {
	assert.NoError(t, NonNegative("concurrency", 0))
	assert.ErrorIs(t, NonNegative("concurrency", -1), flaterrors.ErrConfig)
}
