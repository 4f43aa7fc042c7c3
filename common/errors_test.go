package common

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := InvalidParameterf("h must be positive, got %v", -1)
	assert.True(t, errors.Is(err, ErrorInvalidParameter))
	assert.False(t, errors.Is(err, ErrorInvalidValue))
	assert.Contains(t, err.Error(), "h must be positive, got -1")

	assert.True(t, errors.Is(InvalidValuef("empty"), ErrorInvalidValue))
	assert.True(t, errors.Is(DegenerateInputf("collapsed"), ErrorDegenerateInput))
}
