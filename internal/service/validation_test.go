package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePoints(t *testing.T) {
	for _, ok := range []float64{0.5, 1, 2.5, 100} {
		assert.NoError(t, ValidatePoints(ok), ok)
	}
	for _, bad := range []float64{0, -0.5, 0.25, 1.1, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, ValidatePoints(bad), ErrValidation, bad)
	}
}

func TestValidateName(t *testing.T) {
	name, err := ValidateName("  Read a chapter \n")
	require.NoError(t, err)
	assert.Equal(t, "Read a chapter", name)

	_, err = ValidateName(" \t ")
	assert.ErrorIs(t, err, ErrValidation)
}
