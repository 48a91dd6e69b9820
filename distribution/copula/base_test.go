package copula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/webbsledge/skfolio/pkg/errors"
)

func pairs(values ...float64) *mat.Dense {
	return mat.NewDense(len(values)/2, 2, values)
}

func TestValidatePseudo(t *testing.T) {
	tests := []struct {
		name    string
		X       mat.Matrix
		wantErr bool
	}{
		{name: "valid", X: pairs(0.2, 0.8, 0.5, 0.5)},
		{name: "boundary values clipped", X: pairs(0.0, 1.0)},
		{name: "nil", X: nil, wantErr: true},
		{name: "empty", X: &mat.Dense{}, wantErr: true},
		{name: "one column", X: mat.NewDense(2, 1, []float64{0.1, 0.2}), wantErr: true},
		{name: "three columns", X: mat.NewDense(1, 3, []float64{0.1, 0.2, 0.3}), wantErr: true},
		{name: "above one", X: pairs(0.5, 1.5), wantErr: true},
		{name: "negative", X: pairs(-0.1, 0.5), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := validatePseudo("test", tt.X)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			r, c := out.Dims()
			assert.Equal(t, 2, c)
			for i := 0; i < r; i++ {
				for j := 0; j < 2; j++ {
					v := out.At(i, j)
					assert.GreaterOrEqual(t, v, marginalEps)
					assert.LessOrEqual(t, v, 1.0-marginalEps)
				}
			}
		})
	}
}

func TestValidatePseudoClipsBoundary(t *testing.T) {
	out, err := validatePseudo("test", pairs(0.0, 1.0))
	require.NoError(t, err)
	assert.Equal(t, marginalEps, out.At(0, 0))
	assert.Equal(t, 1.0-marginalEps, out.At(0, 1))
}

func TestApplyMarginSwap(t *testing.T) {
	X := pairs(0.1, 0.9, 0.3, 0.7)

	same := applyMarginSwap(X, false)
	assert.True(t, mat.Equal(X, same))

	swapped := applyMarginSwap(X, true)
	assert.Equal(t, 0.9, swapped.At(0, 0))
	assert.Equal(t, 0.1, swapped.At(0, 1))
	assert.Equal(t, 0.7, swapped.At(1, 0))
	assert.Equal(t, 0.3, swapped.At(1, 1))

	// Swapping twice restores the original.
	assert.True(t, mat.Equal(X, applyMarginSwap(swapped, true)))
}

func TestInformationCriteriaHelpers(t *testing.T) {
	scores := []float64{-1.0, -2.0, -3.0}
	assert.InDelta(t, 2.0*(2.0+6.0), aic(scores, 2), 1e-12)
	wantBIC := 12.0 + 2.0*math.Log(3.0)
	assert.InDelta(t, wantBIC, bic(scores, 2), 1e-12)
}

func TestValidatePseudoErrorTypes(t *testing.T) {
	_, err := validatePseudo("test", pairs(0.5, 1.5))
	var ve *errors.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)

	_, err = validatePseudo("test", mat.NewDense(2, 1, []float64{0.1, 0.2}))
	var de *errors.DimensionError
	require.True(t, errors.As(err, &de), "expected DimensionError, got %v", err)

	_, err = validatePseudo("test", &mat.Dense{})
	require.True(t, errors.Is(err, errors.ErrEmptyData))
}
