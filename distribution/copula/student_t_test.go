package copula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/webbsledge/skfolio/core/model"
	"github.com/webbsledge/skfolio/pkg/errors"
)

func ptr(v float64) *float64 { return &v }

// fittedT builds a fitted copula with known parameters, bypassing estimation.
func fittedT(rho, dof float64) *StudentTCopula {
	c := &StudentTCopula{state: model.NewStateManager(), rho: rho, dof: dof}
	c.state.SetFitted()
	return c
}

func TestStudentTCopulaScoreSamplesFinite(t *testing.T) {
	X := pairs(
		0.05, 0.95,
		0.5, 0.5,
		0.99, 0.01,
		0.3, 0.7,
	)
	for _, rho := range []float64{-0.95, -0.5, 0.0, 0.5, 0.95} {
		for _, dof := range []float64{1.0001, 2, 5, 20, 50} {
			scores, err := fittedT(rho, dof).ScoreSamples(X)
			require.NoError(t, err, "rho=%v dof=%v", rho, dof)
			for i, s := range scores {
				if math.IsNaN(s) || math.IsInf(s, 0) {
					t.Errorf("rho=%v dof=%v score %d not finite: %v", rho, dof, i, s)
				}
			}
		}
	}
}

func TestStudentTCopulaIndependenceDensity(t *testing.T) {
	// At rho = 0 and large dof the copula is near-independent, so the
	// log-density is near zero everywhere.
	c := fittedT(0.0, 50.0)
	scores, err := c.ScoreSamples(pairs(0.2, 0.8, 0.5, 0.5, 0.9, 0.1))
	require.NoError(t, err)
	for _, s := range scores {
		assert.InDelta(t, 0.0, s, 0.05)
	}
}

func TestSampleScoresTDomain(t *testing.T) {
	u := []float64{0.5}
	v := []float64{0.5}
	tests := []struct {
		name     string
		rho, dof float64
	}{
		{name: "rho above one", rho: 1.5, dof: 5},
		{name: "rho below minus one", rho: -1.5, dof: 5},
		{name: "dof below one", rho: 0.5, dof: 0.5},
		{name: "dof above fifty", rho: 0.5, dof: 55},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sampleScoresT(u, v, tt.rho, tt.dof)
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
		})
	}
}

func TestStudentTCopulaHFunctionRoundTrip(t *testing.T) {
	c := fittedT(0.6, 4.0)
	X := pairs(
		0.1, 0.3,
		0.4, 0.9,
		0.75, 0.2,
		0.5, 0.5,
	)
	r, _ := X.Dims()
	for _, firstMargin := range []bool{false, true} {
		h, err := c.PartialDerivative(X, firstMargin)
		require.NoError(t, err)

		// Re-pair h with the conditioning margin, keeping the column layout
		// the flag expects, and invert.
		P := mat.NewDense(r, 2, nil)
		for i := 0; i < r; i++ {
			if firstMargin {
				P.Set(i, 0, X.At(i, 0))
				P.Set(i, 1, h[i])
			} else {
				P.Set(i, 0, h[i])
				P.Set(i, 1, X.At(i, 1))
			}
		}
		back, err := c.InversePartialDerivative(P, firstMargin)
		require.NoError(t, err)
		for i := range back {
			want := X.At(i, 0)
			if firstMargin {
				want = X.At(i, 1)
			}
			assert.InDelta(t, want, back[i], 1e-6, "firstMargin=%v row %d", firstMargin, i)
		}
	}
}

func TestStudentTCopulaHFunctionSymmetry(t *testing.T) {
	// Swapping the margins and flipping the flag is the identical computation.
	c := fittedT(-0.4, 7.0)
	X := pairs(0.15, 0.85, 0.6, 0.35, 0.9, 0.9)
	swapped := applyMarginSwap(X, true)

	a, err := c.PartialDerivative(X, true)
	require.NoError(t, err)
	b, err := c.PartialDerivative(swapped, false)
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestStudentTCopulaHFunctionMonotone(t *testing.T) {
	c := fittedT(0.5, 5.0)
	prev := -1.0
	for _, u := range []float64{0.05, 0.2, 0.4, 0.6, 0.8, 0.95} {
		h, err := c.PartialDerivative(pairs(u, 0.5), false)
		require.NoError(t, err)
		assert.Greater(t, h[0], prev, "h must increase in the conditioned margin")
		prev = h[0]
	}
}

func TestStudentTCopulaCDFBounds(t *testing.T) {
	c := fittedT(0.6, 5.0)
	X := pairs(
		0.1, 0.3,
		0.5, 0.5,
		0.9, 0.8,
	)
	cdf, err := c.CDF(X)
	require.NoError(t, err)
	for i, v := range cdf {
		u1, u2 := X.At(i, 0), X.At(i, 1)
		// Frechet-Hoeffding bounds.
		lower := math.Max(u1+u2-1.0, 0.0)
		upper := math.Min(u1, u2)
		assert.GreaterOrEqual(t, v, lower-1e-6, "row %d", i)
		assert.LessOrEqual(t, v, upper+1e-6, "row %d", i)
	}
}

func TestStudentTCopulaCDFNearIndependence(t *testing.T) {
	// At rho = 0 and high dof the copula CDF approaches the product u*v.
	c := fittedT(0.0, 40.0)
	X := pairs(0.3, 0.7, 0.5, 0.5, 0.8, 0.2)
	cdf, err := c.CDF(X)
	require.NoError(t, err)
	for i, v := range cdf {
		assert.InDelta(t, X.At(i, 0)*X.At(i, 1), v, 0.02, "row %d", i)
	}
}

func TestStudentTCopulaFitMLE(t *testing.T) {
	truth := fittedT(0.6, 5.0)
	X, err := truth.Sample(2000, 42)
	require.NoError(t, err)

	c := NewStudentTCopula(StudentTCopulaConfig{})
	require.NoError(t, c.Fit(X))
	require.True(t, c.IsFitted())

	rho, err := c.Rho()
	require.NoError(t, err)
	dof, err := c.Dof()
	require.NoError(t, err)
	assert.InDelta(t, 0.6, rho, 0.05)
	assert.InDelta(t, 5.0, dof, 2.0)
}

func TestStudentTCopulaFitKendallTauInversion(t *testing.T) {
	truth := fittedT(0.6, 5.0)
	X, err := truth.Sample(2000, 7)
	require.NoError(t, err)

	c := NewStudentTCopula(StudentTCopulaConfig{KendallTauInversion: true})
	require.NoError(t, c.Fit(X))

	params, err := c.Params()
	require.NoError(t, err)
	assert.InDelta(t, 0.6, params["rho"], 0.06)
	assert.Greater(t, params["dof"], dofMin)
	assert.Less(t, params["dof"], dofMax)
}

func TestStudentTCopulaFitProvidedKendallTau(t *testing.T) {
	X := mustSample(t, fittedT(0.3, 10.0), 500, 3)

	tau := 0.5
	c := NewStudentTCopula(StudentTCopulaConfig{
		KendallTauInversion: true,
		KendallTau:          ptr(tau),
	})
	require.NoError(t, c.Fit(X))

	rho, err := c.Rho()
	require.NoError(t, err)
	assert.InDelta(t, math.Sin(math.Pi*tau/2.0), rho, 1e-12)
}

func mustSample(t *testing.T, c *StudentTCopula, n int, seed uint64) *mat.Dense {
	t.Helper()
	X, err := c.Sample(n, seed)
	require.NoError(t, err)
	return X
}

func TestStudentTCopulaNotFitted(t *testing.T) {
	c := NewStudentTCopula(StudentTCopulaConfig{})
	X := pairs(0.5, 0.5)

	var nf *errors.NotFittedError
	_, err := c.ScoreSamples(X)
	require.True(t, errors.As(err, &nf))
	_, err = c.CDF(X)
	require.True(t, errors.As(err, &nf))
	_, err = c.PartialDerivative(X, false)
	require.True(t, errors.As(err, &nf))
	_, err = c.InversePartialDerivative(X, false)
	require.True(t, errors.As(err, &nf))
	_, err = c.Sample(10, 1)
	require.True(t, errors.As(err, &nf))
	_, err = c.Rho()
	require.True(t, errors.As(err, &nf))
	_, err = c.Dof()
	require.True(t, errors.As(err, &nf))
	_, err = c.FittedRepr()
	require.True(t, errors.As(err, &nf))
}

func TestStudentTCopulaSample(t *testing.T) {
	c := fittedT(0.5, 6.0)

	a, err := c.Sample(200, 9)
	require.NoError(t, err)
	b, err := c.Sample(200, 9)
	require.NoError(t, err)
	assert.True(t, mat.Equal(a, b))

	r, cols := a.Dims()
	assert.Equal(t, 200, r)
	assert.Equal(t, 2, cols)
	for i := 0; i < r; i++ {
		for j := 0; j < 2; j++ {
			v := a.At(i, j)
			assert.True(t, v >= 0 && v <= 1, "sample (%d,%d)=%v outside [0,1]", i, j, v)
		}
	}

	_, err = c.Sample(0, 1)
	require.Error(t, err)
}

func TestStudentTCopulaInformationCriteria(t *testing.T) {
	c := fittedT(0.5, 6.0)
	X := mustSample(t, c, 300, 21)

	score, err := c.Score(X)
	require.NoError(t, err)
	aicValue, err := c.AIC(X)
	require.NoError(t, err)
	bicValue, err := c.BIC(X)
	require.NoError(t, err)

	assert.InDelta(t, 2.0*(2.0-score), aicValue, 1e-9)
	assert.InDelta(t, -2.0*score+2.0*math.Log(300.0), bicValue, 1e-9)
}

func TestStudentTCopulaNumParamsAndRepr(t *testing.T) {
	c := fittedT(0.6, 5.2)
	assert.Equal(t, 2, c.NumParams())
	repr, err := c.FittedRepr()
	require.NoError(t, err)
	assert.Contains(t, repr, "StudentTCopula(")
}
