package univariate

import (
	"math"
	"testing"

	xrand "golang.org/x/exp/rand"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/webbsledge/skfolio/pkg/errors"
)

func studentTSample(n int, mu, sigma, nu float64, seed uint64) *mat.Dense {
	d := distuv.StudentsT{Mu: mu, Sigma: sigma, Nu: nu, Src: xrand.NewSource(seed)}
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, d.Rand())
	}
	return out
}

func TestStudentTFitRecoversParameters(t *testing.T) {
	X := studentTSample(3000, 0.5, 2.0, 5.0, 11)

	s := NewStudentT(StudentTConfig{})
	require.NoError(t, s.Fit(X))
	require.True(t, s.IsFitted())

	params, err := s.Params()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, params["loc"], 0.3)
	assert.InDelta(t, 2.0, params["scale"], 0.4)
	assert.Greater(t, params["dof"], 3.0)
	assert.Less(t, params["dof"], 9.0)
}

func TestStudentTFitFixedLocScale(t *testing.T) {
	// Both location and scale may be fixed here: the degrees of freedom are
	// always estimated.
	X := studentTSample(3000, 0.0, 1.0, 5.0, 17)

	s := NewStudentT(StudentTConfig{Loc: Fixed(0), Scale: Fixed(1)})
	require.NoError(t, s.Fit(X))

	params, err := s.Params()
	require.NoError(t, err)
	assert.Equal(t, 0.0, params["loc"])
	assert.Equal(t, 1.0, params["scale"])
	assert.Greater(t, params["dof"], 3.0)
	assert.Less(t, params["dof"], 9.0)
}

func TestStudentTScoreSamplesFinite(t *testing.T) {
	s := NewStudentT(StudentTConfig{})
	require.NoError(t, s.Fit(studentTSample(500, 0, 1, 4, 3)))

	scores, err := s.ScoreSamples(column(-10, -1, 0, 1, 10))
	require.NoError(t, err)
	for i, v := range scores {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("score %d is not finite: %v", i, v)
		}
	}
}

func TestStudentTCDFAndPPFRoundTrip(t *testing.T) {
	s := NewStudentT(StudentTConfig{})
	require.NoError(t, s.Fit(studentTSample(1000, 0, 1, 6, 5)))

	ps := column(0.01, 0.25, 0.5, 0.75, 0.99)
	qs, err := s.PPF(ps)
	require.NoError(t, err)
	back, err := s.CDF(column(qs...))
	require.NoError(t, err)
	for i := range back {
		assert.InDelta(t, ps.At(i, 0), back[i], 1e-8)
	}
}

func TestStudentTNumParams(t *testing.T) {
	s := NewStudentT(StudentTConfig{})
	assert.Equal(t, 3, s.NumParams())
}

func TestStudentTNotFitted(t *testing.T) {
	s := NewStudentT(StudentTConfig{})
	_, err := s.ScoreSamples(column(0.5))
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf), "expected NotFittedError, got %v", err)
}

func TestStudentTSampleDeterministic(t *testing.T) {
	s := NewStudentT(StudentTConfig{})
	require.NoError(t, s.Fit(studentTSample(1000, 0, 1, 6, 29)))

	a, err := s.Sample(100, 7)
	require.NoError(t, err)
	b, err := s.Sample(100, 7)
	require.NoError(t, err)
	assert.True(t, mat.Equal(a, b))
}
