package univariate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webbsledge/skfolio/pkg/errors"
)

func TestPlotPDF(t *testing.T) {
	g := NewGaussian(GaussianConfig{})
	require.NoError(t, g.Fit(column(1, 2, 3, 4, 5)))

	p, err := PlotPDF(g, "density")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "density", p.Title.Text)
}

func TestPlotPDFDefaultTitle(t *testing.T) {
	g := NewGaussian(GaussianConfig{})
	require.NoError(t, g.Fit(column(1, 2, 3, 4, 5)))

	p, err := PlotPDF(g, "")
	require.NoError(t, err)
	assert.Contains(t, p.Title.Text, "Gaussian(")
}

func TestPlotPDFNotFitted(t *testing.T) {
	g := NewGaussian(GaussianConfig{})
	_, err := PlotPDF(g, "")
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf), "expected NotFittedError, got %v", err)
}
