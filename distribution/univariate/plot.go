package univariate

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"

	"github.com/webbsledge/skfolio/core/model"
)

const plotPoints = 1000

// PlotPDF renders the fitted probability density over the quantile range
// [PPF(1e-3), PPF(1-1e-3)]. The plot is a diagnostic aid; it plays no role in
// estimation.
func PlotPDF(d model.UnivariateDistribution, title string) (*plot.Plot, error) {
	bounds, err := d.PPF(mat.NewDense(2, 1, []float64{1e-3, 1 - 1e-3}))
	if err != nil {
		return nil, err
	}
	lo, hi := bounds[0], bounds[1]

	xs := mat.NewDense(plotPoints, 1, nil)
	for i := 0; i < plotPoints; i++ {
		xs.Set(i, 0, lo+(hi-lo)*float64(i)/float64(plotPoints-1))
	}
	scores, err := d.ScoreSamples(xs)
	if err != nil {
		return nil, err
	}

	pts := make(plotter.XYs, plotPoints)
	for i := range pts {
		pts[i].X = xs.At(i, 0)
		pts[i].Y = math.Exp(scores[i])
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}

	if title == "" {
		repr, err := d.FittedRepr()
		if err != nil {
			return nil, err
		}
		title = "PDF of " + repr
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "probability density"
	p.Add(line)
	return p, nil
}
