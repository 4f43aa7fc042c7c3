package report

import (
	"fmt"
	"image/color"

	"github.com/cockroachdb/errors"
	"github.com/uyouii/density-estimation/model"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var methodColors = map[model.Method]color.RGBA{
	model.MethodKDE:  {R: 220, G: 20, B: 60, A: 255},
	model.MethodDDE:  {R: 128, G: 0, B: 128, A: 255},
	model.MethodAKDE: {R: 218, G: 165, B: 32, A: 255},
	model.MethodMKDE: {R: 34, G: 139, B: 34, A: 255},
}

var truthColor = color.RGBA{B: 255, A: 255}

// FigureName is the comparison figure file name for one experiment.
func FigureName(dist string, params []float64) string {
	return fmt.Sprintf("%s(%s)_Comparison.png", dist, formatParams(params))
}

func toXYs(grid *model.Grid, values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = grid.At(i)
		pts[i].Y = v
	}
	return pts
}

// PlotComparison saves the true density and every estimate on one figure.
func PlotComparison(path, title string, grid *model.Grid, truth []float64,
	estimates map[model.Method]*model.DensityEstimate) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "density"

	truthLine, err := plotter.NewLine(toXYs(grid, truth))
	if err != nil {
		return errors.Wrap(err, "true density line")
	}
	truthLine.LineStyle.Color = truthColor
	truthLine.LineStyle.Width = vg.Points(2)
	p.Add(truthLine)
	p.Legend.Add("Real", truthLine)

	for _, method := range model.AllMethods {
		estimate, ok := estimates[method]
		if !ok {
			continue
		}
		l, err := plotter.NewLine(toXYs(grid, estimate.Values))
		if err != nil {
			return errors.Wrapf(err, "%s line", method)
		}
		l.LineStyle.Color = methodColors[method]
		p.Add(l)
		p.Legend.Add(string(method), l)
	}
	p.Legend.Top = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}
