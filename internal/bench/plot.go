package bench

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Plot saves a bar chart of mean ns/op per case. The image format follows
// the file extension (png, svg, pdf, ...).
func Plot(results []Result, path string) error {
	if len(results) == 0 {
		return errors.New("bench: nothing to plot")
	}

	p := plot.New()
	p.Title.Text = "SPSC handoff"
	p.Y.Label.Text = "ns/op"

	values := make(plotter.Values, len(results))
	names := make([]string, len(results))
	for i, r := range results {
		values[i] = r.Mean
		names[i] = r.Name
	}

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return errors.Wrap(err, "bench: bar chart")
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "bench: save %s", path)
	}
	return nil
}
