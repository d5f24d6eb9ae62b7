// Package plotter renders analysis curves to image files.
package plotter

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.chromium.org/luci/common/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	gplotter "gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Figure size of a single panel.
var (
	Width  = 6.4 * vg.Inch
	Height = 4.8 * vg.Inch
)

// TreatedDashes is the dash pattern used for curve segments after a treatment.
var TreatedDashes = []vg.Length{vg.Points(4), vg.Points(1)}

// Options configure a Plotter.
type Options struct {
	File    string
	XLabel  string
	YLabel  string
	Y2Label string
	Scatter bool
	// XLim and YLim fix the primary axis ranges when non-nil.
	XLim *[2]float64
	YLim *[2]float64
}

// SeriesOptions configure a single Y series.
type SeriesOptions struct {
	// XOffset is the index into X of the first point of the series.
	XOffset int
	Dashes  []vg.Length
	// Color defaults to the next palette color.
	Color color.Color
	// Secondary puts the series on the Y2 panel.
	Secondary bool
}

type ySeries struct {
	y    []float64
	opts SeriesOptions
}

type annotation struct {
	text string
	x, y float64
}

// Plotter accumulates Y series sharing one X axis and saves them as a figure.
type Plotter struct {
	x           []float64
	opts        Options
	series      []ySeries
	annotations []annotation
	plotHeight  float64
}

// New returns a Plotter over the X values.
func New(x []float64, opts Options) *Plotter {
	if opts.File == "" {
		opts.File = "plot.svg"
	}
	return &Plotter{x: x, opts: opts}
}

// AddYSeries adds a series plotted against X[opts.XOffset:].
func (p *Plotter) AddYSeries(y []float64, opts SeriesOptions) {
	if opts.XOffset < 0 {
		opts.XOffset = 0
	}
	p.series = append(p.series, ySeries{y: y, opts: opts})

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range p.series {
		if s.opts.Secondary || len(s.y) == 0 {
			continue
		}
		lo = math.Min(lo, floats.Min(s.y))
		hi = math.Max(hi, floats.Max(s.y))
	}
	if hi >= lo {
		p.plotHeight = hi - lo
	}
}

// PlotHeight returns max - min over the primary series.
func (p *Plotter) PlotHeight() float64 {
	return p.plotHeight
}

// NumSeries returns the number of series added so far.
func (p *Plotter) NumSeries() int {
	return len(p.series)
}

// Annotate labels the point (x, y) with text, placed up and to the left of it.
func (p *Plotter) Annotate(text string, x, y float64) {
	p.annotations = append(p.annotations, annotation{text: text, x: x, y: y})
}

func (p *Plotter) points(s ySeries) gplotter.XYs {
	var xys gplotter.XYs
	for i, y := range s.y {
		j := s.opts.XOffset + i
		if j >= len(p.x) {
			break
		}
		x := p.x[j]
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		xys = append(xys, gplotter.XY{X: x, Y: y})
	}
	return xys
}

func (p *Plotter) addSeries(pl *plot.Plot, s ySeries, idx int) error {
	xys := p.points(s)
	if len(xys) == 0 {
		return nil
	}

	c := s.opts.Color
	if c == nil {
		c = plotutil.Color(idx)
	}

	if p.opts.Scatter {
		sc, err := gplotter.NewScatter(xys)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = c
		sc.GlyphStyle.Radius = vg.Points(2)
		pl.Add(sc)
		return nil
	}

	l, err := gplotter.NewLine(xys)
	if err != nil {
		return err
	}
	l.LineStyle.Color = c
	l.LineStyle.Dashes = s.opts.Dashes
	pl.Add(l)
	return nil
}

func (p *Plotter) addAnnotations(pl *plot.Plot) error {
	if len(p.annotations) == 0 {
		return nil
	}

	xMax := 0.0
	if len(p.x) > 0 {
		xMax = floats.Max(p.x)
	}

	green := color.RGBA{G: 128, A: 255}
	labels := gplotter.XYLabels{}
	for _, a := range p.annotations {
		tx := a.x - 0.12*xMax
		ty := a.y + 0.15*p.plotHeight

		arrow, err := gplotter.NewLine(gplotter.XYs{{X: tx, Y: ty}, {X: a.x, Y: a.y}})
		if err != nil {
			return err
		}
		arrow.LineStyle.Color = green
		pl.Add(arrow)

		labels.XYs = append(labels.XYs, gplotter.XY{X: tx, Y: ty})
		labels.Labels = append(labels.Labels, a.text)
	}

	l, err := gplotter.NewLabels(labels)
	if err != nil {
		return err
	}
	pl.Add(l)
	return nil
}

func (p *Plotter) newPlot(yLabel string) *plot.Plot {
	pl := plot.New()
	pl.X.Label.Text = p.opts.XLabel
	pl.Y.Label.Text = yLabel
	return pl
}

// Plots builds the primary panel and, when a series asks for it, the
// secondary panel sharing the same X range.
func (p *Plotter) Plots() (*plot.Plot, *plot.Plot, error) {
	primary := p.newPlot(p.opts.YLabel)
	var secondary *plot.Plot

	for i, s := range p.series {
		pl := primary
		if s.opts.Secondary {
			if secondary == nil {
				secondary = p.newPlot(p.opts.Y2Label)
			}
			pl = secondary
		}
		if err := p.addSeries(pl, s, i); err != nil {
			return nil, nil, errors.Annotate(err, "series %d", i).Err()
		}
	}
	if err := p.addAnnotations(primary); err != nil {
		return nil, nil, errors.Annotate(err, "annotations").Err()
	}

	if lim := p.opts.XLim; lim != nil {
		primary.X.Min, primary.X.Max = lim[0], lim[1]
	}
	if lim := p.opts.YLim; lim != nil {
		primary.Y.Min, primary.Y.Max = lim[0], lim[1]
	}
	if secondary != nil && primary.X.Min <= primary.X.Max {
		secondary.X.Min, secondary.X.Max = primary.X.Min, primary.X.Max
	}

	return primary, secondary, nil
}

func format(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "":
		return "svg"
	case "jpeg":
		return "jpg"
	case "tiff":
		return "tif"
	}
	return ext
}

// Save renders the figure to the configured file. The format follows the
// file extension.
func (p *Plotter) Save() error {
	primary, secondary, err := p.Plots()
	if err != nil {
		return errors.Annotate(err, "plot %s", p.opts.File).Err()
	}

	plots := [][]*plot.Plot{{primary}}
	height := Height
	if secondary != nil {
		plots = append(plots, []*plot.Plot{secondary})
		height = 2 * Height
	}

	c, err := draw.NewFormattedCanvas(Width, height, format(p.opts.File))
	if err != nil {
		return errors.Annotate(err, "plot %s", p.opts.File).Err()
	}

	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: 1,
		PadY: vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, draw.New(c))
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(p.opts.File)
	if err != nil {
		return errors.Annotate(err, "plot %s", p.opts.File).Err()
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return errors.Annotate(err, "plot %s", p.opts.File).Err()
	}
	if err := f.Close(); err != nil {
		return errors.Annotate(err, "plot %s", p.opts.File).Err()
	}
	return nil
}
