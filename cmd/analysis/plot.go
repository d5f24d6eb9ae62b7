package main

import (
	"image/color"

	"go.chromium.org/luci/common/errors"

	"github.com/KyungWonPark/Microemulsion/internal/anal"
	"github.com/KyungWonPark/Microemulsion/internal/plotter"
)

// Series colors.
var (
	blue    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	green   = color.RGBA{G: 128, A: 255}
	magenta = color.RGBA{R: 191, B: 191, A: 255}
)

// addSplit adds ys to pl, dashed from the treatment index i on when split.
func addSplit(pl *plotter.Plotter, ys []float64, i int, split bool, opts plotter.SeriesOptions) {
	if !split {
		pl.AddYSeries(ys, opts)
		return
	}
	head, tail := anal.Split(ys, i)
	pl.AddYSeries(head, opts)
	if len(tail) > 0 {
		treated := opts
		treated.XOffset = i
		treated.Dashes = plotter.TreatedDashes
		pl.AddYSeries(tail, treated)
	}
}

// plotCurve draws ys against xs, where times holds the snapshot time of
// every point.
func (c *commonFlags) plotCurve(times, xs, ys []float64, opts plotter.Options) error {
	if len(ys) == 0 {
		return errors.Reason("nothing to plot in %s", opts.File).Err()
	}
	times, smoothed, err := anal.Smooth(c.movingAvgWindow, times, xs, ys)
	if err != nil {
		return err
	}
	xs, ys = smoothed[0], smoothed[1]

	pl := plotter.New(xs, opts)
	i, split := c.events.SplitIndex(times)
	addSplit(pl, ys, i, split, plotter.SeriesOptions{Color: blue})
	for _, a := range c.events.Annotations(times, xs, ys) {
		pl.Annotate(a.Text, a.X, a.Y)
	}
	return pl.Save()
}

// plotTimecourse draws every column of rows past the first against time.
// The first column goes on the main panel, the others on the secondary one.
func (c *commonFlags) plotTimecourse(keys []string, rows [][]float64, file string) error {
	if len(rows) == 0 || len(keys) < 2 {
		return errors.Reason("nothing to plot in %s", file).Err()
	}

	times := make([]float64, len(rows))
	cols := make([][]float64, len(keys)-1)
	for i, r := range rows {
		times[i] = c.deltaT * r[0]
		for k := range cols {
			cols[k] = append(cols[k], r[k+1])
		}
	}
	times, cols, err := anal.Smooth(c.movingAvgWindow, times, cols...)
	if err != nil {
		return err
	}

	pl := plotter.New(times, plotter.Options{
		File:    file,
		XLabel:  "Time",
		YLabel:  keys[1],
		Y2Label: "RNA/TXN Intensity",
	})
	i, split := c.events.SplitIndex(times)
	addSplit(pl, cols[0], i, split, plotter.SeriesOptions{Color: blue})
	secondary := []color.Color{green, magenta}
	for k, col := range cols[1:] {
		addSplit(pl, col, i, split, plotter.SeriesOptions{Color: secondary[k%len(secondary)], Secondary: true})
	}
	for _, a := range c.events.Annotations(times, times, cols[0]) {
		pl.Annotate(a.Text, a.X, a.Y)
	}
	return pl.Save()
}
