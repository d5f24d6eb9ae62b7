package plotter

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPlotter(t *testing.T) {
	t.Parallel()
	Convey("Plotter", t, func() {
		dir := t.TempDir()
		x := []float64{0, 1, 2, 3, 4}

		Convey("tracks the primary plot height", func() {
			p := New(x, Options{})
			p.AddYSeries([]float64{1, 3, 2}, SeriesOptions{})
			So(p.PlotHeight(), ShouldEqual, 2)
			p.AddYSeries([]float64{2, 5}, SeriesOptions{XOffset: 2, Dashes: TreatedDashes})
			So(p.PlotHeight(), ShouldEqual, 4)
			p.AddYSeries([]float64{100}, SeriesOptions{Secondary: true})
			So(p.PlotHeight(), ShouldEqual, 4)
			So(p.NumSeries(), ShouldEqual, 3)
		})

		Convey("offsets series along X and drops non-finite points", func() {
			p := New(x, Options{})
			xys := p.points(ySeries{y: []float64{7, math.NaN(), 9, 10}, opts: SeriesOptions{XOffset: 2}})
			So(xys, ShouldHaveLength, 2)
			So(xys[0].X, ShouldEqual, 2)
			So(xys[0].Y, ShouldEqual, 7)
			So(xys[1].X, ShouldEqual, 4)
			So(xys[1].Y, ShouldEqual, 9)
		})

		Convey("splits primary and secondary panels", func() {
			p := New(x, Options{XLabel: "Time", YLabel: "CoV(DNA)", Y2Label: "RNA/TXN Intensity"})
			p.AddYSeries([]float64{1, 2, 3, 4, 5}, SeriesOptions{})
			primary, secondary, err := p.Plots()
			So(err, ShouldBeNil)
			So(primary.Y.Label.Text, ShouldEqual, "CoV(DNA)")
			So(secondary, ShouldBeNil)

			p.AddYSeries([]float64{9, 9}, SeriesOptions{Secondary: true})
			_, secondary, err = p.Plots()
			So(err, ShouldBeNil)
			So(secondary, ShouldNotBeNil)
			So(secondary.Y.Label.Text, ShouldEqual, "RNA/TXN Intensity")
			So(secondary.X.Min, ShouldEqual, 0)
			So(secondary.X.Max, ShouldEqual, 4)
		})

		Convey("honours axis limits", func() {
			p := New(x, Options{XLim: &[2]float64{0, 60}, YLim: &[2]float64{0, 8}, Scatter: true})
			p.AddYSeries([]float64{1, 2, 3, 4, 5}, SeriesOptions{})
			primary, _, err := p.Plots()
			So(err, ShouldBeNil)
			So(primary.X.Max, ShouldEqual, 60)
			So(primary.Y.Max, ShouldEqual, 8)
		})

		Convey("saves svg files", func() {
			path := filepath.Join(dir, "covRna_plot.svg")
			p := New(x, Options{File: path, XLabel: "RNA Intensity", YLabel: "CoV(DNA)"})
			p.AddYSeries([]float64{1, 2, 3}, SeriesOptions{})
			p.AddYSeries([]float64{3, 2, 1}, SeriesOptions{XOffset: 2, Dashes: TreatedDashes})
			p.AddYSeries([]float64{5, 5, 5, 5, 5}, SeriesOptions{Secondary: true})
			p.Annotate("Flavopiridol @ t=2", 2, 3)
			So(p.Save(), ShouldBeNil)

			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(strings.Contains(string(data), "<svg"), ShouldBeTrue)
		})

		Convey("saves png files", func() {
			path := filepath.Join(dir, "plot.png")
			p := New(x, Options{File: path})
			p.AddYSeries([]float64{1, 2, 3}, SeriesOptions{})
			So(p.Save(), ShouldBeNil)
			_, err := os.Stat(path)
			So(err, ShouldBeNil)
		})

		Convey("rejects unknown formats", func() {
			p := New(x, Options{File: filepath.Join(dir, "plot.xyz")})
			So(p.Save(), ShouldNotBeNil)
		})
	})
}

func TestFormat(t *testing.T) {
	t.Parallel()
	Convey("format follows the extension", t, func() {
		So(format("a/plot"), ShouldEqual, "svg")
		So(format("plot.SVG"), ShouldEqual, "svg")
		So(format("plot.jpeg"), ShouldEqual, "jpg")
		So(format("plot.pdf"), ShouldEqual, "pdf")
	})
}
