package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gonum/matrix/mat64"
	. "github.com/smartystreets/goconvey/convey"
	. "go.chromium.org/luci/common/testing/assertions"

	"github.com/KyungWonPark/Microemulsion/internal/snapshot"
)

func flat(v float64) *mat64.Dense {
	m := mat64.NewDense(4, 4, nil)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m.Set(r, c, v)
		}
	}
	return m
}

// writeSequence writes one flat snapshot of channel per value into dir.
func writeSequence(t *testing.T, dir, channel string, values ...float64) {
	for i, v := range values {
		path := filepath.Join(dir, fmt.Sprintf("microemulsion_%s_%d_%d.00.pgm", channel, i, i))
		if err := snapshot.Save(path, flat(v)); err != nil {
			t.Fatal(err)
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestOutputPath(t *testing.T) {
	t.Parallel()
	Convey("outputPath", t, func() {
		So(outputPath("covRna_plot.svg", "runs/a"), ShouldEqual, filepath.Join("runs/a", "covRna_plot.svg"))
		So(outputPath("./covRna_plot.svg", "runs/a"), ShouldEqual, "./covRna_plot.svg")
		So(outputPath("/tmp/x.csv", "runs/a"), ShouldEqual, "/tmp/x.csv")
		So(npyPath("runs/a/covRna_results.csv"), ShouldEqual, "runs/a/covRna_results.npy")
	})
}

func TestCurveInputs(t *testing.T) {
	t.Parallel()
	Convey("curveInputs", t, func() {
		plan := curvePlan{xChannel: snapshot.RNA, yChannel: snapshot.DNA}
		c := cmdCovRna.CommandRun().(*covRnaRun)

		Convey("defaults to the channel patterns of the input directory", func() {
			xs, ys, dir, err := c.curveInputs([]string{"runs/a"}, plan)
			So(err, ShouldBeNil)
			So(xs, ShouldResemble, []string{filepath.Join("runs/a", "microemulsion_RNA_*")})
			So(ys, ShouldResemble, []string{filepath.Join("runs/a", "microemulsion_DNA_*")})
			So(dir, ShouldEqual, "runs/a")
		})

		Convey("prefers -X and -Y", func() {
			c.xInputs = []string{"b/x_1.pgm", "b/x_2.pgm"}
			c.yInputs = []string{"b/y_1.pgm"}
			xs, _, dir, err := c.curveInputs([]string{"runs/a"}, plan)
			So(err, ShouldBeNil)
			So(xs, ShouldHaveLength, 2)
			So(dir, ShouldEqual, "b")
		})

		Convey("scatter mode reads the EXTRA snapshots", func() {
			c.scatterDirs = []string{"s1", "s2"}
			xs, ys, dir, err := c.curveInputs(nil, plan)
			So(err, ShouldBeNil)
			So(xs, ShouldResemble, []string{filepath.Join("s1", "microemulsion_RNA_EXTRA.pgm"), filepath.Join("s2", "microemulsion_RNA_EXTRA.pgm")})
			So(ys[1], ShouldEqual, filepath.Join("s2", "microemulsion_DNA_EXTRA.pgm"))
			So(dir, ShouldEqual, ".")
		})

		Convey("needs some input", func() {
			_, _, _, err := c.curveInputs(nil, plan)
			So(err, ShouldErrLike, "inputDir or the -X & -Y flags")
			_, _, _, err = c.curveInputs([]string{"a", "b"}, plan)
			So(err, ShouldErrLike, "at most one input directory")
		})
	})
}

func TestCovRna(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	Convey("covrna", t, func() {
		dir := t.TempDir()
		writeSequence(t, dir, snapshot.RNA, 10, 20, 30, 40)
		writeSequence(t, dir, snapshot.DNA, 50, 50, 50, 50)
		c := cmdCovRna.CommandRun().(*covRnaRun)

		Convey("writes results and plot next to the snapshots", func() {
			So(c.GetFlags().Parse([]string{"-s", "-npy", "-flavopiridol", "2", "-c", "3"}), ShouldBeNil)
			var out bytes.Buffer
			So(c.innerRun(ctx, []string{dir}, &out), ShouldBeNil)

			csvFile := filepath.Join(dir, "covRna_results.csv")
			So(out.String(), ShouldContainSubstring, "Data saved at "+csvFile)
			So(exists(filepath.Join(dir, "covRna_plot.svg")), ShouldBeTrue)
			So(exists(filepath.Join(dir, "covRna_results.npy")), ShouldBeTrue)

			data, err := os.ReadFile(csvFile)
			So(err, ShouldBeNil)
			So(strings.Split(strings.TrimSpace(string(data)), "\r\n"), ShouldResemble, []string{
				"SnapshotNumber,X,CoV(Y)", "0,10,0", "1,20,0", "2,30,0", "3,40,0",
			})

			Convey("and replot draws it again", func() {
				r := cmdReplot.CommandRun().(*replotRun)
				So(r.GetFlags().Parse([]string{"-d", csvFile, "-p", "again.png", "-m", "3"}), ShouldBeNil)
				var out bytes.Buffer
				So(r.innerRun(ctx, &out), ShouldBeNil)
				So(exists(filepath.Join(dir, "again.png")), ShouldBeTrue)

				r = cmdReplot.CommandRun().(*replotRun)
				So(r.GetFlags().Parse([]string{"-d", filepath.Join(dir, "covRna_results.npy"), "-p", "npy.svg"}), ShouldBeNil)
				So(r.innerRun(ctx, &out), ShouldBeNil)
				So(exists(filepath.Join(dir, "npy.svg")), ShouldBeTrue)

				r = cmdReplot.CommandRun().(*replotRun)
				So(r.GetFlags().Parse([]string{"-d", csvFile, "-skip", "4"}), ShouldBeNil)
				So(r.innerRun(ctx, &out), ShouldErrLike, "nothing left")
			})
		})

		Convey("validates flags", func() {
			So(c.GetFlags().Parse([]string{"-m", "2"}), ShouldBeNil)
			So(c.innerRun(ctx, []string{dir}, &bytes.Buffer{}), ShouldErrLike, "-m")

			c = cmdCovRna.CommandRun().(*covRnaRun)
			So(c.GetFlags().Parse([]string{"-b", "0"}), ShouldBeNil)
			So(c.innerRun(ctx, []string{dir}, &bytes.Buffer{}), ShouldErrLike, "-b")
		})

		Convey("fails when nothing can be measured", func() {
			So(c.GetFlags().Parse([]string{"-s"}), ShouldBeNil)
			So(c.innerRun(ctx, []string{t.TempDir()}, &bytes.Buffer{}), ShouldErrLike, "no snapshot could be measured")
		})
	})
}

func TestTxnRnaScatter(t *testing.T) {
	t.Parallel()
	Convey("txnrna scatter mode", t, func() {
		out := t.TempDir()
		var dirs []string
		for i, v := range []float64{10, 20} {
			d := filepath.Join(out, fmt.Sprintf("run%d", i))
			So(os.MkdirAll(d, 0755), ShouldBeNil)
			So(snapshot.Save(snapshot.ExtraFile(d, snapshot.Transcription), flat(v)), ShouldBeNil)
			So(snapshot.Save(snapshot.ExtraFile(d, snapshot.RNA), flat(v/10)), ShouldBeNil)
			dirs = append(dirs, "-S", d)
		}

		c := cmdTxnRna.CommandRun().(*txnRnaRun)
		csvFile := filepath.Join(out, "scatter.csv")
		args := append(dirs, "-s", "-d", csvFile, "-p", filepath.Join(out, "scatter.svg"))
		So(c.GetFlags().Parse(args), ShouldBeNil)
		So(c.innerRun(context.Background(), nil, &bytes.Buffer{}), ShouldBeNil)

		data, err := os.ReadFile(csvFile)
		So(err, ShouldBeNil)
		So(strings.Split(strings.TrimSpace(string(data)), "\r\n"), ShouldResemble, []string{
			"SnapshotNumber,X,Y", "0,10,1", "1,20,2",
		})
		So(exists(filepath.Join(out, "scatter.svg")), ShouldBeTrue)
	})
}

func TestTimecourse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	Convey("timecourse", t, func() {
		dir := t.TempDir()
		writeSequence(t, dir, snapshot.DNA, 9, 9, 9)
		writeSequence(t, dir, snapshot.RNA, 1, 2, 3)
		writeSequence(t, dir, snapshot.Transcription, 4, 5, 6)
		c := cmdTimecourse.CommandRun().(*timecourseRun)

		Convey("writes the merged channels", func() {
			So(c.GetFlags().Parse([]string{"-s", "-t", "0.5", "-actinomycin-D", "1"}), ShouldBeNil)
			So(c.innerRun(ctx, []string{dir}, &bytes.Buffer{}), ShouldBeNil)

			data, err := os.ReadFile(filepath.Join(dir, "covRnaTxnTime_results.csv"))
			So(err, ShouldBeNil)
			So(strings.Split(strings.TrimSpace(string(data)), "\r\n"), ShouldResemble, []string{
				"SnapshotNumber,CoV(DNA),RNA,Transcription", "0,0,1,4", "1,0,2,5", "2,0,3,6",
			})
			So(exists(filepath.Join(dir, "covRnaTxnTime_plot.svg")), ShouldBeTrue)
		})

		Convey("rejects explicit inputs", func() {
			So(c.GetFlags().Parse([]string{"-X", "a.pgm"}), ShouldBeNil)
			So(c.innerRun(ctx, []string{dir}, &bytes.Buffer{}), ShouldErrLike, "not supported")
		})

		Convey("needs the input directory", func() {
			So(c.innerRun(ctx, nil, &bytes.Buffer{}), ShouldErrLike, "input directory")
		})
	})
}

func TestBlur(t *testing.T) {
	t.Parallel()
	Convey("blur", t, func() {
		dir := t.TempDir()
		writeSequence(t, dir, snapshot.DNA, 10, 20)
		c := cmdBlur.CommandRun().(*blurRun)

		Convey("writes blurred copies", func() {
			outDir := filepath.Join(dir, "blurred")
			So(c.GetFlags().Parse([]string{"-o", outDir, "-b", "5"}), ShouldBeNil)
			var out bytes.Buffer
			So(c.innerRun(context.Background(), []string{snapshot.Pattern(dir, snapshot.DNA)}, &out), ShouldBeNil)
			So(strings.Count(out.String(), ">["), ShouldEqual, 2)

			m, err := snapshot.Load(filepath.Join(outDir, "microemulsion_DNA_1_1.00.pgm"))
			So(err, ShouldBeNil)
			So(m.At(0, 0), ShouldEqual, 20)
		})

		Convey("never overwrites its inputs", func() {
			So(c.GetFlags().Parse([]string{"-o", dir}), ShouldBeNil)
			err := c.innerRun(context.Background(), []string{snapshot.Pattern(dir, snapshot.DNA)}, &bytes.Buffer{})
			So(err, ShouldErrLike, "refusing to overwrite")
		})

		Convey("needs an output directory", func() {
			So(c.innerRun(context.Background(), []string{"a.pgm"}, &bytes.Buffer{}), ShouldErrLike, "-o")
		})
	})
}
