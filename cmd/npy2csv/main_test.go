package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gonum/matrix/mat64"
	. "github.com/smartystreets/goconvey/convey"
	. "go.chromium.org/luci/common/testing/assertions"

	mio "github.com/KyungWonPark/Microemulsion/internal/io"
)

func TestParseArgs(t *testing.T) {
	t.Parallel()
	Convey("parseArgs", t, func() {
		o, err := parseArgs([]string{"out/rna_results.npy"}, &bytes.Buffer{})
		So(err, ShouldBeNil)
		So(o.output, ShouldEqual, "out/rna_results.csv")
		So(o.keys, ShouldBeEmpty)

		o, err = parseArgs([]string{"-o", "x.csv", "-keys", "a,b", "in.npy"}, &bytes.Buffer{})
		So(err, ShouldBeNil)
		So(o.output, ShouldEqual, "x.csv")
		So(o.keys, ShouldResemble, []string{"a", "b"})

		_, err = parseArgs(nil, &bytes.Buffer{})
		So(err, ShouldErrLike, "exactly one input file")
	})
}

func TestRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	Convey("run", t, func() {
		dir := t.TempDir()
		in := filepath.Join(dir, "results.npy")
		So(mio.Mat64toNpy(in, mat64.NewDense(2, 3, []float64{0, 1.5, 2, 1, 2.5, 3})), ShouldBeNil)

		Convey("guesses curve headers", func() {
			o := &options{input: in, output: filepath.Join(dir, "results.csv")}
			So(run(ctx, o), ShouldBeNil)
			data, err := os.ReadFile(o.output)
			So(err, ShouldBeNil)
			So(strings.HasPrefix(string(data), "SnapshotNumber,X,Y"), ShouldBeTrue)
		})

		Convey("uses the given keys", func() {
			o := &options{input: in, output: filepath.Join(dir, "k.csv"), keys: []string{"t", "a", "b"}}
			So(run(ctx, o), ShouldBeNil)
			_, keys, err := mio.CSVtoMat64(o.output)
			So(err, ShouldBeNil)
			So(keys, ShouldResemble, []string{"t", "a", "b"})
		})

		Convey("rejects a key count that does not match", func() {
			o := &options{input: in, output: filepath.Join(dir, "bad.csv"), keys: []string{"t"}}
			So(run(ctx, o), ShouldErrLike, "1 keys for 3 columns")
		})
	})
}
