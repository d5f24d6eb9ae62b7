package io

import (
	"path/filepath"
	"testing"

	"github.com/gonum/matrix/mat64"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNpy(t *testing.T) {
	t.Parallel()
	Convey("results survive an npy export", t, func() {
		path := filepath.Join(t.TempDir(), "results.npy")
		m := mat64.NewDense(3, 3, []float64{
			0, 10.5, 0.1,
			1, 11.5, 0.2,
			2, 12.5, 0.3,
		})
		So(Mat64toNpy(path, m), ShouldBeNil)

		got, err := NpytoMat64(path)
		So(err, ShouldBeNil)
		r, c := got.Dims()
		So(r, ShouldEqual, 3)
		So(c, ShouldEqual, 3)
		So(got.At(2, 1), ShouldEqual, 12.5)
		So(got.At(1, 2), ShouldEqual, 0.2)
	})
}
