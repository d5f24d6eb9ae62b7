package calc

import (
	"context"
	"math"
	"testing"

	"github.com/gonum/matrix/mat64"
	. "github.com/smartystreets/goconvey/convey"
	. "go.chromium.org/luci/common/testing/assertions"
	"gonum.org/v1/gonum/floats"
)

func rowsOf(m *mat64.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = append([]float64(nil), m.RawRowView(i)...)
	}
	return out
}

func TestGaussianBlur(t *testing.T) {
	t.Parallel()
	p := Init(context.Background(), 3, true)

	Convey("GaussianBlur", t, func() {
		Convey("spreads an impulse with the 3x3 kernel", func() {
			in := mat64.NewDense(5, 5, nil)
			in.Set(2, 2, 255)
			out := mat64.NewDense(5, 5, nil)
			So(p.GaussianBlur(in, out, 3), ShouldBeNil)
			So(rowsOf(out), ShouldResemble, [][]float64{
				{0, 0, 0, 0, 0},
				{0, 16, 32, 16, 0},
				{0, 32, 64, 32, 0},
				{0, 16, 32, 16, 0},
				{0, 0, 0, 0, 0},
			})
		})

		Convey("mirrors around the border pixel", func() {
			in := mat64.NewDense(1, 3, []float64{0, 0, 255})
			out := mat64.NewDense(1, 3, nil)
			So(p.GaussianBlur(in, out, 3), ShouldBeNil)
			So(rowsOf(out), ShouldResemble, [][]float64{{0, 64, 128}})
		})

		Convey("keeps flat images flat, in place", func() {
			m := mat64.NewDense(4, 6, nil)
			for i := 0; i < 4; i++ {
				for j := 0; j < 6; j++ {
					m.Set(i, j, 200)
				}
			}
			So(p.GaussianBlur(m, m, 9), ShouldBeNil)
			So(mat64.Max(m), ShouldEqual, 200)
			So(mat64.Min(m), ShouldEqual, 200)
		})

		Convey("ksize 1 is the identity", func() {
			in := mat64.NewDense(2, 2, []float64{1, 2, 3, 4})
			out := mat64.NewDense(2, 2, nil)
			So(p.GaussianBlur(in, out, 1), ShouldBeNil)
			So(mat64.Equal(in, out), ShouldBeTrue)
		})

		Convey("rejects bad arguments", func() {
			in := mat64.NewDense(2, 2, nil)
			So(p.GaussianBlur(in, in, 4), ShouldErrLike, "odd and positive")
			So(p.GaussianBlur(in, in, 0), ShouldErrLike, "odd and positive")
			So(p.GaussianBlur(in, mat64.NewDense(3, 2, nil), 3), ShouldErrLike, "output is 3 by 2")
		})

		Convey("counts the dispatched rows", func() {
			pushed, popped := p.Counts()
			So(pushed, ShouldEqual, popped)
			So(pushed, ShouldBeGreaterThan, 0)
		})
	})
}

func TestGaussianKernel(t *testing.T) {
	t.Parallel()
	Convey("GaussianKernel", t, func() {
		So(GaussianKernel(3), ShouldResemble, []float64{0.25, 0.5, 0.25})

		k := GaussianKernel(9)
		So(k, ShouldHaveLength, 9)
		So(floats.Sum(k), ShouldAlmostEqual, 1, 1e-12)
		So(k[0], ShouldAlmostEqual, k[8], 1e-15)
		So(floats.MaxIdx(k), ShouldEqual, 4)
	})
}

func TestReflect101(t *testing.T) {
	t.Parallel()
	Convey("reflect101", t, func() {
		got := []int{}
		for i := -3; i < 8; i++ {
			got = append(got, reflect101(i, 5))
		}
		So(got, ShouldResemble, []int{3, 2, 1, 0, 1, 2, 3, 4, 3, 2, 1})
		So(reflect101(-2, 1), ShouldEqual, 0)
	})
}

func TestCov(t *testing.T) {
	t.Parallel()
	Convey("Cov uses the population standard deviation", t, func() {
		cov, mean := Cov(mat64.NewDense(2, 2, []float64{2, 4, 4, 6}))
		So(mean, ShouldEqual, 4)
		So(cov, ShouldAlmostEqual, math.Sqrt(2)/4, 1e-12)

		cov, mean = Cov(mat64.NewDense(1, 2, []float64{0, 0}))
		So(mean, ShouldEqual, 0)
		So(math.IsNaN(cov), ShouldBeTrue)
	})
}

func TestMovingAverage(t *testing.T) {
	t.Parallel()
	Convey("MovingAverage", t, func() {
		avg, err := MovingAverage([]float64{1, 2, 3, 4, 5}, 3)
		So(err, ShouldBeNil)
		So(avg, ShouldResemble, []float64{2, 3, 4})

		avg, err = MovingAverage([]float64{1, 2}, 1)
		So(err, ShouldBeNil)
		So(avg, ShouldResemble, []float64{1, 2})

		_, err = MovingAverage([]float64{1, 2}, 3)
		So(err, ShouldErrLike, "longer than the sequence")
		_, err = MovingAverage([]float64{1, 2}, 0)
		So(err, ShouldErrLike, "must be positive")
	})
}

func TestNearestEntry(t *testing.T) {
	t.Parallel()
	Convey("NearestEntry", t, func() {
		v, i := NearestEntry([]float64{0.5, 1, 1.5, 2}, 1.25)
		So(v, ShouldEqual, 1)
		So(i, ShouldEqual, 1)

		v, i = NearestEntry([]float64{0.5, 1, 1.5, 2}, 9)
		So(v, ShouldEqual, 2)
		So(i, ShouldEqual, 3)

		v, i = NearestEntry(nil, 1)
		So(i, ShouldEqual, -1)
		So(math.IsNaN(v), ShouldBeTrue)
	})
}
