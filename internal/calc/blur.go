package calc

import (
	"math"

	"github.com/gonum/matrix/mat64"
	"go.chromium.org/luci/common/errors"
	"gonum.org/v1/gonum/floats"
)

// Fixed kernels used for the small odd sizes when sigma is derived from the size.
var smallGaussianTab = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// GaussianKernel returns the normalized 1-D kernel of size ksize with
// sigma = 0.3*((ksize-1)*0.5-1)+0.8.
func GaussianKernel(ksize int) []float64 {
	if k, ok := smallGaussianTab[ksize]; ok {
		return append([]float64(nil), k...)
	}

	sigma := 0.3*(float64(ksize-1)*0.5-1) + 0.8
	center := float64(ksize-1) / 2
	kernel := make([]float64, ksize)
	for i := range kernel {
		x := float64(i) - center
		kernel[i] = math.Exp(-x * x / (2 * sigma * sigma))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)

	return kernel
}

// reflect101 maps i into [0, n) mirroring around the edge pixels (gfedcb|abcdefgh|gfedcba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

func saturate(v float64) float64 {
	return math.Max(0, math.Min(255, math.RoundToEven(v)))
}

// GaussianBlur smooths the 8-bit image in with a ksize x ksize Gaussian and
// stores the result in out. in and out may be the same matrix.
func (p *PipeLine) GaussianBlur(in *mat64.Dense, out *mat64.Dense, ksize int) error {
	if ksize <= 0 || ksize%2 == 0 {
		return errors.Reason("GaussianBlur: kernel size must be odd and positive, got %d", ksize).Err()
	}

	rows, cols := in.Dims()
	outRows, outCols := out.Dims()
	if rows != outRows || cols != outCols {
		return errors.Reason("GaussianBlur: input is %d by %d but output is %d by %d", rows, cols, outRows, outCols).Err()
	}

	kernel := GaussianKernel(ksize)
	half := ksize / 2
	tmp := mat64.NewDense(rows, cols, nil)

	// Horizontal pass.
	p.rows("GaussianBlur/h", rows, func(r int) {
		src := in.RawRowView(r)
		dst := tmp.RawRowView(r)
		for c := 0; c < cols; c++ {
			var acc float64
			for j, w := range kernel {
				acc += w * src[reflect101(c+j-half, cols)]
			}
			dst[c] = acc
		}
	})

	// Vertical pass.
	p.rows("GaussianBlur/v", rows, func(r int) {
		dst := out.RawRowView(r)
		for c := 0; c < cols; c++ {
			var acc float64
			for j, w := range kernel {
				acc += w * tmp.At(reflect101(r+j-half, rows), c)
			}
			dst[c] = saturate(acc)
		}
	})

	return nil
}
