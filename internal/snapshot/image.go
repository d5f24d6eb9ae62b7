package snapshot

import (
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gonum/matrix/mat64"
	"github.com/spakin/netpbm"
	"go.chromium.org/luci/common/errors"
)

func isNetpbm(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pgm", ".ppm", ".pbm", ".pnm", ".pam":
		return true
	}
	return false
}

// Load reads the image at path as a rows x cols matrix of 8-bit gray levels.
func Load(path string) (*mat64.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotate(err, "load snapshot").Err()
	}
	defer f.Close()

	var img image.Image
	if isNetpbm(path) {
		img, err = netpbm.Decode(f, &netpbm.DecodeOptions{Target: netpbm.PGM})
	} else {
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, errors.Annotate(err, "load snapshot %s", path).Err()
	}
	return toGray(img, path)
}

func toGray(img image.Image, path string) (*mat64.Dense, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, errors.Reason("load snapshot %s: empty image", path).Err()
	}
	m := mat64.NewDense(b.Dy(), b.Dx(), nil)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			m.Set(y-b.Min.Y, x-b.Min.X, float64(g.Y))
		}
	}
	return m, nil
}

// Gray converts m to an 8-bit image, rounding and clamping to [0,255].
func Gray(m *mat64.Dense) *image.Gray {
	rows, cols := m.Dims()
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := math.Round(m.At(y, x))
			v = math.Max(0, math.Min(255, v))
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	return img
}

// Save writes m as a plain PGM, or as a PNG when path ends in ".png".
func Save(path string, m *mat64.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Annotate(err, "save snapshot").Err()
	}

	img := Gray(m)
	if strings.EqualFold(filepath.Ext(path), ".png") {
		err = png.Encode(f, img)
	} else {
		err = netpbm.Encode(f, img, &netpbm.EncodeOptions{
			Format:   netpbm.PGM,
			MaxValue: 255,
			Plain:    true,
		})
	}
	if err != nil {
		f.Close()
		return errors.Annotate(err, "save snapshot %s", path).Err()
	}
	if err := f.Close(); err != nil {
		return errors.Annotate(err, "save snapshot %s", path).Err()
	}
	return nil
}
