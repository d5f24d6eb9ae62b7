package io

import (
	"github.com/gonum/matrix/mat64"
	"github.com/kshedden/gonpy"
	"go.chromium.org/luci/common/errors"
)

// Mat64toNpy writes mat64 matrix to Python numpy npy binary file
func Mat64toNpy(path string, matrix *mat64.Dense) error {
	rows, cols := matrix.Dims()

	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, matrix.RawRowView(i)...)
	}

	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return errors.Annotate(err, "Mat64toNpy: open %s", path).Err()
	}
	w.Shape = []int{rows, cols}
	w.Version = 2
	if err := w.WriteFloat64(data); err != nil {
		return errors.Annotate(err, "Mat64toNpy: write %s", path).Err()
	}

	return nil
}

// NpytoMat64 reads Python numpy npy binary file as mat64 matrix
func NpytoMat64(path string) (*mat64.Dense, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, errors.Annotate(err, "NpytoMat64: open %s", path).Err()
	}
	if len(r.Shape) != 2 {
		return nil, errors.Reason("NpytoMat64: %s has %d dimensions, want 2", path, len(r.Shape)).Err()
	}

	rows := r.Shape[0]
	cols := r.Shape[1]
	if rows == 0 || cols == 0 {
		return nil, errors.Reason("NpytoMat64: %s is empty", path).Err()
	}
	data, err := r.GetFloat64()
	if err != nil {
		return nil, errors.Annotate(err, "NpytoMat64: read %s", path).Err()
	}

	return mat64.NewDense(rows, cols, data), nil
}
