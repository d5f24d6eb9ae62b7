package io

import (
	"encoding/csv"
	"fmt"
	stdio "io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/gonum/matrix/mat64"
	"go.chromium.org/luci/common/errors"
)

// CsvWriter writes a header row followed by data rows
type CsvWriter struct {
	Keys []string
	Rows [][]string
}

// NewCsvWriter returns a CsvWriter for keys and rows
func NewCsvWriter(keys []string, rows [][]string) *CsvWriter {
	return &CsvWriter{Keys: keys, Rows: rows}
}

// Encode writes the table to w. Lines end in CRLF, as spreadsheet tools expect.
func (c *CsvWriter) Encode(w stdio.Writer) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if len(c.Keys) > 0 {
		if err := cw.Write(c.Keys); err != nil {
			return err
		}
	}
	if err := cw.WriteAll(c.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// Write saves the table as a csv file
func (c *CsvWriter) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Annotate(err, "write csv").Err()
	}
	if err := c.Encode(f); err != nil {
		f.Close()
		return errors.Annotate(err, "write csv %s", path).Err()
	}
	if err := f.Close(); err != nil {
		return errors.Annotate(err, "write csv %s", path).Err()
	}
	return nil
}

// FormatFloat renders v in its shortest form
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FloatRows formats every value of rows with FormatFloat
func FloatRows(rows [][]float64) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = make([]string, len(r))
		for j, v := range r {
			out[i][j] = FormatFloat(v)
		}
	}
	return out
}

// Mat64toCSV saves Mat64 as a csv file with keys as its header
func Mat64toCSV(path string, matrix *mat64.Dense, keys []string) error {
	rows, cols := matrix.Dims()
	if keys != nil && len(keys) != cols {
		return errors.Reason("Mat64toCSV: %d keys for %d columns", len(keys), cols).Err()
	}

	stride := runtime.NumCPU()
	parsed := make([][]string, rows)

	for row := 0; row < rows; row += stride {
		var wg sync.WaitGroup
		jobMark := stride

		if row+stride >= rows {
			jobMark = rows - row
		}

		wg.Add(jobMark)
		for offset := 0; offset < jobMark; offset++ {
			go parseLine0(matrix, parsed, row+offset, &wg)
		}
		wg.Wait()
	}

	return NewCsvWriter(keys, parsed).Write(path)
}

func parseLine0(matrix *mat64.Dense, parsed [][]string, row int, wg *sync.WaitGroup) {
	_, cols := matrix.Dims()

	line := make([]string, cols)
	for i := 0; i < cols; i++ {
		line[i] = FormatFloat(matrix.At(row, i))
	}
	parsed[row] = line

	wg.Done()
}

// CSVtoMat64 reads a csv file with a header row into a Mat64
func CSVtoMat64(path string) (*mat64.Dense, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Annotate(err, "read csv").Err()
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, errors.Annotate(err, "read csv %s", path).Err()
	}
	if len(records) < 2 {
		return nil, nil, errors.Reason("read csv %s: no data rows", path).Err()
	}

	keys, records := records[0], records[1:]
	rows, cols := len(records), len(keys)
	matrix := mat64.NewDense(rows, cols, nil)
	rowErrs := make([]error, rows)

	workers := runtime.NumCPU()
	order := make(chan int, workers)
	var wg sync.WaitGroup

	wg.Add(rows)

	for i := 0; i < workers; i++ {
		go parseLine1(records, matrix, rowErrs, order, &wg)
	}

	for i := 0; i < rows; i++ {
		order <- i
	}

	wg.Wait()
	close(order)

	for _, err := range rowErrs {
		if err != nil {
			return nil, nil, errors.Annotate(err, "read csv %s", path).Err()
		}
	}

	return matrix, keys, nil
}

func parseLine1(records [][]string, matrix *mat64.Dense, rowErrs []error, order <-chan int, wg *sync.WaitGroup) {
	_, cols := matrix.Dims()

	for index := range order {
		if len(records[index]) != cols {
			rowErrs[index] = fmt.Errorf("line %d: %d fields, want %d", index+2, len(records[index]), cols)
			wg.Done()
			continue
		}
		for i := 0; i < cols; i++ {
			str := strings.TrimSpace(records[index][i])
			value, err := strconv.ParseFloat(str, 64)
			if err != nil {
				rowErrs[index] = fmt.Errorf("line %d: %w", index+2, err)
				break
			}

			matrix.Set(index, i, value)
		}

		wg.Done()
	}
}
