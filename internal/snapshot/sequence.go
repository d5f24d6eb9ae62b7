// Package snapshot reads the image sequences the simulator writes.
package snapshot

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/facette/natsort"
	"go.chromium.org/luci/common/errors"
)

// Channels written by the simulator.
const (
	DNA           = "DNA"
	RNA           = "RNA"
	Transcription = "Transcription"
)

// Pattern returns the glob matching every snapshot of channel in dir.
func Pattern(dir, channel string) string {
	return filepath.Join(dir, "microemulsion_"+channel+"_*")
}

// ExtraFile returns the path of the extra snapshot of channel in dir.
func ExtraFile(dir, channel string) string {
	return filepath.Join(dir, "microemulsion_"+channel+"_EXTRA.pgm")
}

// Natsort sorts names in natural order, so "a_2" comes before "a_10".
func Natsort(names []string) []string {
	out := append([]string(nil), names...)
	sort.SliceStable(out, func(i, j int) bool {
		return natsort.Compare(out[i], out[j])
	})
	return out
}

// Expand returns the files matching pattern in natural order.
func Expand(pattern string) ([]string, error) {
	matches, err := doublestar.Glob(pattern)
	if err != nil {
		return nil, errors.Annotate(err, "expand %q", pattern).Err()
	}
	return Natsort(matches), nil
}

// ExpandSequence expands the patterns among inputs and returns the whole
// list in natural order. Entries without '*' are taken as they are.
func ExpandSequence(inputs []string) ([]string, error) {
	var seq []string
	for _, f := range inputs {
		if !strings.Contains(f, "*") {
			seq = append(seq, f)
			continue
		}
		matches, err := Expand(f)
		if err != nil {
			return nil, err
		}
		seq = append(seq, matches...)
	}
	return Natsort(seq), nil
}
