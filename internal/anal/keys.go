package anal

import "go.chromium.org/luci/common/errors"

// DefaultResultsKeys names the columns of a headerless results table by its
// width: three columns come from a curve analysis, four from a timecourse.
func DefaultResultsKeys(cols int) ([]string, error) {
	switch cols {
	case 3:
		return []string{"SnapshotNumber", "X", "Y"}, nil
	case 4:
		return []string{"SnapshotNumber", "CoV(DNA)", "RNA", "Transcription"}, nil
	}
	return nil, errors.Reason("%d columns, want 3 or 4", cols).Err()
}
