package dataset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/YoungY620/dsplit/report"
)

// Options are the parameters of one split run.
type Options struct {
	ImagesDir     string
	LabelsDir     string
	TrainRatio    float64
	Seed          int64
	IgnoreExtCase bool
}

// Result summarises a finished run.
type Result struct {
	Layout    Layout
	Discovery *Discovery
	Split     Split
}

// CheckInputs verifies both input directories exist. It touches nothing.
func CheckInputs(imagesDir, labelsDir string) error {
	if err := checkDir("images_dir", imagesDir); err != nil {
		return err
	}
	return checkDir("labels_dir", labelsDir)
}

func checkDir(field, path string) error {
	if path == "" {
		return &ConfigError{Field: field, Msg: "is required"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ConfigError{Field: field, Path: path, Msg: "does not exist"}
		}
		return &ConfigError{Field: field, Path: path, Msg: "is not accessible (" + err.Error() + ")"}
	}
	if !info.IsDir() {
		return &ConfigError{Field: field, Path: path, Msg: "is not a directory"}
	}
	return nil
}

// CheckRatio accepts ratios in [0, 1].
func CheckRatio(ratio float64) error {
	if !(ratio >= 0 && ratio <= 1) {
		return &ConfigError{Field: "train_ratio", Msg: "must be between 0 and 1"}
	}
	return nil
}

// Run validates opts, then discovers, partitions and materializes the split.
// Configuration problems are reported before the filesystem is modified.
func Run(opts Options, sink report.Sink) (*Result, error) {
	if sink == nil {
		sink = report.Discard
	}
	if err := CheckRatio(opts.TrainRatio); err != nil {
		return nil, err
	}
	imagesDir, err := filepath.Abs(opts.ImagesDir)
	if err != nil {
		return nil, &ConfigError{Field: "images_dir", Path: opts.ImagesDir, Msg: err.Error()}
	}
	labelsDir, err := filepath.Abs(opts.LabelsDir)
	if err != nil {
		return nil, &ConfigError{Field: "labels_dir", Path: opts.LabelsDir, Msg: err.Error()}
	}
	if err := CheckInputs(imagesDir, labelsDir); err != nil {
		return nil, err
	}

	d, err := Discover(imagesDir, labelsDir, DiscoverOptions{IgnoreExtCase: opts.IgnoreExtCase}, sink)
	if err != nil {
		return nil, err
	}

	split := Partition(d.Pairs, opts.TrainRatio, NewRand(opts.Seed))
	emitPartition(sink, split)

	layout := NewLayout(imagesDir)
	if err := Materialize(layout, split, sink); err != nil {
		return nil, err
	}

	sink.Emit(report.Event{Kind: report.KindCompleted, Train: len(split.Train), Valid: len(split.Valid)})
	return &Result{Layout: layout, Discovery: d, Split: split}, nil
}
