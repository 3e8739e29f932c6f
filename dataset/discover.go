// Package dataset discovers image/label pairs, partitions them into train and
// valid splits and copies them into the output tree.
package dataset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/YoungY620/dsplit/report"
)

// LabelExt is the extension of label files.
const LabelExt = ".txt"

// ImageExts lists the accepted image extensions.
var ImageExts = []string{".jpg", ".jpeg"}

// Pair is an image and the label file sharing its stem.
type Pair struct {
	Image string
	Label string
}

// Stem returns the image filename without its extension.
func (p Pair) Stem() string {
	return stem(filepath.Base(p.Image))
}

// DiscoverOptions tunes candidate selection.
type DiscoverOptions struct {
	// IgnoreExtCase also accepts upper and mixed case extensions (".JPG").
	IgnoreExtCase bool
}

// Discovery is the outcome of scanning the input directories.
type Discovery struct {
	Images  []string // every candidate image, sorted
	Pairs   []Pair   // images with a label, in Images order
	Skipped []Pair   // images without a label; Label is the path that was missing
}

// Discover lists candidate images in imagesDir, sorts them by full path and
// pairs each with <labelsDir>/<stem>.txt. Images without a label are skipped
// and reported; they are not an error.
func Discover(imagesDir, labelsDir string, opts DiscoverOptions, sink report.Sink) (*Discovery, error) {
	if sink == nil {
		sink = report.Discard
	}

	images, err := listImages(imagesDir, opts)
	if err != nil {
		return nil, err
	}
	sink.Emit(report.Event{Kind: report.KindDiscovered, Path: imagesDir, Count: len(images)})

	d := &Discovery{Images: images}
	for _, img := range images {
		label := filepath.Join(labelsDir, stem(filepath.Base(img))+LabelExt)
		ok, err := isFile(label)
		if err != nil {
			return nil, &IOError{Op: "stat", Path: label, Err: err}
		}
		if !ok {
			d.Skipped = append(d.Skipped, Pair{Image: img, Label: label})
			sink.Emit(report.Event{Kind: report.KindSkipped, Image: img, Label: label})
			continue
		}
		d.Pairs = append(d.Pairs, Pair{Image: img, Label: label})
	}

	sink.Emit(report.Event{Kind: report.KindPaired, Count: len(d.Pairs)})
	return d, nil
}

func listImages(dir string, opts DiscoverOptions) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &IOError{Op: "list", Path: dir, Err: err}
	}

	var images []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || !matchesImageExt(name, opts.IgnoreExtCase) {
			continue
		}
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			// dangling symlink or removed mid-listing
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, &IOError{Op: "stat", Path: path, Err: err}
		}
		if info.IsDir() {
			continue
		}
		images = append(images, path)
	}
	sort.Strings(images)
	return images, nil
}

func matchesImageExt(name string, ignoreCase bool) bool {
	ext := filepath.Ext(name)
	if ignoreCase {
		ext = strings.ToLower(ext)
	}
	for _, want := range ImageExts {
		if ext == want {
			return true
		}
	}
	return false
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// isFile reports whether path exists and is not a directory.
func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}
