package dataset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/YoungY620/dsplit/report"
)

const (
	imagesSubdir = "images"
	labelsSubdir = "labels"
)

// Layout is the output tree, rooted at the parent of the images directory.
type Layout struct {
	Base string
}

// NewLayout derives the layout from the images directory.
func NewLayout(imagesDir string) Layout {
	return Layout{Base: filepath.Dir(filepath.Clean(imagesDir))}
}

// ImagesDir is <base>/<split>/images.
func (l Layout) ImagesDir(s SplitName) string {
	return filepath.Join(l.Base, string(s), imagesSubdir)
}

// LabelsDir is <base>/<split>/labels.
func (l Layout) LabelsDir(s SplitName) string {
	return filepath.Join(l.Base, string(s), labelsSubdir)
}

// Dirs lists the four output directories.
func (l Layout) Dirs() []string {
	return []string{
		l.ImagesDir(Train),
		l.LabelsDir(Train),
		l.ImagesDir(Valid),
		l.LabelsDir(Valid),
	}
}

// Ensure creates the four output directories. Existing ones are fine.
func (l Layout) Ensure(sink report.Sink) error {
	if sink == nil {
		sink = report.Discard
	}
	for _, d := range l.Dirs() {
		if err := os.MkdirAll(d, 0755); err != nil {
			return &IOError{Op: "mkdir", Path: d, Err: err}
		}
		sink.Emit(report.Event{Kind: report.KindDirReady, Path: d})
	}
	return nil
}

// Materialize ensures the layout and copies the train batch, then the valid
// batch. The first failure aborts; files already copied are left in place.
func Materialize(layout Layout, split Split, sink report.Sink) error {
	if sink == nil {
		sink = report.Discard
	}
	sink.Emit(report.Event{Kind: report.KindLayout, Path: layout.Base})
	if err := layout.Ensure(sink); err != nil {
		return err
	}

	for _, name := range []SplitName{Train, Valid} {
		pairs := split.Pairs(name)
		sink.Emit(report.Event{Kind: report.KindCopyStart, Split: string(name), Count: len(pairs)})
		for _, p := range pairs {
			if err := copyPair(layout, name, p); err != nil {
				return err
			}
			sink.Emit(report.Event{Kind: report.KindCopied, Split: string(name), Image: p.Image, Label: p.Label})
		}
	}
	return nil
}

func copyPair(layout Layout, name SplitName, p Pair) error {
	if err := copyFile(p.Image, filepath.Join(layout.ImagesDir(name), filepath.Base(p.Image))); err != nil {
		return err
	}
	return copyFile(p.Label, filepath.Join(layout.LabelsDir(name), filepath.Base(p.Label)))
}

var errSameFile = errors.New("source and destination are the same file")

// copyFile copies content, permission bits and modification time of src to
// dst, replacing dst if it exists.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return &IOError{Op: "copy", Path: src, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &IOError{Op: "copy", Path: src, Err: fmt.Errorf("not a regular file (%s)", info.Mode().Type())}
	}
	if existing, err := os.Stat(dst); err == nil {
		if os.SameFile(info, existing) {
			return &IOError{Op: "copy", Path: dst, Err: errSameFile}
		}
		// a read-only copy from an earlier run cannot be opened for writing
		if err := os.Remove(dst); err != nil {
			return &IOError{Op: "copy", Path: dst, Err: err}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &IOError{Op: "copy", Path: dst, Err: err}
	}

	in, err := os.Open(src)
	if err != nil {
		return &IOError{Op: "copy", Path: src, Err: err}
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return &IOError{Op: "copy", Path: dst, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return &IOError{Op: "copy", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return &IOError{Op: "copy", Path: dst, Err: err}
	}

	// OpenFile applies the umask
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return &IOError{Op: "chmod", Path: dst, Err: err}
	}
	mtime := info.ModTime()
	if err := os.Chtimes(dst, mtime, mtime); err != nil {
		return &IOError{Op: "chtimes", Path: dst, Err: err}
	}
	return nil
}
