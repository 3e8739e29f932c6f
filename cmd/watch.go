package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/YoungY620/dsplit/dataset"
	"github.com/YoungY620/dsplit/watch"
)

// relevantInput reports whether a change to path can alter the split.
func relevantInput(ignoreExtCase bool) func(string) bool {
	exts := append([]string{dataset.LabelExt}, dataset.ImageExts...)
	return func(path string) bool {
		name := filepath.Base(path)
		if strings.HasPrefix(name, ".") {
			return false
		}
		ext := filepath.Ext(name)
		if ignoreExtCase {
			ext = strings.ToLower(ext)
		}
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
		return false
	}
}

var notifyContext = signal.NotifyContext

// watch re-runs the full split whenever the inputs change, until ctx ends or
// SIGINT/SIGTERM arrives. A failed re-run is logged and watching continues.
func (r *runner) watch(ctx context.Context) error {
	ctx, stop := notifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := r.log.WithComponent("watch")
	w, err := watch.New(
		[]string{r.cfg.ImagesDir, r.cfg.LabelsDir},
		watch.Options{
			Debounce: r.cfg.Watch.Debounce(),
			MaxWait:  r.cfg.Watch.MaxWait(),
			Accept:   relevantInput(r.cfg.IgnoreExtCase),
			Log:      log,
		},
		func(files []string) {
			log.Infof("%d input files changed, re-splitting", len(files))
			log.Debugf("Changed files: %v", files)
			if err := r.splitOnce(); err != nil {
				log.Errorf("Re-split failed: %v", err)
			}
		},
	)
	if err != nil {
		return err
	}
	defer w.Close()

	log.Infof("Watching %s and %s (Ctrl+C to stop)", r.cfg.ImagesDir, r.cfg.LabelsDir)
	if err := w.Run(ctx); err != nil {
		return err
	}
	log.Infof("Shutting down...")
	return nil
}
