package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YoungY620/dsplit/config"
	"github.com/YoungY620/dsplit/dataset"
	"github.com/YoungY620/dsplit/lock"
	"github.com/YoungY620/dsplit/logging"
	"github.com/YoungY620/dsplit/report"
)

// loadConfigAndSetup loads the config file, applies the flags that were set
// and builds the logger.
func (o *rootOptions) loadConfigAndSetup(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	var ov config.Overrides
	if flags.Changed("images_dir") {
		ov.ImagesDir = &o.imagesDir
	}
	if flags.Changed("labels_dir") {
		ov.LabelsDir = &o.labelsDir
	}
	if flags.Changed("train_ratio") {
		ov.TrainRatio = &o.trainRatio
	}
	if flags.Changed("seed") {
		ov.Seed = &o.seed
	}
	if flags.Changed("ignore_ext_case") {
		ov.IgnoreExtCase = &o.ignoreExtCase
	}
	if flags.Changed("log-level") {
		ov.LogLevel = &o.logLevel
	}
	if flags.Changed("events") {
		ov.EventsFile = &o.eventsFile
	}
	if flags.Changed("watch") {
		ov.Watch = &o.watch
	}
	if err := cfg.ApplyOverrides(ov); err != nil {
		return nil, nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log := logging.New(
		logging.WithLevel(cfg.Level()),
		logging.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	)
	log.Debugf("Config loaded (source=%q):\n%s", cfg.Source(), cfg.PrettyYAML())
	return cfg, log, nil
}

// runner owns the sinks of one process and performs split runs.
type runner struct {
	cfg    *config.Config
	log    *logging.Logger
	sink   report.Sink
	events *report.JSONL
}

// newRunner checks the inputs before anything is created on disk, then opens
// the optional events file.
func newRunner(cfg *config.Config, log *logging.Logger) (*runner, error) {
	if err := dataset.CheckInputs(cfg.ImagesDir, cfg.LabelsDir); err != nil {
		return nil, err
	}

	r := &runner{cfg: cfg, log: log}
	sinks := []report.Sink{report.NewLogSink(log)}
	if cfg.EventsFile != "" {
		ev, err := report.OpenJSONL(cfg.EventsFile)
		if err != nil {
			return nil, err
		}
		log.Debugf("Writing events to %s (run %s)", cfg.EventsFile, ev.RunID())
		r.events = ev
		sinks = append(sinks, ev)
	}
	r.sink = report.Multi(sinks...)
	return r, nil
}

func (r *runner) options() dataset.Options {
	return dataset.Options{
		ImagesDir:     r.cfg.ImagesDir,
		LabelsDir:     r.cfg.LabelsDir,
		TrainRatio:    r.cfg.TrainRatio,
		Seed:          r.cfg.Seed,
		IgnoreExtCase: r.cfg.IgnoreExtCase,
	}
}

// splitOnce holds the output lock for the duration of one full run.
func (r *runner) splitOnce() error {
	if err := dataset.CheckInputs(r.cfg.ImagesDir, r.cfg.LabelsDir); err != nil {
		return err
	}
	layout := dataset.NewLayout(r.cfg.ImagesDir)
	lk, err := lock.Acquire(layout.Base)
	if err != nil {
		return err
	}
	defer lk.Release()

	if _, err := dataset.Run(r.options(), r.sink); err != nil {
		return fmt.Errorf("split failed: %w", err)
	}
	if r.events != nil {
		if err := r.events.Err(); err != nil {
			r.log.Warnf("Events file %s is incomplete: %v", r.cfg.EventsFile, err)
		}
	}
	return nil
}

func (r *runner) close() {
	if r.events != nil {
		if err := r.events.Close(); err != nil {
			r.log.Warnf("Failed to close events file: %v", err)
		}
	}
}
