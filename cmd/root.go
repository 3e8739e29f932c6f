package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YoungY620/dsplit/logging"
)

// Version is set by main.go from build flags
var Version = "dev"

type rootOptions struct {
	configPath    string
	imagesDir     string
	labelsDir     string
	trainRatio    float64
	seed          int64
	ignoreExtCase bool
	logLevel      string
	eventsFile    string
	watch         bool
	printConfig   bool
}

// NewRootCommand builds the dsplit command with fresh flag state.
func NewRootCommand() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "dsplit",
		Short: "Split an image/label dataset into train and valid sets",
		Long: `dsplit pairs every .jpg/.jpeg image with the .txt label of the same name,
shuffles the pairs with a fixed seed and copies them into

  <parent of images_dir>/train/{images,labels}
  <parent of images_dir>/valid/{images,labels}

Images without a label are skipped with a warning. The same inputs and seed
always produce the same split.`,
		Example: `  dsplit --images_dir data/images --labels_dir data/labels
  dsplit --images_dir data/images --labels_dir data/labels --train_ratio 0.9 --seed 7
  dsplit -c dsplit.yaml --watch`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "YAML config file (flags override its values)")
	f.StringVar(&o.imagesDir, "images_dir", "", "directory with .jpg/.jpeg images (required)")
	f.StringVar(&o.labelsDir, "labels_dir", "", "directory with .txt labels named after the images (required)")
	f.Float64Var(&o.trainRatio, "train_ratio", 0.8, "fraction of pairs assigned to train, 0..1")
	f.Int64Var(&o.seed, "seed", 42, "seed for the deterministic shuffle")
	f.BoolVar(&o.ignoreExtCase, "ignore_ext_case", false, "also accept upper/mixed case extensions such as .JPG")
	f.StringVar(&o.logLevel, "log-level", "", "log level: debug/info/warn/error/silent")
	f.StringVar(&o.eventsFile, "events", "", "append a JSON-lines audit log of the run to this file")
	f.BoolVar(&o.watch, "watch", false, "keep running and re-split whenever the inputs change")
	f.BoolVar(&o.printConfig, "print-config", false, "print the resolved configuration and exit")

	return cmd
}

// Execute runs the root command. Signals keep their default behaviour
// except in watch mode.
func Execute() error {
	return NewRootCommand().Execute()
}

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	Version = v
}

func (o *rootOptions) run(cmd *cobra.Command) error {
	cfg, log, err := o.loadConfigAndSetup(cmd)
	if err != nil {
		return err
	}

	if o.printConfig {
		fmt.Fprint(cmd.OutOrStdout(), cfg.PrettyYAML())
		return nil
	}

	r, err := newRunner(cfg, log)
	if err != nil {
		return err
	}
	defer r.close()

	if log.Level() < logging.LevelSilent {
		PrintSettings(cmd.OutOrStdout(), cfg)
	}

	if err := r.splitOnce(); err != nil {
		return err
	}
	if !cfg.Watch.Enabled {
		return nil
	}
	return r.watch(cmd.Context())
}
