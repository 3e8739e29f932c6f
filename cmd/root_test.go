package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoungY620/dsplit/config"
	"github.com/YoungY620/dsplit/dataset"
)

type dataDirs struct {
	root, images, labels string
}

func setupData(t *testing.T, images, labels []string) dataDirs {
	t.Helper()
	root := t.TempDir()
	d := dataDirs{root: root, images: filepath.Join(root, "images"), labels: filepath.Join(root, "labels")}
	require.NoError(t, os.MkdirAll(d.images, 0755))
	require.NoError(t, os.MkdirAll(d.labels, 0755))
	for _, n := range images {
		require.NoError(t, os.WriteFile(filepath.Join(d.images, n), []byte(n), 0644))
	}
	for _, n := range labels {
		require.NoError(t, os.WriteFile(filepath.Join(d.labels, n), []byte(n), 0644))
	}
	return d
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := NewRootCommand()
	c.SetArgs(args)
	c.SetOut(&out)
	c.SetErr(&out)
	err := c.Execute()
	return out.String(), err
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestSplitFromFlags(t *testing.T) {
	d := setupData(t, []string{"a.jpg", "b.jpg", "c.jpg"}, []string{"a.txt", "b.txt"})

	out, err := execute(t, "--images_dir", d.images, "--labels_dir", d.labels)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Parameters:")
	assert.Contains(t, out, "Found 3 image files")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, filepath.Join(d.labels, "c.txt"))
	assert.Contains(t, out, "Valid image/label pairs: 2")
	assert.Contains(t, out, "Split and copy completed: 1 train, 1 valid")

	assert.Equal(t, 1, countFiles(t, filepath.Join(d.root, "train", "images")))
	assert.Equal(t, 1, countFiles(t, filepath.Join(d.root, "train", "labels")))
	assert.Equal(t, 1, countFiles(t, filepath.Join(d.root, "valid", "images")))
	assert.Equal(t, 1, countFiles(t, filepath.Join(d.root, "valid", "labels")))
}

func TestMissingImagesDirFailsBeforeWriting(t *testing.T) {
	d := setupData(t, nil, nil)
	missing := filepath.Join(d.root, "nope")
	events := filepath.Join(d.root, "events.jsonl")

	_, err := execute(t, "--images_dir", missing, "--labels_dir", d.labels, "--events", events)
	var cfgErr *dataset.ConfigError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Contains(t, err.Error(), missing)

	assert.NoDirExists(t, filepath.Join(d.root, "train"))
	assert.NoFileExists(t, events)
}

func TestRequiredDirs(t *testing.T) {
	_, err := execute(t, "--labels_dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "images_dir")
}

func TestRejectsPositionalArgs(t *testing.T) {
	_, err := execute(t, "extra")
	assert.Error(t, err)
}

func TestConfigFileWithFlagOverride(t *testing.T) {
	d := setupData(t, []string{"a.jpg", "b.jpg"}, []string{"a.txt", "b.txt"})
	cfgPath := filepath.Join(d.root, "dsplit.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("images_dir: images\nlabels_dir: labels\ntrain_ratio: 0\nlog_level: warn\n"), 0644))

	out, err := execute(t, "-c", cfgPath, "--train_ratio", "1")
	require.NoError(t, err, out)

	assert.Equal(t, 2, countFiles(t, filepath.Join(d.root, "train", "images")))
	assert.Equal(t, 0, countFiles(t, filepath.Join(d.root, "valid", "images")))
	assert.NotContains(t, out, "Found 2 image files", "info lines are below the configured level")
}

func TestPrintConfig(t *testing.T) {
	d := setupData(t, nil, nil)

	out, err := execute(t, "--images_dir", d.images, "--labels_dir", d.labels, "--seed", "7", "--print-config")
	require.NoError(t, err)

	assert.Contains(t, out, "seed: 7")
	assert.Contains(t, out, "train_ratio: 0.8")
	assert.NoDirExists(t, filepath.Join(d.root, "train"))
}

func TestEventsFile(t *testing.T) {
	d := setupData(t, []string{"a.jpg"}, []string{"a.txt"})
	events := filepath.Join(d.root, "events.jsonl")

	out, err := execute(t, "--images_dir", d.images, "--labels_dir", d.labels, "--events", events, "--log-level", "silent")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(events)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Contains(t, lines[0], `"kind":"discovered"`)
	assert.Contains(t, lines[len(lines)-1], `"kind":"completed"`)
}

func TestSameSeedSameSplit(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var images, labels []string
	for _, n := range names {
		images = append(images, n+".jpg")
		labels = append(labels, n+".txt")
	}

	trainSet := func() []string {
		d := setupData(t, images, labels)
		_, err := execute(t, "--images_dir", d.images, "--labels_dir", d.labels, "--seed", "42", "--log-level", "error")
		require.NoError(t, err)
		entries, err := os.ReadDir(filepath.Join(d.root, "train", "images"))
		require.NoError(t, err)
		var got []string
		for _, e := range entries {
			got = append(got, e.Name())
		}
		return got
	}

	first := trainSet()
	assert.Len(t, first, 6)
	assert.Equal(t, first, trainSet())
}

// stubNotify replaces signal registration and counts how often it happens.
// The returned context is already cancelled, so a watch loop ends at once.
func stubNotify(t *testing.T) *int {
	t.Helper()
	calls := 0
	orig := notifyContext
	notifyContext = func(parent context.Context, _ ...os.Signal) (context.Context, context.CancelFunc) {
		calls++
		ctx, cancel := context.WithCancel(parent)
		cancel()
		return ctx, cancel
	}
	t.Cleanup(func() { notifyContext = orig })
	return &calls
}

func TestOneShotRunLeavesSignalsAlone(t *testing.T) {
	calls := stubNotify(t)
	d := setupData(t, []string{"a.jpg"}, []string{"a.txt"})

	_, err := execute(t, "--images_dir", d.images, "--labels_dir", d.labels)
	require.NoError(t, err)
	assert.Zero(t, *calls, "SIGINT must keep terminating a one-shot run")
}

func TestWatchStopsOnSignal(t *testing.T) {
	calls := stubNotify(t)
	d := setupData(t, []string{"a.jpg"}, []string{"a.txt"})

	out, err := execute(t, "--images_dir", d.images, "--labels_dir", d.labels, "--watch")
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)
	assert.Contains(t, out, "Shutting down...")
	assert.Equal(t, 1, countFiles(t, filepath.Join(d.root, "train", "images")))
}

func TestRelevantInput(t *testing.T) {
	exact := relevantInput(false)
	assert.True(t, exact("/d/a.jpg"))
	assert.True(t, exact("/d/a.jpeg"))
	assert.True(t, exact("/d/a.txt"))
	assert.False(t, exact("/d/a.JPG"))
	assert.False(t, exact("/d/a.png"))
	assert.False(t, exact("/d/.a.jpg.swp"))

	loose := relevantInput(true)
	assert.True(t, loose("/d/a.JPG"))
	assert.True(t, loose("/d/a.TXT"))
}

func TestPrintSettingsPlain(t *testing.T) {
	cfg := config.Default()
	cfg.ImagesDir = filepath.Join("/data", "set", "images")
	cfg.LabelsDir = filepath.Join("/data", "set", "labels")

	var buf bytes.Buffer
	PrintSettings(&buf, &cfg)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Parameters:\n"))
	assert.Contains(t, out, "  train_ratio: 0.8\n")
	assert.Contains(t, out, "  seed: 42\n")
	assert.Contains(t, out, "  output: "+filepath.Join("/data", "set")+"\n")
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "/short", truncatePath("/short", 20))
	assert.Equal(t, ".../d/e", truncatePath("/a/b/c/d/e", 7))
	assert.Equal(t, "...", truncatePath("/a/b/c", 2))
}
