package dataset

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixture lays out <root>/images and <root>/labels with the given files.
// Each file's content is its own name so copies can be checked.
type fixture struct {
	root      string
	imagesDir string
	labelsDir string
}

func newFixture(t *testing.T, images, labels []string) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		root:      root,
		imagesDir: filepath.Join(root, "images"),
		labelsDir: filepath.Join(root, "labels"),
	}
	require.NoError(t, os.MkdirAll(f.imagesDir, 0755))
	require.NoError(t, os.MkdirAll(f.labelsDir, 0755))
	for _, name := range images {
		writeFile(t, filepath.Join(f.imagesDir, name), "image:"+name)
	}
	for _, name := range labels {
		writeFile(t, filepath.Join(f.labelsDir, name), "label:"+name)
	}
	return f
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func stems(pairs []Pair) []string {
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.Stem())
	}
	sort.Strings(out)
	return out
}

func numbered(prefix, ext string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + string(rune('a'+i)) + ext
	}
	return out
}
