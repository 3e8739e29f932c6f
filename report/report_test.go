package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoungY620/dsplit/logging"
)

func TestMultiFansOut(t *testing.T) {
	var a, b Recorder
	sink := Multi(&a, nil, &b)

	sink.Emit(Event{Kind: KindPaired, Count: 3})

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
	assert.Equal(t, 3, b.Of(KindPaired)[0].Count)
}

func TestMultiDegenerateCases(t *testing.T) {
	assert.Equal(t, Discard, Multi())
	var r Recorder
	assert.Same(t, &r, Multi(nil, &r).(*Recorder))
}

func TestRecorderOf(t *testing.T) {
	var r Recorder
	r.Emit(Event{Kind: KindSkipped, Image: "c.jpg"})
	r.Emit(Event{Kind: KindPaired})
	r.Emit(Event{Kind: KindSkipped, Image: "d.jpg"})

	skipped := r.Of(KindSkipped)
	require.Len(t, skipped, 2)
	assert.Equal(t, "d.jpg", skipped[1].Image)
	assert.Len(t, r.Events(), 3)
}

func TestLogSinkRendersEvents(t *testing.T) {
	var out bytes.Buffer
	log := logging.New(logging.WithTimeFormat(""), logging.WithColored(false), logging.WithOutput(&out, &out))
	sink := NewLogSink(log)

	sink.Emit(Event{Kind: KindDiscovered, Path: "/data/images", Count: 3})
	sink.Emit(Event{Kind: KindSkipped, Image: "/data/images/c.jpg", Label: "/data/labels/c.txt"})
	sink.Emit(Event{Kind: KindCopied, Split: "train", Image: "/data/images/a.jpg", Label: "/data/labels/a.txt"})

	text := out.String()
	assert.Contains(t, text, "Found 3 image files in /data/images")
	assert.Contains(t, text, " WARN ")
	assert.Contains(t, text, "/data/labels/c.txt")
	assert.Contains(t, text, "[Train] copied a.jpg and label a.txt")
}

func TestJSONLWritesSequencedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink, err := OpenJSONL(path)
	require.NoError(t, err)

	sink.Emit(Event{Kind: KindDiscovered, Path: "/x", Count: 0})
	sink.Emit(Event{Kind: KindCompleted, Train: 1, Valid: 1})
	require.NoError(t, sink.Err())
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []jsonlEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e jsonlEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 2)

	assert.EqualValues(t, 1, entries[0].Seq)
	assert.EqualValues(t, 2, entries[1].Seq)
	assert.Equal(t, KindDiscovered, entries[0].Kind)
	assert.Equal(t, 0, entries[0].Count)
	assert.Equal(t, sink.RunID(), entries[1].RunID)
	_, err = uuid.Parse(entries[0].RunID)
	assert.NoError(t, err)
}

func TestJSONLAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	for i := 0; i < 2; i++ {
		sink, err := OpenJSONL(path)
		require.NoError(t, err)
		sink.Emit(Event{Kind: KindPaired, Count: i})
		require.NoError(t, sink.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))
}

func TestOpenJSONLBadPath(t *testing.T) {
	_, err := OpenJSONL(filepath.Join(t.TempDir(), "missing", "events.jsonl"))
	assert.Error(t, err)
}
