package report

import (
	"path/filepath"
	"strings"

	"github.com/YoungY620/dsplit/logging"
)

// LogSink renders events as human-readable log lines.
type LogSink struct {
	log logging.Printer
}

// NewLogSink returns a sink writing through log.
func NewLogSink(log logging.Printer) *LogSink {
	if log == nil {
		log = logging.NewNop()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Emit(e Event) {
	switch e.Kind {
	case KindDiscovered:
		s.log.Infof("Found %d image files in %s", e.Count, e.Path)
	case KindSkipped:
		s.log.Warnf("Image %s has no label file %s, skipping", e.Image, e.Label)
	case KindPaired:
		s.log.Infof("Valid image/label pairs: %d", e.Count)
	case KindPartitioned:
		s.log.Infof("Train set: %d, valid set: %d", e.Train, e.Valid)
	case KindLayout:
		s.log.Infof("Output will be written under %s (train/ and valid/)", e.Path)
	case KindDirReady:
		s.log.Infof("Created or confirmed directory: %s", e.Path)
	case KindCopyStart:
		s.log.Infof("Copying %s set (%d pairs)...", e.Split, e.Count)
	case KindCopied:
		s.log.Infof("[%s] copied %s and label %s", title(e.Split), filepath.Base(e.Image), filepath.Base(e.Label))
	case KindCompleted:
		s.log.Infof("Split and copy completed: %d train, %d valid", e.Train, e.Valid)
	default:
		s.log.Debugf("event %s: %+v", e.Kind, e)
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
