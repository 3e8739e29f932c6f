package dataset

import "fmt"

// ConfigError reports invalid run parameters. It is always returned before
// anything on disk has been touched.
type ConfigError struct {
	Field string
	Path  string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s", e.Field, e.Msg, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// IOError wraps a filesystem failure while listing, creating directories or
// copying. The run stops at the first one; earlier work stays on disk.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
