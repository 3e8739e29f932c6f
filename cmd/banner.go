package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/YoungY620/dsplit/config"
	"github.com/YoungY620/dsplit/dataset"
)

type setting struct {
	key, value string
}

func settingsOf(cfg *config.Config) []setting {
	s := []setting{
		{"images_dir", cfg.ImagesDir},
		{"labels_dir", cfg.LabelsDir},
		{"train_ratio", fmt.Sprintf("%g", cfg.TrainRatio)},
		{"seed", fmt.Sprintf("%d", cfg.Seed)},
		{"output", dataset.NewLayout(cfg.ImagesDir).Base},
	}
	if cfg.IgnoreExtCase {
		s = append(s, setting{"extensions", "case-insensitive"})
	}
	if cfg.Watch.Enabled {
		s = append(s, setting{"watch", fmt.Sprintf("debounce %dms", cfg.Watch.DebounceMs)})
	}
	return s
}

// PrintSettings writes the resolved run parameters, boxed when w is a
// terminal at least 60 columns wide.
func PrintSettings(w io.Writer, cfg *config.Config) {
	settings := settingsOf(cfg)
	width := termWidth(w)
	if width < 60 {
		fmt.Fprintln(w, "Parameters:")
		for _, s := range settings {
			fmt.Fprintf(w, "  %s: %s\n", s.key, s.value)
		}
		return
	}

	boxWidth := min(width, 80)
	inner := boxWidth - 2
	line := func(content string) string {
		pad := max(inner-utf8.RuneCountInString(content), 0)
		return "│" + content + strings.Repeat(" ", pad) + "│"
	}

	fmt.Fprintln(w, "╭"+strings.Repeat("─", inner)+"╮")
	fmt.Fprintln(w, line(" dsplit "+Version))
	fmt.Fprintln(w, line(""))
	for _, s := range settings {
		value := truncatePath(s.value, inner-15)
		fmt.Fprintln(w, line(fmt.Sprintf("  %-12s %s", s.key, value)))
	}
	fmt.Fprintln(w, "╰"+strings.Repeat("─", inner)+"╯")
}

// termWidth returns 0 unless w is a terminal.
func termWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// truncatePath keeps the tail of s, prefixed with "...", within maxWidth runes.
func truncatePath(s string, maxWidth int) string {
	if utf8.RuneCountInString(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return "..."
	}
	r := []rune(s)
	return "..." + string(r[len(r)-(maxWidth-3):])
}
