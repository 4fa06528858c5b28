/*
PURPOSE:
  Terminal presentation for long flatten runs: a single-line progress
  bar plus styled summary lines. Archives reach tens of thousands of
  records and a silent minute feels like a hang.

REQUIREMENTS:
  User-specified:
  - Show per-record progress while flattening.
  - Keep it to one line; scrollback full of bar frames is noise.

  Implementation-discovered:
  - Redrawing with \r needs a final newline exactly once, on the last
    record.
  - Style definitions belong in package vars so every command renders
    the same palette.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli
  - Depends on: lipgloss

ERROR HANDLING:
  - None; rendering failures are not worth failing a run over.

IMPLEMENTATION RULES:
  - The progress callback must stay cheap; it runs once per record.
  - Nothing here writes logs. Structured logging stays in
    internal/output.

USAGE:
  bar := display.NewProgress(os.Stdout)
  bar(3, 120)

SELF-HEALING INSTRUCTIONS:
  - Garbled bars on dumb terminals mean lipgloss picked the wrong
    profile; set TERM properly or pipe through cat to strip styles.

RELATED FILES:
  - internal/flatten/flatten.go
  - internal/cli/flatten.go

MAINTENANCE:
  - Keep the palette in sync across styles when rebranding.
*/

package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5B8DEF"))
	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#6BCB77"))
	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
)

const barWidth = 30

// NewProgress returns a callback that redraws a one-line bar on w and
// terminates the line when done reaches total.
func NewProgress(w io.Writer) func(done, total int) {
	return func(done, total int) {
		if total <= 0 {
			return
		}
		filled := done * barWidth / total
		if filled > barWidth {
			filled = barWidth
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		fmt.Fprintf(w, "\r%s %s",
			barStyle.Render(bar),
			countStyle.Render(fmt.Sprintf("%d/%d", done, total)))
		if done >= total {
			fmt.Fprintln(w)
		}
	}
}

// Success renders a completion summary line.
func Success(text string) string {
	return successStyle.Render("✓ " + text)
}

// Warn renders an attention-grabbing summary line.
func Warn(text string) string {
	return warnStyle.Render("⚠ " + text)
}
