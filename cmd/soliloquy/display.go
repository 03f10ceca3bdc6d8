package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/idlethoughts/soliloquy/internal/batch"
)

const fallbackWidth = 100

// terminalWidth reports the terminal width, or a fallback when stdout is
// not a terminal.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		return w
	}
	return fallbackWidth
}

// convoRenderer draws the conversation as it happens: participant A on
// the left edge, participant B right-aligned, mirroring a two-person chat.
type convoRenderer struct {
	out   io.Writer
	width int
}

func newConvoRenderer(out io.Writer) *convoRenderer {
	return &convoRenderer{out: out, width: terminalWidth()}
}

// Listen implements batch.ProgressListener.
func (r *convoRenderer) Listen(event batch.ProgressEvent) {
	switch event.EventType {
	case batch.EventSampleStart:
		fmt.Fprintf(r.out, "\n━━━ Sample %d/%d ━━━\n\n", event.SampleNum, event.TotalSamples)
	case batch.EventUtterance:
		r.renderUtterance(event.Speaker, event.Text)
	case batch.EventSampleComplete:
		fmt.Fprintf(r.out, "\n[%s after %dms]\n", event.Status, event.DurationMs)
	}
}

func (r *convoRenderer) renderUtterance(speaker, text string) {
	// Bubbles take at most two thirds of the terminal.
	bubble := r.width * 2 / 3

	lines := wrapText(text, bubble)
	rightAligned := speaker == "B"

	fmt.Fprintf(r.out, "%s:\n", alignLine(speaker, r.width, rightAligned))
	for _, line := range lines {
		fmt.Fprintln(r.out, alignLine(line, r.width, rightAligned))
	}
	fmt.Fprintln(r.out)
}

// alignLine pads a line to the right edge when rightAligned is set.
func alignLine(line string, width int, rightAligned bool) string {
	if !rightAligned {
		return line
	}
	pad := width - runewidth.StringWidth(line)
	if pad <= 0 {
		return line
	}
	return strings.Repeat(" ", pad) + line
}

// wrapText wraps text to the given display width, breaking on spaces.
// Words wider than the limit are emitted on their own line rather than
// split mid-word.
func wrapText(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := words[0]
		for _, word := range words[1:] {
			if runewidth.StringWidth(current)+1+runewidth.StringWidth(word) > width {
				lines = append(lines, current)
				current = word
				continue
			}
			current += " " + word
		}
		lines = append(lines, current)
	}
	return lines
}

// progressPrinter is the quiet default listener: one line per sample.
type progressPrinter struct {
	out io.Writer
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out}
}

// Listen implements batch.ProgressListener.
func (p *progressPrinter) Listen(event batch.ProgressEvent) {
	switch event.EventType {
	case batch.EventSampleStart:
		fmt.Fprintf(p.out, "Sample %d/%d...", event.SampleNum, event.TotalSamples)
	case batch.EventSampleComplete:
		fmt.Fprintf(p.out, " %s (%dms)\n", event.Status, event.DurationMs)
	}
}
