package stats

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/verte-zerg/typerace/internal/model"
)

const fallbackWidth = 80

// TerminalWidth returns the stdout terminal width, or a fallback when
// stdout is not a terminal.
func TerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallbackWidth
}

// RenderSessionSummary prints one session's statistics and a WPM
// progression sparkline derived from its keystroke log.
func RenderSessionSummary(w io.Writer, rec model.SessionRecord, log []model.KeystrokeEvent) error {
	if _, err := fmt.Fprintf(w, "Session %d (%s)\n", rec.ID, rec.StartedAt.Format(time.RFC3339)); err != nil {
		return err
	}
	hint := ""
	if rec.HintUsed {
		hint = " (hint used)"
	}
	lines := []string{
		fmt.Sprintf("WPM: %d%s", rec.Stats.WPM, hint),
		fmt.Sprintf("Raw WPM: %d", rec.Stats.RawWPM),
		fmt.Sprintf("Accuracy: %d%%", rec.Stats.Accuracy),
		fmt.Sprintf("Keystrokes: %d (%d errors)", rec.Stats.Keystrokes, rec.Stats.Errors),
		fmt.Sprintf("Duration: %.1fs", float64(rec.Stats.DurationMs)/1000),
		fmt.Sprintf("Latency: avg %dms p50 %dms p95 %dms",
			rec.Stats.Latency.AvgMs, rec.Stats.Latency.P50Ms, rec.Stats.Latency.P95Ms),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	points := TerminalWidth() - 10
	if points > 60 {
		points = 60
	}
	if series := WPMSeries(log, rec.Stats.DurationMs, points); len(series) > 0 {
		if _, err := fmt.Fprintf(w, "WPM over time: %s\n", Sparkline(series)); err != nil {
			return err
		}
	}
	return nil
}

// RenderSessionTable prints a table of stored sessions.
func RenderSessionTable(w io.Writer, sessions []model.SessionRecord) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	headers := []string{"ID", "When", "WPM", "Raw", "Accuracy", "Keys", "Errors", "Hint"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		hint := ""
		if s.HintUsed {
			hint = "yes"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.ID),
			s.StartedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", s.Stats.WPM),
			fmt.Sprintf("%d", s.Stats.RawWPM),
			fmt.Sprintf("%d%%", s.Stats.Accuracy),
			fmt.Sprintf("%d", s.Stats.Keystrokes),
			fmt.Sprintf("%d", s.Stats.Errors),
			hint,
		})
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderRaceResults prints a race's final standings in rank order.
func RenderRaceResults(w io.Writer, race model.Race, participants []model.RaceParticipant) error {
	if _, err := fmt.Fprintf(w, "Race %s (%s)\n", race.ID, race.Status); err != nil {
		return err
	}
	headers := []string{"Rank", "Player", "WPM", "Accuracy"}
	rows := make([][]string, 0, len(participants))
	for _, p := range participants {
		rank := "-"
		if p.Finished() {
			rank = fmt.Sprintf("%d", p.Rank)
		}
		rows = append(rows, []string{
			rank,
			p.UserID,
			fmt.Sprintf("%d", p.WPM),
			fmt.Sprintf("%d%%", p.Accuracy),
		})
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = utf8.RuneCountInString(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount && i < len(row); i++ {
			if w := utf8.RuneCountInString(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, formatRow(headers, widths, rightAlignCols))
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	padding := width - utf8.RuneCountInString(value)
	if padding <= 0 {
		return value
	}
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}
