// Package stats renders session and race reports.
package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/typerace/internal/engine"
	"github.com/verte-zerg/typerace/internal/model"
)

const sparkChars = " .:-=+*#%@"

// WPMSeries samples a session's WPM at evenly spaced points across its
// duration, from the keystroke log. Useful for plotting how speed evolved
// over the course of the session.
func WPMSeries(log []model.KeystrokeEvent, totalDurationMs int64, points int) []float64 {
	if points <= 0 || totalDurationMs <= 0 {
		return nil
	}
	out := make([]float64, points)
	for i := 0; i < points; i++ {
		t := totalDurationMs * int64(i+1) / int64(points)
		correct := 0
		for _, ev := range log {
			if ev.TimestampMs > t {
				break
			}
			if ev.Correct {
				correct++
			}
		}
		out[i] = float64(engine.WPM(correct, t))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
