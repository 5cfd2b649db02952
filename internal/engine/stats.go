// Package engine converts keystroke events into typing statistics.
package engine

import (
	"math"
	"sort"

	"github.com/verte-zerg/typerace/internal/model"
)

// WPM computes words per minute from correct keystrokes, with a word
// defined as 5 correct keystrokes. Elapsed time is clamped to 1ms.
func WPM(correct int, elapsedMs int64) int {
	if elapsedMs < 1 {
		elapsedMs = 1
	}
	minutes := float64(elapsedMs) / 60000.0
	return int(math.Round((float64(correct) / 5.0) / minutes))
}

// Accuracy computes the 0-100 integer accuracy for a cursor position and
// error count. A session with no typed characters is 100% accurate.
func Accuracy(position, errors int) int {
	if position <= 0 {
		return 100
	}
	return int(math.Round(float64(position-errors) / float64(position) * 100))
}

// LatencyDistribution computes latency stats over the log, excluding the
// first entry (its latency is always recorded as 0). Fewer than two
// keystrokes yield all-zero stats.
func LatencyDistribution(log []model.KeystrokeEvent) model.LatencyStats {
	if len(log) < 2 {
		return model.LatencyStats{}
	}
	latencies := make([]int64, 0, len(log)-1)
	for _, ev := range log[1:] {
		latencies = append(latencies, ev.LatencyMs)
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum int64
	for _, l := range latencies {
		sum += l
	}
	n := len(latencies)
	avg := float64(sum) / float64(n)

	var variance float64
	for _, l := range latencies {
		d := float64(l) - avg
		variance += d * d
	}
	variance /= float64(n)

	return model.LatencyStats{
		AvgMs:    int64(math.Round(avg)),
		MinMs:    latencies[0],
		MaxMs:    latencies[n-1],
		StdDevMs: int64(math.Round(math.Sqrt(variance))),
		P50Ms:    percentile(latencies, 0.50),
		P95Ms:    percentile(latencies, 0.95),
	}
}

// percentile indexes linearly into the sorted slice.
func percentile(sorted []int64, q float64) int64 {
	idx := int(float64(len(sorted)) * q)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// ComputeStats derives full statistics from a log prefix and an elapsed
// time. Statistics are a pure function of the log: the error count is the
// number of incorrect entries, since a backspaced keystroke leaves no log
// entry behind.
func ComputeStats(log []model.KeystrokeEvent, elapsedMs int64) model.TypingStats {
	if elapsedMs < 1 {
		elapsedMs = 1
	}
	correct := 0
	for _, ev := range log {
		if ev.Correct {
			correct++
		}
	}
	total := len(log)
	return model.TypingStats{
		WPM:        WPM(correct, elapsedMs),
		RawWPM:     WPM(total, elapsedMs),
		Accuracy:   Accuracy(total, total-correct),
		Keystrokes: total,
		Errors:     total - correct,
		DurationMs: elapsedMs,
		Latency:    LatencyDistribution(log),
	}
}
