package replay

// DefaultClusterThresholdPct merges error markers closer than this many
// percent of the timeline, keeping dense bursts readable.
const DefaultClusterThresholdPct = 1.5

// ErrorCluster is one or more adjacent errors merged into a single
// timeline marker. Position is the running average of member positions as
// a percentage of the total duration; Count drives the marker's visual
// weight.
type ErrorCluster struct {
	PositionPct  float64
	Count        int
	FirstErrorMs int64
}

// ErrorTimeline derives the clustered error markers for a log. Errors are
// visited in chronological order; an error within thresholdPct of the
// current cluster's average position joins it, otherwise it opens a new
// cluster.
func (r *Replay) ErrorTimeline(thresholdPct float64) []ErrorCluster {
	if r.totalDurationMs <= 0 {
		return nil
	}
	var clusters []ErrorCluster
	for _, ev := range r.log {
		if ev.Correct {
			continue
		}
		pos := float64(ev.TimestampMs) / float64(r.totalDurationMs) * 100
		if n := len(clusters); n > 0 && pos-clusters[n-1].PositionPct <= thresholdPct {
			c := &clusters[n-1]
			c.PositionPct = (c.PositionPct*float64(c.Count) + pos) / float64(c.Count+1)
			c.Count++
			continue
		}
		clusters = append(clusters, ErrorCluster{
			PositionPct:  pos,
			Count:        1,
			FirstErrorMs: ev.TimestampMs,
		})
	}
	return clusters
}
