package replay

import (
	"time"

	"github.com/verte-zerg/typerace/internal/model"
)

// Speeds are the playback rates the player cycles through.
var Speeds = []float64{0.5, 1, 1.5, 2, 4}

// DefaultSeekLeadMs is how far before an error the player lands when
// seeking to it, so the viewer sees the error approach.
const DefaultSeekLeadMs = 1000

// Player drives variable-speed playback over a replay. It holds the
// current playback time and advances it on animation ticks; it performs no
// I/O and no scheduling of its own.
type Player struct {
	replay *Replay

	currentMs float64
	speedIdx  int
	playing   bool

	errorSummary bool
	clusters     []ErrorCluster
}

// NewPlayer returns a paused player positioned at time zero, at 1x speed.
func NewPlayer(r *Replay) *Player {
	return &Player{
		replay:   r,
		speedIdx: 1,
		clusters: r.ErrorTimeline(DefaultClusterThresholdPct),
	}
}

// Tick advances playback by frameDelta scaled by the current speed.
// Reaching the end pauses playback and exposes the error summary if the
// session had any errors.
func (p *Player) Tick(frameDelta time.Duration) {
	if !p.playing {
		return
	}
	p.currentMs += float64(frameDelta.Milliseconds()) * p.Speed()
	total := float64(p.replay.TotalDurationMs())
	if p.currentMs >= total {
		p.currentMs = total
		p.playing = false
		if len(p.clusters) > 0 {
			p.errorSummary = true
		}
	}
}

// TogglePlay starts or pauses playback. Toggling play at the end restarts
// from zero.
func (p *Player) TogglePlay() {
	if !p.playing && p.AtEnd() {
		p.currentMs = 0
		p.errorSummary = false
	}
	p.playing = !p.playing
}

// CycleSpeed moves to the next playback rate and returns it.
func (p *Player) CycleSpeed() float64 {
	p.speedIdx = (p.speedIdx + 1) % len(Speeds)
	return p.Speed()
}

// SeekTo jumps to an absolute time, clamped to [0, totalDuration].
func (p *Player) SeekTo(tMs int64) {
	p.currentMs = clamp(float64(tMs), 0, float64(p.replay.TotalDurationMs()))
}

// Skip moves playback by a relative amount, clamped to the timeline.
func (p *Player) Skip(deltaMs int64) {
	p.SeekTo(int64(p.currentMs) + deltaMs)
}

// SeekToError jumps to just before an error cluster and pauses, letting
// the viewer watch the error occur.
func (p *Player) SeekToError(c ErrorCluster) {
	t := c.FirstErrorMs - DefaultSeekLeadMs
	if t < 0 {
		t = 0
	}
	p.playing = false
	p.SeekTo(t)
}

// CurrentMs returns the playback position.
func (p *Player) CurrentMs() int64 { return int64(p.currentMs) }

// TotalMs returns the replay's total duration.
func (p *Player) TotalMs() int64 { return p.replay.TotalDurationMs() }

// Speed returns the current playback rate.
func (p *Player) Speed() float64 { return Speeds[p.speedIdx] }

// Playing reports whether playback is advancing.
func (p *Player) Playing() bool { return p.playing }

// AtEnd reports whether playback has reached the total duration.
func (p *Player) AtEnd() bool {
	return int64(p.currentMs) >= p.replay.TotalDurationMs()
}

// ErrorSummaryVisible reports whether the end-of-playback error summary
// should be shown.
func (p *Player) ErrorSummaryVisible() bool { return p.errorSummary }

// Clusters returns the precomputed error timeline.
func (p *Player) Clusters() []ErrorCluster { return p.clusters }

// Snapshot reconstructs the visual state at the playback position.
func (p *Player) Snapshot() Snapshot {
	return p.replay.SnapshotAt(p.CurrentMs())
}

// Stats re-derives live statistics at the playback position.
func (p *Player) Stats() model.TypingStats {
	return p.replay.StatsAt(p.CurrentMs())
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
