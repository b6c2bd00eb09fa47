package live

import (
	"sort"
	"time"

	"github.com/Lars147/mvg-cli/config"
)

// Estimate is one approaching train with its ETA to the corridor target.
// The JSON field names follow the feed's vocabulary.
type Estimate struct {
	Train        string `json:"train"`
	At           string `json:"at"`
	ETAMinutes   int    `json:"eta"`
	DelayMinutes int    `json:"delay"`
	State        string `json:"state,omitempty"`
	Direction    string `json:"direction"`
}

// Board groups estimates by direction, soonest first.
type Board struct {
	Inbound  []Estimate `json:"inbound"`
	Outbound []Estimate `json:"outbound"`
}

// Tracker owns the in-memory position table fed by the message loop. It
// is not safe for concurrent use; the loop is its only writer.
type Tracker struct {
	corridor Corridor
	lines    map[string]bool
	maxSnap  float64
	perDir   int
	latest   map[string]Trajectory
}

// NewTracker builds a tracker for the configured corridor. When
// lineFilter is non-empty only that line is retained, otherwise the whole
// configured line family.
func NewTracker(cfg config.LiveConfig, lineFilter string) *Tracker {
	lines := make(map[string]bool)
	if lineFilter != "" {
		lines[lineFilter] = true
	} else {
		for _, l := range cfg.Lines {
			lines[l] = true
		}
	}
	return &Tracker{
		corridor: NewCorridor(cfg.Corridor),
		lines:    lines,
		maxSnap:  cfg.MaxStationDistance,
		perDir:   cfg.PerDirection,
		latest:   make(map[string]Trajectory),
	}
}

// Observe merges one delta into the position table. Deltas for other
// lines are dropped; stale timestamps never replace newer ones.
func (t *Tracker) Observe(tr Trajectory) {
	if !t.lines[tr.Properties.LineName()] {
		return
	}
	id := tr.Properties.TrainID
	if id == "" {
		return
	}
	if prev, ok := t.latest[id]; ok && prev.Properties.Timestamp >= tr.Properties.Timestamp {
		return
	}
	t.latest[id] = tr
}

// TrainCount is the number of distinct trains observed so far.
func (t *Tracker) TrainCount() int { return len(t.latest) }

// Board computes the per-direction arrival estimates as of now.
func (t *Tracker) Board(now time.Time) Board {
	var b Board
	for _, tr := range t.latest {
		est, dir, ok := t.estimate(tr, now)
		if !ok {
			continue
		}
		if dir == DirectionOutbound {
			b.Outbound = append(b.Outbound, est)
		} else {
			b.Inbound = append(b.Inbound, est)
		}
	}
	sortEstimates(b.Inbound)
	sortEstimates(b.Outbound)
	if len(b.Inbound) > t.perDir {
		b.Inbound = b.Inbound[:t.perDir]
	}
	if len(b.Outbound) > t.perDir {
		b.Outbound = b.Outbound[:t.perDir]
	}
	return b
}

// estimate turns one position delta into an arrival estimate. Trains off
// the corridor, past the target, or on the wrong approach are excluded.
// The ETA is the approach transit time minus the minutes elapsed since
// the delta, never negative; the delay is reported alongside, not folded
// into the ETA.
func (t *Tracker) estimate(tr Trajectory, now time.Time) (Estimate, Direction, bool) {
	x, y, ok := tr.Position()
	if !ok {
		return Estimate{}, "", false
	}
	station, dist := t.corridor.Nearest(x, y)
	if dist > t.maxSnap {
		return Estimate{}, "", false
	}
	dir := t.corridor.DirectionOf(tr.Properties.RouteIdentifier)
	transit, ok := t.corridor.MinutesToTarget(dir, station.Name)
	if !ok {
		return Estimate{}, "", false
	}

	elapsed := int(now.Sub(time.UnixMilli(tr.Properties.Timestamp)).Minutes())
	if elapsed < 0 {
		elapsed = 0
	}
	eta := transit - elapsed
	if eta < 0 {
		eta = 0
	}

	return Estimate{
		Train:        tr.Properties.TrainNumber.String(),
		At:           station.Name,
		ETAMinutes:   eta,
		DelayMinutes: tr.Properties.DelayMinutes(),
		State:        tr.Properties.State,
		Direction:    t.corridor.Destination(dir),
	}, dir, true
}

func sortEstimates(ests []Estimate) {
	sort.SliceStable(ests, func(i, j int) bool {
		if ests[i].ETAMinutes != ests[j].ETAMinutes {
			return ests[i].ETAMinutes < ests[j].ETAMinutes
		}
		return ests[i].Train < ests[j].Train
	})
}
