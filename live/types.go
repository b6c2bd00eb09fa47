package live

import (
	"encoding/json"
	"math"
)

// FrameSourceTrajectory marks vehicle position deltas; every other source
// on the channel is ignored.
const FrameSourceTrajectory = "trajectory"

// Frame is one envelope from the realtime feed.
type Frame struct {
	Source  string          `json:"source"`
	Content json.RawMessage `json:"content"`
}

// Trajectory is one vehicle position delta.
type Trajectory struct {
	Properties TrajectoryProperties `json:"properties"`
	Geometry   TrajectoryGeometry   `json:"geometry"`
}

// TrajectoryProperties carries the vehicle state. Timestamp and Delay are
// in milliseconds; Delay may be null before the first delay calculation.
type TrajectoryProperties struct {
	TrainID         string          `json:"train_id"`
	Timestamp       int64           `json:"timestamp"`
	TrainNumber     json.Number     `json:"train_number"`
	RouteIdentifier string          `json:"route_identifier"`
	Delay           *int64          `json:"delay"`
	State           string          `json:"state"`
	Line            *TrajectoryLine `json:"line"`
}

// TrajectoryLine names the line a vehicle runs on.
type TrajectoryLine struct {
	Name string `json:"name"`
}

// TrajectoryGeometry is the track geometry in the EPSG:3857 plane. The
// first coordinate is the current position.
type TrajectoryGeometry struct {
	Coordinates [][]float64 `json:"coordinates"`
}

// Position returns the current EPSG:3857 position, if the delta has one.
func (t Trajectory) Position() (x, y float64, ok bool) {
	if len(t.Geometry.Coordinates) == 0 || len(t.Geometry.Coordinates[0]) < 2 {
		return 0, 0, false
	}
	c := t.Geometry.Coordinates[0]
	return c[0], c[1], true
}

// LineName returns the line name, or empty when the delta carries none.
func (p TrajectoryProperties) LineName() string {
	if p.Line == nil {
		return ""
	}
	return p.Line.Name
}

// DelayMinutes converts the feed delay from milliseconds to whole
// minutes, rounding half away from zero. A null delay counts as on time.
func (p TrajectoryProperties) DelayMinutes() int {
	if p.Delay == nil {
		return 0
	}
	return int(math.Round(float64(*p.Delay) / 60000.0))
}
