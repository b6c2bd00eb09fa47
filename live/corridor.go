package live

import (
	"math"
	"strings"

	"github.com/Lars147/mvg-cli/config"
)

// Direction of travel through the corridor.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Corridor answers geometry and timetable questions about the monitored
// line corridor.
type Corridor struct {
	cfg config.CorridorConfig
}

// NewCorridor wraps a corridor configuration.
func NewCorridor(cfg config.CorridorConfig) Corridor {
	return Corridor{cfg: cfg}
}

// Target is the station arrival estimates refer to.
func (c Corridor) Target() string { return c.cfg.Target }

// DirectionOf classifies a run by its route identifier: the third
// dash-separated field is the terminus station code, and the outbound
// terminus is configured.
func (c Corridor) DirectionOf(routeIdentifier string) Direction {
	parts := strings.Split(routeIdentifier, "-")
	if len(parts) >= 3 && parts[2] == c.cfg.OutboundTerminus {
		return DirectionOutbound
	}
	return DirectionInbound
}

// Destination is the displayed terminus for a direction.
func (c Corridor) Destination(d Direction) string {
	if d == DirectionOutbound {
		return c.cfg.OutboundDestination
	}
	return c.cfg.InboundDestination
}

// Nearest snaps an EPSG:3857 position to the closest corridor station and
// returns the plane distance in meters.
func (c Corridor) Nearest(x, y float64) (config.StationPoint, float64) {
	var best config.StationPoint
	bestDist := math.Inf(1)
	for _, s := range c.cfg.Stations {
		d := math.Hypot(x-s.X, y-s.Y)
		if d < bestDist {
			bestDist = d
			best = s
		}
	}
	return best, bestDist
}

// MinutesToTarget looks a station up on one direction's approach
// sequence. A miss means the train is past the target or off the
// approach path and must not be reported.
func (c Corridor) MinutesToTarget(d Direction, station string) (int, bool) {
	approach := c.cfg.Inbound
	if d == DirectionOutbound {
		approach = c.cfg.Outbound
	}
	for _, stop := range approach {
		if stop.Station == station {
			return stop.Minutes, true
		}
	}
	return 0, false
}
