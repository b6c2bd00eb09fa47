package mvg

import "time"

// LocationTypeStation marks station results in the locations search.
const LocationTypeStation = "STATION"

// Location is one result from the locations endpoint. Stations carry a
// GlobalID; addresses and POIs only coordinates. Nearby results also
// carry the distance from the query point.
type Location struct {
	Type             string   `json:"type,omitempty"`
	GlobalID         string   `json:"globalId,omitempty"`
	Name             string   `json:"name"`
	Place            string   `json:"place,omitempty"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	TransportTypes   []string `json:"transportTypes,omitempty"`
	DistanceInMeters int      `json:"distanceInMeters,omitempty"`
}

// Departure is one row of a station departure board. Times are Unix
// milliseconds, exactly as delivered by the API.
type Departure struct {
	PlannedDepartureTime  int64    `json:"plannedDepartureTime"`
	RealtimeDepartureTime int64    `json:"realtimeDepartureTime,omitempty"`
	DelayInMinutes        int      `json:"delayInMinutes"`
	Label                 string   `json:"label"`
	TransportType         string   `json:"transportType"`
	Destination           string   `json:"destination"`
	Cancelled             bool     `json:"cancelled"`
	Platform              int      `json:"platform,omitempty"`
	PlatformChanged       bool     `json:"platformChanged,omitempty"`
	Infos                 []string `json:"infos,omitempty"`
}

// EffectiveTime is the realtime departure when known, else the planned
// one, in Unix milliseconds.
func (d Departure) EffectiveTime() int64 {
	if d.RealtimeDepartureTime != 0 {
		return d.RealtimeDepartureTime
	}
	return d.PlannedDepartureTime
}

// Alert is a service message. Validity bounds are Unix milliseconds.
type Alert struct {
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	ValidFrom     int64    `json:"validFrom,omitempty"`
	ValidTo       int64    `json:"validTo,omitempty"`
	AffectedLines []string `json:"affectedLines,omitempty"`
	Severity      string   `json:"severity,omitempty"`
}

// Line is one entry of the line listing. The same shape appears inside
// route legs.
type Line struct {
	Label         string `json:"label"`
	Name          string `json:"name,omitempty"`
	Network       string `json:"network,omitempty"`
	TransportType string `json:"transportType"`
}

// LegStop is the boarding or alighting end of a route leg.
type LegStop struct {
	Name            string    `json:"name"`
	Time            time.Time `json:"time"`
	DelayInMinutes  int       `json:"delayInMinutes,omitempty"`
	Platform        int       `json:"platform,omitempty"`
	PlatformChanged bool      `json:"platformChanged,omitempty"`
}

// Leg is one single-mode segment of a route. Line is nil for walking
// segments.
type Leg struct {
	From LegStop `json:"from"`
	To   LegStop `json:"to"`
	Line *Line   `json:"line,omitempty"`
}

// Walking reports whether the leg is covered on foot.
func (l Leg) Walking() bool {
	return l.Line == nil || l.Line.TransportType == TransportPedestrian
}

// Route is one normalized connection between origin and destination.
type Route struct {
	Departure       time.Time `json:"departure"`
	Arrival         time.Time `json:"arrival"`
	DurationMinutes int       `json:"durationMinutes"`
	Legs            []Leg     `json:"legs"`
}

// Wire shape of the routes endpoint. The from/to stops only have a
// plannedDeparture field: for the To end it holds the arrival time, an
// upstream naming quirk normalizeConnection hides from callers.
type connection struct {
	Parts []routePart `json:"parts"`
}

type routePart struct {
	From routeStop `json:"from"`
	To   routeStop `json:"to"`
	Line *Line     `json:"line"`
}

type routeStop struct {
	Name                    string `json:"name"`
	PlannedDeparture        string `json:"plannedDeparture"`
	DepartureDelayInMinutes int    `json:"departureDelayInMinutes"`
	ArrivalDelayInMinutes   int    `json:"arrivalDelayInMinutes"`
	Platform                int    `json:"platform"`
	PlatformChanged         bool   `json:"platformChanged"`
}
