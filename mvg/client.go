package mvg

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Lars147/mvg-cli/config"
)

// Client talks to the MVG REST API.
type Client struct {
	http *resty.Client
}

// NewClient creates an API client from configuration.
func NewClient(cfg config.APIConfig) *Client {
	r := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")
	if cfg.AcceptLanguage != "" {
		r.SetHeader("Accept-Language", cfg.AcceptLanguage)
	}
	return &Client{http: r}
}

// get performs one GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	resp, err := c.http.R().SetContext(ctx).SetQueryParams(params).Get(path)
	if err != nil {
		return &NetworkError{URL: c.http.BaseURL + path, Err: err}
	}
	url := resp.Request.URL
	if resp.IsError() {
		return &UpstreamError{Status: resp.StatusCode(), URL: url, Body: trimBody(resp.Body())}
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &UpstreamError{URL: url, Err: err}
	}
	return nil
}

func trimBody(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// SearchStations returns the stations matching a free-text query.
func (c *Client) SearchStations(ctx context.Context, query string) ([]Location, error) {
	var locs []Location
	if err := c.get(ctx, "/locations", map[string]string{"query": query}, &locs); err != nil {
		return nil, err
	}
	stations := locs[:0]
	for _, l := range locs {
		if l.Type == LocationTypeStation {
			stations = append(stations, l)
		}
	}
	return stations, nil
}

// ResolveStation resolves a free-text name to a single station. An exact
// name match wins over result order; matching is case-insensitive.
func (c *Client) ResolveStation(ctx context.Context, name string) (Location, error) {
	stations, err := c.SearchStations(ctx, name)
	if err != nil {
		return Location{}, err
	}
	return pickLocation(stations, name, "station")
}

// ResolveLocation resolves a free-text query to any location kind, so
// route endpoints can be addresses or POIs as well as stations.
func (c *Client) ResolveLocation(ctx context.Context, query string) (Location, error) {
	var locs []Location
	if err := c.get(ctx, "/locations", map[string]string{"query": query}, &locs); err != nil {
		return Location{}, err
	}
	return pickLocation(locs, query, "location")
}

func pickLocation(locs []Location, query, kind string) (Location, error) {
	if len(locs) == 0 {
		return Location{}, fmt.Errorf("%s %q: %w", kind, query, ErrNotFound)
	}
	for _, l := range locs {
		if strings.EqualFold(l.Name, query) {
			return l, nil
		}
	}
	return locs[0], nil
}

// DepartureOptions filter a departure query.
type DepartureOptions struct {
	Limit          int
	TransportTypes []string
	OffsetMinutes  int
}

// Departures returns upcoming departures for a station. The offset is
// applied here, not sent upstream: departures leaving before now+offset
// are dropped. Results are sorted by planned time ascending and capped
// at the limit.
func (c *Client) Departures(ctx context.Context, globalID string, opts DepartureOptions) ([]Departure, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	params := map[string]string{
		"globalId": globalID,
		"limit":    strconv.Itoa(limit),
	}
	if len(opts.TransportTypes) > 0 {
		params["transportTypes"] = strings.Join(opts.TransportTypes, ",")
	}

	var deps []Departure
	if err := c.get(ctx, "/departures", params, &deps); err != nil {
		return nil, err
	}

	if opts.OffsetMinutes > 0 {
		cutoff := time.Now().Add(time.Duration(opts.OffsetMinutes) * time.Minute).UnixMilli()
		kept := deps[:0]
		for _, d := range deps {
			if d.EffectiveTime() >= cutoff {
				kept = append(kept, d)
			}
		}
		deps = kept
	}
	sort.SliceStable(deps, func(i, j int) bool {
		return deps[i].PlannedDepartureTime < deps[j].PlannedDepartureTime
	})
	if len(deps) > limit {
		deps = deps[:limit]
	}
	return deps, nil
}

// Routing modes and walking speeds accepted by the routes endpoint.
const (
	RoutingModeFast        = "FAST"
	RoutingModeLessChanges = "LESS_CHANGES"
	RoutingModeLessWalking = "LESS_WALKING"

	WalkSpeedSlow   = "SLOW"
	WalkSpeedNormal = "NORMAL"
	WalkSpeedFast   = "FAST"
)

// RouteOptions tune a connection query.
type RouteOptions struct {
	// Time is the desired departure, or arrival when ArriveBy is set.
	// Zero means "now" (the server default).
	Time           time.Time
	ArriveBy       bool
	TransportTypes []string
	Mode           string
	WalkSpeed      string
	Accessible     bool
	Via            *Location
}

// Routes queries connections between two resolved locations.
func (c *Client) Routes(ctx context.Context, origin, destination Location, opts RouteOptions) ([]Route, error) {
	params := map[string]string{}
	if origin.GlobalID != "" {
		params["originStationGlobalId"] = origin.GlobalID
	} else {
		params["originLatitude"] = formatCoord(origin.Latitude)
		params["originLongitude"] = formatCoord(origin.Longitude)
	}
	if destination.GlobalID != "" {
		params["destinationStationGlobalId"] = destination.GlobalID
	} else {
		params["destinationLatitude"] = formatCoord(destination.Latitude)
		params["destinationLongitude"] = formatCoord(destination.Longitude)
	}
	if !opts.Time.IsZero() {
		params["routingDateTime"] = opts.Time.Format(time.RFC3339)
	}
	if opts.ArriveBy {
		params["routingDateTimeIsArrival"] = "true"
	}
	if len(opts.TransportTypes) > 0 {
		params["transportTypes"] = strings.Join(opts.TransportTypes, ",")
	}
	if opts.Mode != "" {
		params["routingMode"] = opts.Mode
	}
	if opts.WalkSpeed != "" {
		params["walkSpeed"] = opts.WalkSpeed
	}
	if opts.Accessible {
		params["wheelchair"] = "true"
	}
	if opts.Via != nil && opts.Via.GlobalID != "" {
		params["viaStationGlobalId"] = opts.Via.GlobalID
	}

	var conns []connection
	if err := c.get(ctx, "/routes", params, &conns); err != nil {
		return nil, err
	}
	routes := make([]Route, 0, len(conns))
	for _, conn := range conns {
		routes = append(routes, normalizeConnection(conn))
	}
	return routes, nil
}

// normalizeConnection flattens a wire connection into a Route. A leg's
// arrival is read from to.plannedDeparture plus the arrival delay field:
// the endpoint has no plannedArrival.
func normalizeConnection(conn connection) Route {
	var r Route
	for _, p := range conn.Parts {
		r.Legs = append(r.Legs, Leg{
			From: LegStop{
				Name:            p.From.Name,
				Time:            parseRouteTime(p.From.PlannedDeparture),
				DelayInMinutes:  p.From.DepartureDelayInMinutes,
				Platform:        p.From.Platform,
				PlatformChanged: p.From.PlatformChanged,
			},
			To: LegStop{
				Name:           p.To.Name,
				Time:           parseRouteTime(p.To.PlannedDeparture),
				DelayInMinutes: p.To.ArrivalDelayInMinutes,
				Platform:       p.To.Platform,
			},
			Line: p.Line,
		})
	}
	if len(r.Legs) > 0 {
		r.Departure = r.Legs[0].From.Time
		r.Arrival = r.Legs[len(r.Legs)-1].To.Time
		if !r.Departure.IsZero() && !r.Arrival.IsZero() {
			r.DurationMinutes = int(r.Arrival.Sub(r.Departure).Minutes())
		}
	}
	return r
}

// parseRouteTime parses the endpoint's ISO-8601 timestamps. Absent or
// unparseable values become the zero time, which renders as unknown.
func parseRouteTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Nearby lists stations around a coordinate, closest first.
func (c *Client) Nearby(ctx context.Context, lat, lon float64) ([]Location, error) {
	params := map[string]string{
		"latitude":  formatCoord(lat),
		"longitude": formatCoord(lon),
	}
	var locs []Location
	if err := c.get(ctx, "/stations/nearby", params, &locs); err != nil {
		return nil, err
	}
	sort.SliceStable(locs, func(i, j int) bool {
		return locs[i].DistanceInMeters < locs[j].DistanceInMeters
	})
	return locs, nil
}

// Messages lists service alerts, optionally narrowed to one station.
func (c *Client) Messages(ctx context.Context, globalID string) ([]Alert, error) {
	params := map[string]string{}
	if globalID != "" {
		params["globalId"] = globalID
	}
	var alerts []Alert
	if err := c.get(ctx, "/messages", params, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// Lines lists all lines, optionally filtered by canonical transport type.
// The endpoint takes no filter parameter, so filtering happens here.
func (c *Client) Lines(ctx context.Context, transportType string) ([]Line, error) {
	var lines []Line
	if err := c.get(ctx, "/lines", nil, &lines); err != nil {
		return nil, err
	}
	if transportType == "" {
		return lines, nil
	}
	filtered := lines[:0]
	for _, l := range lines {
		if l.TransportType == transportType {
			filtered = append(filtered, l)
		}
	}
	return filtered, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
