package render

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Lars147/mvg-cli/config"
	"github.com/Lars147/mvg-cli/live"
	"github.com/Lars147/mvg-cli/mvg"
)

const (
	maxStationRows = 10
	maxRouteRows   = 5
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 5, 3, 3, ' ', 0)
}

func locationLabel(loc mvg.Location) string {
	if loc.Place != "" && loc.Place != loc.Name {
		return loc.Name + ", " + loc.Place
	}
	return loc.Name
}

func transportIcons(types []string) string {
	icons := make([]string, 0, len(types))
	for _, t := range types {
		icons = append(icons, TransportEmoji(t))
	}
	return strings.Join(icons, " ")
}

// Stations prints station search results, at most ten, each with its
// global ID.
func Stations(w io.Writer, query string, stations []mvg.Location) {
	fmt.Fprintf(w, "\nStationen für '%s'\n\n", query)
	if len(stations) > maxStationRows {
		stations = stations[:maxStationRows]
	}
	tw := newTabWriter(w)
	for _, st := range stations {
		fmt.Fprintf(tw, "%s %s\t%s\n", transportIcons(st.TransportTypes), locationLabel(st), st.GlobalID)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

// Departures prints the departure board for a station.
func Departures(w io.Writer, station string, offsetMinutes int, deps []mvg.Departure) {
	fmt.Fprintf(w, "\n📍 Abfahrten für %s\n", station)
	if offsetMinutes > 0 {
		fmt.Fprintf(w, "   (mit %d min Fußweg)\n", offsetMinutes)
	}
	fmt.Fprintln(w)

	tw := newTabWriter(w)
	fmt.Fprintln(tw, "Linie\tZiel\tAbfahrt\tVerspätung\tGleis")
	for _, dep := range deps {
		line := TransportEmoji(dep.TransportType) + " " + dep.Label
		if dep.Cancelled {
			line += " ❌"
		}
		platform := ""
		if dep.Platform != 0 {
			platform = strconv.Itoa(dep.Platform)
		}
		if dep.PlatformChanged {
			platform += " ⚠️"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			line, dep.Destination,
			FormatClockMillis(dep.PlannedDepartureTime),
			FormatDelay(dep.DelayInMinutes), platform)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

// Routes prints up to five connections with their legs.
func Routes(w io.Writer, origin, destination string, routes []mvg.Route) {
	fmt.Fprintf(w, "\n🗺️  Verbindungen: %s → %s\n\n", origin, destination)
	if len(routes) > maxRouteRows {
		routes = routes[:maxRouteRows]
	}
	for i, route := range routes {
		fmt.Fprintf(w, "Verbindung %d\n", i+1)
		fmt.Fprintf(w, "  Abfahrt: %s → Ankunft: %s (Dauer: %d min)\n",
			FormatClock(route.Departure), FormatClock(route.Arrival), route.DurationMinutes)
		for _, leg := range route.Legs {
			if leg.Walking() {
				fmt.Fprintf(w, "  🚶 Fußweg: %s → %s\n", leg.From.Name, leg.To.Name)
				continue
			}
			fmt.Fprintf(w, "  %s %s: %s (%s) → %s (%s)\n",
				TransportEmoji(leg.Line.TransportType), leg.Line.Label,
				leg.From.Name, FormatClock(leg.From.Time),
				leg.To.Name, FormatClock(leg.To.Time))
		}
		fmt.Fprintln(w)
	}
}

// Nearby prints stations around a coordinate with their distances.
func Nearby(w io.Writer, lat, lon float64, stations []mvg.Location) {
	fmt.Fprintf(w, "\nNächste Stationen (%.4f, %.4f)\n\n", lat, lon)
	tw := newTabWriter(w)
	for _, st := range stations {
		distance := ""
		if st.DistanceInMeters > 0 {
			distance = fmt.Sprintf("(%dm)", st.DistanceInMeters)
		}
		fmt.Fprintf(tw, "%s %s\t%s\n", transportIcons(st.TransportTypes), locationLabel(st), distance)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func severityEmoji(severity string) string {
	switch severity {
	case "HIGH":
		return "🔴"
	case "MEDIUM":
		return "🟡"
	default:
		return "🔵"
	}
}

// Alerts prints service messages with severity, affected lines and
// validity window. The station name is only part of the heading.
func Alerts(w io.Writer, station string, alerts []mvg.Alert) {
	title := "Störungsmeldungen"
	if station != "" {
		title += " für " + station
	}
	fmt.Fprintf(w, "\n%s\n\n", title)

	for i, alert := range alerts {
		title := alert.Title
		if title == "" {
			title = "Unbekannte Störung"
		}
		fmt.Fprintf(w, "%s %s\n", severityEmoji(alert.Severity), title)
		if desc := CleanHTML(alert.Description); desc != "" {
			fmt.Fprintf(w, "   %s\n", desc)
		}
		lines := "Alle Linien"
		if len(alert.AffectedLines) > 0 {
			lines = strings.Join(alert.AffectedLines, ", ")
		}
		fmt.Fprintf(w, "   Betroffene Linien: %s\n", lines)
		fmt.Fprintf(w, "   Gültig: %s - %s\n",
			FormatDateTimeMillis(alert.ValidFrom), FormatDateTimeMillis(alert.ValidTo))
		if i != len(alerts)-1 {
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
}

// Lines prints all lines grouped by transport type. Groups follow the
// canonical type order, lines within a group sort by label.
func Lines(w io.Writer, lines []mvg.Line) {
	groups := make(map[string][]mvg.Line)
	for _, ln := range lines {
		groups[ln.TransportType] = append(groups[ln.TransportType], ln)
	}

	order := make([]string, 0, len(groups))
	seen := make(map[string]bool)
	for _, t := range mvg.AllTransportTypes {
		if _, ok := groups[t]; ok {
			order = append(order, t)
			seen[t] = true
		}
	}
	var rest []string
	for t := range groups {
		if !seen[t] {
			rest = append(rest, t)
		}
	}
	sort.Strings(rest)
	order = append(order, rest...)

	for _, t := range order {
		group := groups[t]
		sort.Slice(group, func(i, j int) bool { return group[i].Label < group[j].Label })

		fmt.Fprintf(w, "\n%s %s Linien\n", TransportEmoji(t), t)
		for _, ln := range group {
			entry := ln.Label
			if ln.Name != "" && ln.Name != ln.Label {
				entry += " - " + ln.Name
			}
			if ln.Network != "" {
				entry += " (" + ln.Network + ")"
			}
			fmt.Fprintf(w, "  %s\n", entry)
		}
	}
	fmt.Fprintln(w)
}

// Board prints live arrival estimates for the corridor target, one
// section per direction. The arrival clock adds any positive delay on
// top of the transit estimate.
func Board(w io.Writer, corridor config.CorridorConfig, b live.Board, now time.Time) {
	fmt.Fprintf(w, "\n🚆 Live-Ankünfte für %s\n\n", corridor.Target)
	writeEstimates(w, corridor.InboundDestination, b.Inbound, now)
	fmt.Fprintln(w)
	writeEstimates(w, corridor.OutboundDestination, b.Outbound, now)
	fmt.Fprintln(w)
}

func writeEstimates(w io.Writer, destination string, estimates []live.Estimate, now time.Time) {
	fmt.Fprintf(w, "➡️  Richtung %s\n", destination)
	if len(estimates) == 0 {
		fmt.Fprintln(w, "   Keine Züge unterwegs")
		return
	}
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "   Zug\tPosition\tAnkunft\tVerspätung")
	for _, e := range estimates {
		arrival := now.Add(time.Duration(e.ETAMinutes) * time.Minute)
		if e.DelayMinutes > 0 {
			arrival = arrival.Add(time.Duration(e.DelayMinutes) * time.Minute)
		}
		fmt.Fprintf(tw, "   %s\t%s\tin %d min (%s)\t%s\n",
			e.Train, e.At, e.ETAMinutes, FormatClock(arrival), FormatDelay(e.DelayMinutes))
	}
	tw.Flush()
}
