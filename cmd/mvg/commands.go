package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Lars147/mvg-cli/config"
	"github.com/Lars147/mvg-cli/live"
	"github.com/Lars147/mvg-cli/mvg"
	"github.com/Lars147/mvg-cli/render"
)

// app carries what every command handler needs.
type app struct {
	cfg    config.AppConfig
	client *mvg.Client
	json   bool
	out    io.Writer
}

// fail reports a user-level problem, exit code 1.
func (a *app) fail(msg string) int {
	if a.json {
		render.JSONError(a.out, msg)
	} else {
		fmt.Fprintf(a.out, "❌ %s\n", msg)
	}
	return exitError
}

// failAPI reports an upstream failure, exit code 2. A cancelled context
// means the user hit Ctrl-C, which is not an API problem.
func (a *app) failAPI(err error) int {
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(a.out, "\n❌ Abgebrochen")
		return exitError
	}
	if a.json {
		render.JSONError(a.out, err.Error())
	} else {
		fmt.Fprintf(a.out, "❌ API-Fehler: %v\n", err)
	}
	return exitAPIError
}

// parseArgs runs fs over args and collects non-flag arguments, so flags
// may appear before or after positionals.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	for rest := fs.Args(); len(rest) > 0; rest = fs.Args() {
		positional = append(positional, rest[0])
		if err := fs.Parse(rest[1:]); err != nil {
			return nil, err
		}
	}
	return positional, nil
}

// parseClock resolves HH:MM against today's local date.
func parseClock(s string, now time.Time) (time.Time, error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(now.Year(), now.Month(), now.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, now.Location()), nil
}

var routingModes = map[string]string{
	"fast":         mvg.RoutingModeFast,
	"less-changes": mvg.RoutingModeLessChanges,
	"less-walking": mvg.RoutingModeLessWalking,
}

var walkSpeeds = map[string]string{
	"slow":   mvg.WalkSpeedSlow,
	"normal": mvg.WalkSpeedNormal,
	"fast":   mvg.WalkSpeedFast,
}

func (a *app) search(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return exitError
	}
	if len(positional) != 1 {
		return a.fail("Verwendung: mvg search <suchbegriff>")
	}
	query := positional[0]

	stations, err := a.client.SearchStations(ctx, query)
	if err != nil {
		return a.failAPI(err)
	}
	if a.json {
		render.JSON(a.out, stations)
		return exitOK
	}
	if len(stations) == 0 {
		fmt.Fprintf(a.out, "❌ Keine Stationen gefunden für '%s'\n", query)
		return exitError
	}
	render.Stations(a.out, query, stations)
	return exitOK
}

func (a *app) departures(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("departures", flag.ContinueOnError)
	limit := fs.Int("limit", 10, "Anzahl Abfahrten")
	typeFilter := fs.String("type", "", "Verkehrsmittel-Filter (z.B. ubahn,sbahn,bus,tram)")
	offset := fs.Int("offset", 0, "Fußweg-Offset in Minuten")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return exitError
	}
	if len(positional) != 1 {
		return a.fail("Verwendung: mvg departures <station>")
	}
	station := positional[0]

	var types []string
	if *typeFilter != "" {
		types, err = mvg.NormalizeTransportTypes(*typeFilter)
		if err != nil {
			return a.fail("Unbekannter Verkehrsmitteltyp: " + *typeFilter)
		}
	}

	loc, err := a.client.ResolveStation(ctx, station)
	if err != nil {
		if errors.Is(err, mvg.ErrNotFound) {
			return a.fail(fmt.Sprintf("Station '%s' nicht gefunden", station))
		}
		return a.failAPI(err)
	}

	deps, err := a.client.Departures(ctx, loc.GlobalID, mvg.DepartureOptions{
		Limit:          *limit,
		TransportTypes: types,
		OffsetMinutes:  *offset,
	})
	if err != nil {
		return a.failAPI(err)
	}
	if a.json {
		render.JSON(a.out, deps)
		return exitOK
	}
	if len(deps) == 0 {
		fmt.Fprintf(a.out, "❌ Keine Abfahrten gefunden für '%s'\n", station)
		return exitError
	}
	render.Departures(a.out, station, *offset, deps)
	return exitOK
}

func (a *app) route(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("route", flag.ContinueOnError)
	timeFlag := fs.String("time", "", "Bestimmte Zeit (HH:MM)")
	arrive := fs.Bool("arrive", false, "Zeit als Ankunftszeit verwenden")
	typeFilter := fs.String("type", "", "Nur bestimmte Verkehrsmittel (z.B. ubahn,sbahn)")
	exclude := fs.String("exclude", "", "Verkehrsmittel ausschließen (z.B. bus,tram)")
	via := fs.String("via", "", "Zwischenhalt")
	mode := fs.String("mode", "fast", "Suchmodus: fast, less-changes, less-walking")
	walkSpeed := fs.String("walk-speed", "normal", "Lauftempo: slow, normal, fast")
	accessible := fs.Bool("accessible", false, "Nur rollstuhlgerechte Verbindungen")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return exitError
	}
	if len(positional) != 2 {
		return a.fail("Verwendung: mvg route <start> <ziel>")
	}
	origin, destination := positional[0], positional[1]

	opts := mvg.RouteOptions{ArriveBy: *arrive, Accessible: *accessible}

	var ok bool
	if opts.Mode, ok = routingModes[*mode]; !ok {
		return a.fail("Ungültiger Suchmodus: " + *mode)
	}
	if opts.WalkSpeed, ok = walkSpeeds[*walkSpeed]; !ok {
		return a.fail("Ungültiges Lauftempo: " + *walkSpeed)
	}

	if *timeFlag != "" {
		at, err := parseClock(*timeFlag, time.Now())
		if err != nil {
			return a.fail(fmt.Sprintf("Ungültiges Zeitformat: %s (erwartet HH:MM)", *timeFlag))
		}
		opts.Time = at
	}

	switch {
	case *typeFilter != "":
		opts.TransportTypes, err = mvg.NormalizeTransportTypes(*typeFilter)
		if err != nil {
			return a.fail("Unbekannter Verkehrsmitteltyp: " + *typeFilter)
		}
	case *exclude != "":
		excluded, err := mvg.NormalizeTransportTypes(*exclude)
		if err != nil {
			return a.fail("Unbekannter Verkehrsmitteltyp: " + *exclude)
		}
		opts.TransportTypes = mvg.ExcludeTransportTypes(excluded)
	}

	originLoc, err := a.client.ResolveLocation(ctx, origin)
	if err != nil {
		if errors.Is(err, mvg.ErrNotFound) {
			return a.fail(fmt.Sprintf("Start '%s' nicht gefunden", origin))
		}
		return a.failAPI(err)
	}
	destinationLoc, err := a.client.ResolveLocation(ctx, destination)
	if err != nil {
		if errors.Is(err, mvg.ErrNotFound) {
			return a.fail(fmt.Sprintf("Ziel '%s' nicht gefunden", destination))
		}
		return a.failAPI(err)
	}
	if *via != "" {
		viaLoc, err := a.client.ResolveStation(ctx, *via)
		if err != nil {
			if errors.Is(err, mvg.ErrNotFound) {
				return a.fail(fmt.Sprintf("Via '%s' nicht gefunden", *via))
			}
			return a.failAPI(err)
		}
		opts.Via = &viaLoc
	}

	routes, err := a.client.Routes(ctx, originLoc, destinationLoc, opts)
	if err != nil {
		return a.failAPI(err)
	}
	if a.json {
		render.JSON(a.out, routes)
		return exitOK
	}
	if len(routes) == 0 {
		fmt.Fprintf(a.out, "❌ Keine Verbindungen gefunden von '%s' nach '%s'\n", origin, destination)
		return exitError
	}
	render.Routes(a.out, origin, destination, routes)
	return exitOK
}

func (a *app) nearby(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("nearby", flag.ContinueOnError)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return exitError
	}

	lat, lon := a.cfg.API.DefaultLatitude, a.cfg.API.DefaultLongitude
	switch len(positional) {
	case 0:
	case 2:
		lat, err = strconv.ParseFloat(positional[0], 64)
		if err == nil {
			lon, err = strconv.ParseFloat(positional[1], 64)
		}
		if err != nil {
			return a.fail(fmt.Sprintf("Ungültige Koordinaten: %s %s", positional[0], positional[1]))
		}
	default:
		return a.fail("Verwendung: mvg nearby [breitengrad längengrad]")
	}

	stations, err := a.client.Nearby(ctx, lat, lon)
	if err != nil {
		return a.failAPI(err)
	}
	if a.json {
		render.JSON(a.out, stations)
		return exitOK
	}
	if len(stations) == 0 {
		fmt.Fprintf(a.out, "❌ Keine Stationen in der Nähe von %v, %v gefunden\n", lat, lon)
		return exitError
	}
	render.Nearby(a.out, lat, lon, stations)
	return exitOK
}

func (a *app) alerts(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("alerts", flag.ContinueOnError)
	station := fs.String("station", "", "Stationsspezifische Störungen")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return exitError
	}
	if len(positional) != 0 {
		return a.fail("Verwendung: mvg alerts [--station name]")
	}

	globalID := ""
	if *station != "" {
		loc, err := a.client.ResolveStation(ctx, *station)
		if err != nil {
			if errors.Is(err, mvg.ErrNotFound) {
				return a.fail(fmt.Sprintf("Station '%s' nicht gefunden", *station))
			}
			return a.failAPI(err)
		}
		globalID = loc.GlobalID
	}

	alerts, err := a.client.Messages(ctx, globalID)
	if err != nil {
		return a.failAPI(err)
	}
	if a.json {
		render.JSON(a.out, alerts)
		return exitOK
	}
	if len(alerts) == 0 {
		suffix := ""
		if *station != "" {
			suffix = " für " + *station
		}
		fmt.Fprintf(a.out, "✅ Keine Störungen%s gemeldet\n", suffix)
		return exitOK
	}
	render.Alerts(a.out, *station, alerts)
	return exitOK
}

func (a *app) lines(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("lines", flag.ContinueOnError)
	typeFilter := fs.String("type", "", "Verkehrsmittel-Filter (ubahn, sbahn, bus, tram, bahn)")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return exitError
	}
	if len(positional) != 0 {
		return a.fail("Verwendung: mvg lines [--type ubahn]")
	}

	transportType := ""
	if *typeFilter != "" {
		transportType, err = mvg.NormalizeTransportType(*typeFilter)
		if err != nil {
			return a.fail("Unbekannter Verkehrsmitteltyp: " + *typeFilter)
		}
	}

	lines, err := a.client.Lines(ctx, transportType)
	if err != nil {
		return a.failAPI(err)
	}
	if a.json {
		render.JSON(a.out, lines)
		return exitOK
	}
	if len(lines) == 0 {
		suffix := ""
		if *typeFilter != "" {
			suffix = fmt.Sprintf(" (%s)", *typeFilter)
		}
		fmt.Fprintf(a.out, "❌ Keine Linien%s gefunden\n", suffix)
		return exitError
	}
	render.Lines(a.out, lines)
	return exitOK
}

func (a *app) live(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("live", flag.ContinueOnError)
	line := fs.String("line", "", "Nur eine Linie (z.B. S8)")
	duration := fs.Int("duration", 0, "Sammeldauer in Sekunden")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return exitError
	}
	if len(positional) != 0 {
		return a.fail("Verwendung: mvg live [--line S8] [--duration 10]")
	}

	cfg := a.cfg.Live
	if *duration > 0 {
		cfg.CollectSeconds = *duration
	}
	lineFilter := strings.ToUpper(strings.TrimSpace(*line))

	tracker := live.NewTracker(cfg, lineFilter)
	client, err := live.Dial(ctx, cfg)
	if err != nil {
		return a.failAPI(err)
	}
	defer client.Close()

	window := time.Duration(cfg.CollectSeconds) * time.Second
	if err := client.Collect(ctx, window, tracker.Observe); err != nil {
		return a.failAPI(err)
	}

	if tracker.TrainCount() == 0 {
		if a.json {
			render.JSONError(a.out, "no data")
			return exitOK
		}
		fmt.Fprintln(a.out, "❌ Keine Live-Daten empfangen")
		return exitError
	}

	now := time.Now()
	board := tracker.Board(now)
	if a.json {
		render.JSON(a.out, board)
		return exitOK
	}
	render.Board(a.out, cfg.Corridor, board, now)
	return exitOK
}
