package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lars147/mvg-cli/config"
	"github.com/Lars147/mvg-cli/internal"
	"github.com/Lars147/mvg-cli/mvg"
)

const (
	exitOK       = 0
	exitError    = 1
	exitAPIError = 2
)

const usage = `mvg - Münchner Verkehrsgesellschaft vom Terminal aus

Verwendung:
  mvg [--json] <command> [optionen]

Commands:
  search <query>           Station suchen
  departures <station>     Abfahrten anzeigen
  route <start> <ziel>     Verbindung suchen
  nearby [lat] [lon]       Nächste Stationen
  alerts                   Störungsmeldungen
  lines                    Linien auflisten
  live                     Live-Positionen der S-Bahn

Beispiele:
  mvg search "Marienplatz"
  mvg departures "Marienplatz" --limit 20
  mvg departures "Marienplatz" --type ubahn --offset 5
  mvg route "Marienplatz" "Garching" --time "18:00"
  mvg nearby 48.1351 11.5820
  mvg alerts --station "Marienplatz"
  mvg lines --type ubahn
  mvg live --line S8

Alle Commands unterstützen --json für JSON-Ausgabe.
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	internal.InitLogging()

	jsonOut := false
	for len(args) > 0 && (args[0] == "--json" || args[0] == "-json") {
		jsonOut = true
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return exitError
	}
	cmd, rest := args[0], args[1:]

	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		fmt.Print(usage)
		return exitOK
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		cfg:    cfg,
		client: mvg.NewClient(cfg.API),
		json:   jsonOut,
		out:    os.Stdout,
	}

	switch cmd {
	case "search":
		return a.search(ctx, rest)
	case "departures":
		return a.departures(ctx, rest)
	case "route":
		return a.route(ctx, rest)
	case "nearby":
		return a.nearby(ctx, rest)
	case "alerts":
		return a.alerts(ctx, rest)
	case "lines":
		return a.lines(ctx, rest)
	case "live":
		return a.live(ctx, rest)
	default:
		fmt.Fprintf(os.Stderr, "❌ Unbekannter Command: %s\n\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		return exitError
	}
}
