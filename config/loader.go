package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults returns the built-in configuration. It is complete: the tool
// works without any config file.
func Defaults() AppConfig {
	return AppConfig{
		API: APIConfig{
			BaseURL:          "https://www.mvg.de/api/bgw-pt/v3",
			TimeoutSeconds:   10,
			UserAgent:        "mvg-cli/1.0",
			AcceptLanguage:   "de-DE,de;q=0.9,en;q=0.8",
			DefaultLatitude:  48.1351,
			DefaultLongitude: 11.5820,
		},
		Live: LiveConfig{
			URL: "wss://api.geops.io/realtime-ws/v1/",
			// Public demo key embedded in the s-bahn-muenchen-live.de frontend.
			APIKey:             "5cc87b12d7c5370001c1d655112ec5c21e0f441792cfc2fafe3e7a1e",
			Origin:             "https://s-bahn-muenchen-live.de",
			Channel:            "sbm_full",
			BBox:               "1268000 6110000 1350000 6200000 14",
			CollectSeconds:     10,
			Lines:              []string{"S1", "S2", "S3", "S4", "S6", "S7", "S8", "S20"},
			MaxStationDistance: 1500,
			PerDirection:       3,
			Corridor:           defaultCorridor(),
		},
	}
}

// defaultCorridor is the S8 east corridor with EPSG:3857 station
// coordinates taken from the MVG API. Inbound runs toward Herrsching,
// outbound toward Flughafen; both approach sequences end at Daglfing.
func defaultCorridor() CorridorConfig {
	return CorridorConfig{
		Target: "Daglfing",
		Stations: []StationPoint{
			{Name: "Flughafen", X: 1312038, Y: 6165913},
			{Name: "Besucherpark", X: 1309570, Y: 6165738},
			{Name: "Hallbergmoos", X: 1303993, Y: 6158387},
			{Name: "Ismaning", X: 1300109, Y: 6144523},
			{Name: "Unterföhring", X: 1296567, Y: 6138766},
			{Name: "Johanneskirchen", X: 1296422, Y: 6134937},
			{Name: "Englschalking", X: 1296693, Y: 6132938},
			{Name: "Daglfing", X: 1296800, Y: 6131703},
			{Name: "Berg am Laim", X: 1295025, Y: 6129373},
			{Name: "Leuchtenbergring", X: 1293080, Y: 6129221},
		},
		Inbound: []ApproachStop{
			{Station: "Flughafen", Minutes: 20},
			{Station: "Besucherpark", Minutes: 18},
			{Station: "Hallbergmoos", Minutes: 14},
			{Station: "Ismaning", Minutes: 10},
			{Station: "Unterföhring", Minutes: 6},
			{Station: "Johanneskirchen", Minutes: 4},
			{Station: "Englschalking", Minutes: 2},
			{Station: "Daglfing", Minutes: 0},
		},
		Outbound: []ApproachStop{
			{Station: "Leuchtenbergring", Minutes: 4},
			{Station: "Berg am Laim", Minutes: 2},
			{Station: "Daglfing", Minutes: 0},
		},
		InboundDestination:  "Herrsching",
		OutboundDestination: "Flughafen",
		OutboundTerminus:    "8004168",
	}
}

// Load builds the runtime configuration: defaults first, then an optional
// YAML file (MVG_CONFIG, else ~/.config/mvg/config.yml), then a .env file
// if present, then process environment variables. A missing config file is
// fine; an unreadable or invalid one is an error.
func Load() (AppConfig, error) {
	cfg := Defaults()

	path := os.Getenv("MVG_CONFIG")
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".config", "mvg", "config.yml")
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}
	}

	_ = godotenv.Load()
	applyEnv(&cfg)

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides scalar settings from the environment. godotenv never
// replaces variables that are already set, so real environment variables
// win over .env entries.
func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("MVG_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("MVG_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("GEOPS_URL"); v != "" {
		cfg.Live.URL = v
	}
	if v := os.Getenv("GEOPS_API_KEY"); v != "" {
		cfg.Live.APIKey = v
	}
	if v := os.Getenv("GEOPS_ORIGIN"); v != "" {
		cfg.Live.Origin = v
	}
}

func validate(cfg AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
