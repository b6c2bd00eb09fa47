package mvg_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Lars147/mvg-cli/config"
	"github.com/Lars147/mvg-cli/mvg"
)

// newTestClient wires a Client against a local test server.
func newTestClient(t *testing.T, handler http.Handler) (*mvg.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := mvg.NewClient(config.APIConfig{
		BaseURL:        srv.URL,
		TimeoutSeconds: 5,
		UserAgent:      "mvg-cli-test",
	})
	return client, srv
}

func respondJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("Failed to encode response: %v", err)
	}
}

func TestResolveStation(t *testing.T) {
	results := []map[string]any{
		{"type": "ADDRESS", "name": "Marienplatz", "latitude": 48.137, "longitude": 11.575},
		{"type": "STATION", "globalId": "de:09162:100", "name": "Marienplatz Nord", "transportTypes": []string{"UBAHN"}},
		{"type": "STATION", "globalId": "de:09162:2", "name": "marienplatz", "transportTypes": []string{"UBAHN", "SBAHN"}},
	}

	tests := []struct {
		name       string
		query      string
		payload    []map[string]any
		expectedID string
		notFound   bool
	}{
		{
			name:       "exact match beats result order",
			query:      "Marienplatz",
			payload:    results,
			expectedID: "de:09162:2",
		},
		{
			name:       "first station when nothing matches exactly",
			query:      "Marien",
			payload:    results,
			expectedID: "de:09162:100",
		},
		{
			name:     "no results",
			query:    "zzzzz",
			payload:  []map[string]any{},
			notFound: true,
		},
		{
			name:  "addresses never resolve as stations",
			query: "Marienplatz",
			payload: []map[string]any{
				{"type": "ADDRESS", "name": "Marienplatz", "latitude": 48.137, "longitude": 11.575},
			},
			notFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/locations" {
					t.Errorf("expected /locations, got %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("query"); got != tt.query {
					t.Errorf("expected query %q, got %q", tt.query, got)
				}
				respondJSON(t, w, tt.payload)
			}))

			station, err := client.ResolveStation(context.Background(), tt.query)
			if tt.notFound {
				if !errors.Is(err, mvg.ErrNotFound) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if station.GlobalID != tt.expectedID {
				t.Errorf("expected %s, got %s", tt.expectedID, station.GlobalID)
			}
		})
	}
}

func TestResolveLocation_AcceptsAddresses(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, []map[string]any{
			{"type": "ADDRESS", "name": "Leopoldstraße 1", "latitude": 48.15, "longitude": 11.58},
		})
	}))

	loc, err := client.ResolveLocation(context.Background(), "Leopoldstraße 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.GlobalID != "" {
		t.Errorf("address should have no globalId, got %s", loc.GlobalID)
	}
	if loc.Latitude == 0 || loc.Longitude == 0 {
		t.Error("address should carry coordinates")
	}
}

func TestDepartures(t *testing.T) {
	now := time.Now()
	ms := func(d time.Duration) int64 { return now.Add(d).UnixMilli() }

	payload := []map[string]any{
		{"plannedDepartureTime": ms(40 * time.Minute), "realtimeDepartureTime": ms(40 * time.Minute), "label": "S8", "transportType": "SBAHN", "destination": "Flughafen"},
		{"plannedDepartureTime": ms(5 * time.Minute), "realtimeDepartureTime": ms(6 * time.Minute), "label": "U3", "transportType": "UBAHN", "destination": "Fürstenried West"},
		{"plannedDepartureTime": ms(20 * time.Minute), "realtimeDepartureTime": ms(25 * time.Minute), "label": "19", "transportType": "TRAM", "destination": "Pasing", "delayInMinutes": 5},
		{"plannedDepartureTime": ms(30 * time.Minute), "label": "54", "transportType": "BUS", "destination": "Lorettoplatz"},
	}

	var gotQuery map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/departures" {
			t.Errorf("expected /departures, got %s", r.URL.Path)
		}
		gotQuery = map[string]string{
			"globalId":        r.URL.Query().Get("globalId"),
			"limit":           r.URL.Query().Get("limit"),
			"transportTypes":  r.URL.Query().Get("transportTypes"),
			"offsetInMinutes": r.URL.Query().Get("offsetInMinutes"),
		}
		respondJSON(t, w, payload)
	}))

	deps, err := client.Departures(context.Background(), "de:09162:2", mvg.DepartureOptions{
		Limit:          10,
		TransportTypes: []string{"SBAHN", "UBAHN", "TRAM", "BUS"},
		OffsetMinutes:  15,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery["globalId"] != "de:09162:2" {
		t.Errorf("expected globalId de:09162:2, got %s", gotQuery["globalId"])
	}
	if gotQuery["limit"] != "10" {
		t.Errorf("expected limit 10, got %s", gotQuery["limit"])
	}
	if gotQuery["transportTypes"] != "SBAHN,UBAHN,TRAM,BUS" {
		t.Errorf("expected joined transportTypes, got %s", gotQuery["transportTypes"])
	}
	if gotQuery["offsetInMinutes"] != "" {
		t.Error("offset must not be sent upstream")
	}

	// The U3 leaves in 6 effective minutes and falls inside the 15 minute
	// offset window.
	if len(deps) != 3 {
		t.Fatalf("expected 3 departures after offset filter, got %d", len(deps))
	}
	for i := 1; i < len(deps); i++ {
		if deps[i-1].PlannedDepartureTime > deps[i].PlannedDepartureTime {
			t.Errorf("departures not sorted by planned time: %d before %d", deps[i-1].PlannedDepartureTime, deps[i].PlannedDepartureTime)
		}
	}
	cutoff := now.Add(15 * time.Minute).UnixMilli()
	for _, d := range deps {
		if d.EffectiveTime() < cutoff {
			t.Errorf("departure %s leaves before the offset cutoff", d.Label)
		}
	}
}

func TestDepartures_LimitCapsResult(t *testing.T) {
	now := time.Now()
	var payload []map[string]any
	for i := 0; i < 8; i++ {
		payload = append(payload, map[string]any{
			"plannedDepartureTime": now.Add(time.Duration(i+1) * 10 * time.Minute).UnixMilli(),
			"label":                fmt.Sprintf("U%d", i+1),
			"transportType":        "UBAHN",
			"destination":          "Somewhere",
		})
	}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, payload)
	}))

	deps, err := client.Departures(context.Background(), "de:09162:2", mvg.DepartureOptions{Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) != 5 {
		t.Errorf("expected 5 departures, got %d", len(deps))
	}
}

func TestClientErrors(t *testing.T) {
	t.Run("non-2xx is an upstream error", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "internal failure", http.StatusInternalServerError)
		}))
		_, err := client.Departures(context.Background(), "de:09162:2", mvg.DepartureOptions{})
		var ue *mvg.UpstreamError
		if !errors.As(err, &ue) {
			t.Fatalf("expected UpstreamError, got %v", err)
		}
		if ue.Status != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", ue.Status)
		}
	})

	t.Run("malformed payload is an upstream error", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}))
		_, err := client.SearchStations(context.Background(), "Marienplatz")
		var ue *mvg.UpstreamError
		if !errors.As(err, &ue) {
			t.Fatalf("expected UpstreamError, got %v", err)
		}
		if ue.Err == nil {
			t.Error("decode failures should carry the underlying error")
		}
	})

	t.Run("unreachable server is a network error", func(t *testing.T) {
		client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()
		_, err := client.SearchStations(context.Background(), "Marienplatz")
		var ne *mvg.NetworkError
		if !errors.As(err, &ne) {
			t.Fatalf("expected NetworkError, got %v", err)
		}
	})
}

func TestRoutes(t *testing.T) {
	arrival := "2026-08-22T18:30:00+02:00"
	payload := []map[string]any{
		{
			"parts": []map[string]any{
				{
					"from": map[string]any{"name": "Marienplatz", "plannedDeparture": "2026-08-22T18:00:00+02:00", "platform": 2},
					"to":   map[string]any{"name": "Ostbahnhof", "plannedDeparture": "2026-08-22T18:08:00+02:00", "arrivalDelayInMinutes": 2},
					"line": map[string]any{"label": "S8", "transportType": "SBAHN"},
				},
				{
					"from": map[string]any{"name": "Ostbahnhof", "plannedDeparture": "2026-08-22T18:10:00+02:00"},
					"to":   map[string]any{"name": "Garching", "plannedDeparture": arrival},
					"line": nil,
				},
			},
		},
	}

	var gotQuery map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/routes" {
			t.Errorf("expected /routes, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"originStationGlobalId":      q.Get("originStationGlobalId"),
			"destinationStationGlobalId": q.Get("destinationStationGlobalId"),
			"routingDateTime":            q.Get("routingDateTime"),
			"routingDateTimeIsArrival":   q.Get("routingDateTimeIsArrival"),
			"routingMode":                q.Get("routingMode"),
			"walkSpeed":                  q.Get("walkSpeed"),
			"wheelchair":                 q.Get("wheelchair"),
			"viaStationGlobalId":         q.Get("viaStationGlobalId"),
			"transportTypes":             q.Get("transportTypes"),
		}
		respondJSON(t, w, payload)
	}))

	target := time.Date(2026, 8, 22, 18, 45, 0, 0, time.FixedZone("CEST", 2*3600))
	routes, err := client.Routes(context.Background(),
		mvg.Location{GlobalID: "de:09162:2", Name: "Marienplatz"},
		mvg.Location{GlobalID: "de:09184:460", Name: "Garching"},
		mvg.RouteOptions{
			Time:           target,
			ArriveBy:       true,
			TransportTypes: []string{"SBAHN"},
			Mode:           mvg.RoutingModeLessChanges,
			WalkSpeed:      mvg.WalkSpeedSlow,
			Accessible:     true,
			Via:            &mvg.Location{GlobalID: "de:09162:6", Name: "Ostbahnhof"},
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedQuery := map[string]string{
		"originStationGlobalId":      "de:09162:2",
		"destinationStationGlobalId": "de:09184:460",
		"routingDateTime":            target.Format(time.RFC3339),
		"routingDateTimeIsArrival":   "true",
		"routingMode":                "LESS_CHANGES",
		"walkSpeed":                  "SLOW",
		"wheelchair":                 "true",
		"viaStationGlobalId":         "de:09162:6",
		"transportTypes":             "SBAHN",
	}
	for k, want := range expectedQuery {
		if gotQuery[k] != want {
			t.Errorf("param %s: expected %q, got %q", k, want, gotQuery[k])
		}
	}

	if len(routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(routes))
	}
	r := routes[0]

	// The route arrival is the final leg's plannedDeparture, the
	// endpoint's stand-in for an arrival field.
	wantArrival, _ := time.Parse(time.RFC3339, arrival)
	if !r.Arrival.Equal(wantArrival) {
		t.Errorf("expected arrival %v, got %v", wantArrival, r.Arrival)
	}
	if r.Arrival.After(target) {
		t.Errorf("arrive-by route lands at %v, after the requested %v", r.Arrival, target)
	}
	if r.DurationMinutes != 30 {
		t.Errorf("expected 30 minute duration, got %d", r.DurationMinutes)
	}
	if len(r.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(r.Legs))
	}
	if r.Legs[0].Walking() {
		t.Error("first leg should not be a walking leg")
	}
	if !r.Legs[1].Walking() {
		t.Error("second leg without a line should be a walking leg")
	}
	if r.Legs[0].To.DelayInMinutes != 2 {
		t.Errorf("expected arrival delay 2, got %d", r.Legs[0].To.DelayInMinutes)
	}
}

func TestRoutes_AddressEndpoints(t *testing.T) {
	var q map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = map[string]string{
			"originLatitude":        r.URL.Query().Get("originLatitude"),
			"originLongitude":       r.URL.Query().Get("originLongitude"),
			"originStationGlobalId": r.URL.Query().Get("originStationGlobalId"),
		}
		respondJSON(t, w, []map[string]any{})
	}))

	_, err := client.Routes(context.Background(),
		mvg.Location{Name: "Leopoldstraße 1", Latitude: 48.15, Longitude: 11.58},
		mvg.Location{GlobalID: "de:09162:2"},
		mvg.RouteOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q["originStationGlobalId"] != "" {
		t.Error("address origin must not send a globalId")
	}
	if q["originLatitude"] != "48.15" || q["originLongitude"] != "11.58" {
		t.Errorf("expected coordinates, got %s / %s", q["originLatitude"], q["originLongitude"])
	}
}

func TestNearby_SortedByDistance(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stations/nearby" {
			t.Errorf("expected /stations/nearby, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("latitude") != "48.1351" {
			t.Errorf("expected latitude 48.1351, got %s", r.URL.Query().Get("latitude"))
		}
		respondJSON(t, w, []map[string]any{
			{"type": "STATION", "globalId": "c", "name": "C", "distanceInMeters": 900},
			{"type": "STATION", "globalId": "a", "name": "A", "distanceInMeters": 120},
			{"type": "STATION", "globalId": "b", "name": "B", "distanceInMeters": 450},
		})
	}))

	stations, err := client.Nearby(context.Background(), 48.1351, 11.5820)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []string
	for _, s := range stations {
		ids = append(ids, s.GlobalID)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("expected [a b c] by distance, got %v", ids)
	}
}

func TestMessages(t *testing.T) {
	var gotGlobalID string
	var hasParam bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("expected /messages, got %s", r.URL.Path)
		}
		gotGlobalID = r.URL.Query().Get("globalId")
		_, hasParam = r.URL.Query()["globalId"]
		respondJSON(t, w, []map[string]any{
			{"title": "Stammstrecke gesperrt", "severity": "HIGH", "affectedLines": []string{"S1", "S8"}, "validFrom": 1755856800000, "validTo": 1755943200000},
		})
	}))

	alerts, err := client.Messages(context.Background(), "de:09162:2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotGlobalID != "de:09162:2" {
		t.Errorf("expected globalId param, got %q", gotGlobalID)
	}
	if len(alerts) != 1 || alerts[0].Severity != "HIGH" {
		t.Errorf("unexpected alerts: %+v", alerts)
	}

	if _, err := client.Messages(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasParam {
		t.Error("empty station must not send a globalId param")
	}
}

func TestLines_FilteredClientSide(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lines" {
			t.Errorf("expected /lines, got %s", r.URL.Path)
		}
		if len(r.URL.Query()) != 0 {
			t.Errorf("lines endpoint takes no params, got %v", r.URL.Query())
		}
		respondJSON(t, w, []map[string]any{
			{"label": "U3", "transportType": "UBAHN", "network": "swm"},
			{"label": "19", "transportType": "TRAM", "network": "swm"},
			{"label": "S8", "transportType": "SBAHN", "network": "db"},
		})
	}))

	lines, err := client.Lines(context.Background(), "TRAM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 || lines[0].Label != "19" {
		t.Errorf("expected only the tram line, got %+v", lines)
	}

	all, err := client.Lines(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected all 3 lines unfiltered, got %d", len(all))
	}
}
