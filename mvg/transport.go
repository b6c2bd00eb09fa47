package mvg

import "strings"

// Canonical transport types of the MVG network.
const (
	TransportUBahn       = "UBAHN"
	TransportSBahn       = "SBAHN"
	TransportBus         = "BUS"
	TransportTram        = "TRAM"
	TransportBahn        = "BAHN"
	TransportRegionalBus = "REGIONAL_BUS"
	TransportRufTaxi     = "RUFTAXI"

	// TransportPedestrian appears in route legs only, never as a filter.
	TransportPedestrian = "PEDESTRIAN"
)

// AllTransportTypes lists every type usable as a filter.
var AllTransportTypes = []string{
	TransportUBahn,
	TransportSBahn,
	TransportBus,
	TransportTram,
	TransportBahn,
	TransportRegionalBus,
	TransportRufTaxi,
}

var transportAliases = map[string]string{
	"ubahn":        TransportUBahn,
	"u-bahn":       TransportUBahn,
	"sbahn":        TransportSBahn,
	"s-bahn":       TransportSBahn,
	"bus":          TransportBus,
	"tram":         TransportTram,
	"bahn":         TransportBahn,
	"re":           TransportBahn,
	"rb":           TransportBahn,
	"regional":     TransportBahn,
	"regionalbus":  TransportRegionalBus,
	"regional_bus": TransportRegionalBus,
	"ruftaxi":      TransportRufTaxi,
	"rufbus":       TransportRufTaxi,
}

// NormalizeTransportType maps a user-supplied alias to its canonical type.
// Matching is case-insensitive; canonical names are accepted as their own
// alias.
func NormalizeTransportType(s string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if t, ok := transportAliases[key]; ok {
		return t, nil
	}
	return "", &UsageError{Msg: "unknown transport type: " + s}
}

// NormalizeTransportTypes parses a comma-separated alias list. Empty
// elements are skipped; an unknown alias fails the whole list.
func NormalizeTransportTypes(csv string) ([]string, error) {
	var types []string
	for _, part := range strings.Split(csv, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := NormalizeTransportType(part)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// ExcludeTransportTypes returns all canonical types minus the given ones.
func ExcludeTransportTypes(excluded []string) []string {
	drop := make(map[string]bool, len(excluded))
	for _, t := range excluded {
		drop[t] = true
	}
	kept := make([]string, 0, len(AllTransportTypes))
	for _, t := range AllTransportTypes {
		if !drop[t] {
			kept = append(kept, t)
		}
	}
	return kept
}
