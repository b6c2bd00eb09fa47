package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/Lars147/mvg-cli/mvg"
)

var transportEmojis = map[string]string{
	mvg.TransportUBahn:       "🔵",
	mvg.TransportSBahn:       "🟢",
	mvg.TransportBus:         "🚌",
	mvg.TransportTram:        "🚋",
	mvg.TransportBahn:        "🚆",
	mvg.TransportRegionalBus: "🚍",
	mvg.TransportRufTaxi:     "🚕",
	mvg.TransportPedestrian:  "🚶",
}

// TransportEmoji returns the icon for a transport type, with a generic
// fallback for types the table does not know.
func TransportEmoji(transportType string) string {
	if e, ok := transportEmojis[transportType]; ok {
		return e
	}
	return "🚇"
}

// FormatDelay renders a delay in minutes with a status icon.
func FormatDelay(minutes int) string {
	switch {
	case minutes == 0:
		return "✅ pünktlich"
	case minutes > 5:
		return fmt.Sprintf("🔴 +%d min", minutes)
	case minutes > 0:
		return fmt.Sprintf("🟡 +%d min", minutes)
	default:
		return fmt.Sprintf("⏩ %d min früh", -minutes)
	}
}

// FormatClock renders a time as HH:MM in local time.
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Local().Format("15:04")
}

// FormatClockMillis renders a Unix millisecond timestamp as HH:MM.
func FormatClockMillis(ms int64) string {
	if ms == 0 {
		return "N/A"
	}
	return FormatClock(time.UnixMilli(ms))
}

// FormatDateTimeMillis renders a Unix millisecond timestamp with its
// local date, as used for alert validity windows.
func FormatDateTimeMillis(ms int64) string {
	if ms == 0 {
		return "N/A"
	}
	return time.UnixMilli(ms).Local().Format("02.01.2006 15:04")
}

var htmlTags = regexp.MustCompile(`<[^>]+>`)

// CleanHTML strips markup from alert descriptions, which arrive as HTML
// fragments with entity-encoded umlauts and non-breaking spaces.
func CleanHTML(s string) string {
	s = htmlTags.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(s)
}
