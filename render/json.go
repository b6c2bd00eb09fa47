package render

import (
	"encoding/json"
	"io"
)

// JSON writes v with two-space indentation and without HTML escaping,
// so German umlauts and arrows pass through verbatim.
func JSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// JSONError writes an error payload in the shape every subcommand uses.
func JSONError(w io.Writer, msg string) {
	JSON(w, map[string]string{"error": msg})
}
