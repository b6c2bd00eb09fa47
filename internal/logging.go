package internal

import (
	"log"
	"os"
)

// InitLogging routes diagnostics to stderr so stdout stays clean for
// command output (tables or JSON).
func InitLogging() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}
