package live

import "fmt"

// DecodeError is a single malformed feed frame. It is logged and skipped;
// one bad message never ends the subscription.
type DecodeError struct{ Err error }

func (e *DecodeError) Error() string { return fmt.Sprintf("malformed frame: %v", e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }
