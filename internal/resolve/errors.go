package resolve

import (
	"fmt"
	"strings"
)

// ResolutionError means none of the known layout variants exist under Root.
// Listing holds a small sample of what does exist, for diagnosis.
type ResolutionError struct {
	Root      string
	Attempted []string
	Listing   []string
	Err       error
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "could not resolve layout under %s: tried %s", e.Root, strings.Join(e.Attempted, ", "))
	if len(e.Listing) > 0 {
		fmt.Fprintf(&b, "; found %s", strings.Join(e.Listing, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// MissingColumnError means neither a field's canonical name nor any alias is
// present in a table.
type MissingColumnError struct {
	Field string
	Tried []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column %s (tried %s)", e.Field, strings.Join(e.Tried, ", "))
}
