package component

import "fmt"

// missingPropertyError reports a required property absent from a component
// (e.g. a VEVENT with no DTSTART). The spec treats this as a programming
// error in the source calendar, not a recoverable condition: the original
// Python adapter simply lets the KeyError propagate, and this is its Go
// analogue.
type missingPropertyError struct {
	Component string
	Property  string
}

func (e *missingPropertyError) Error() string {
	return fmt.Sprintf("component: %s has no %s property", e.Component, e.Property)
}
