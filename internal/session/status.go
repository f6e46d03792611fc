package session

import "fmt"

// Level classifies a status message for display.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return "info"
}

// Symbol returns the marker printed in front of CLI messages.
func (l Level) Symbol() string {
	switch l {
	case LevelSuccess:
		return "✓"
	case LevelWarn:
		return "⚠"
	case LevelError:
		return "✗"
	}
	return "•"
}

// Status is the outcome of a session operation as shown to the user.
type Status struct {
	Level   Level
	Message string
	// Rows is the row count of the current view after the operation.
	Rows int
}

func (s Status) String() string {
	return fmt.Sprintf("%s %s", s.Level.Symbol(), s.Message)
}
