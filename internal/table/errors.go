package table

import "fmt"

// ColumnNotFoundError reports a column missing from the active dataset.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

// EmptySelectionError reports an operation invoked without the entities or
// rows it needs.
type EmptySelectionError struct {
	What string
}

func (e *EmptySelectionError) Error() string {
	if e.What == "" {
		return "nothing selected"
	}
	return fmt.Sprintf("no %s selected", e.What)
}
