package table

import (
	"time"

	"github.com/google/uuid"
)

// Dialect identifies the flavour of export a dataset came from.
type Dialect int

const (
	// DialectEntity is the semicolon-delimited entity inventory export.
	DialectEntity Dialect = iota
	// DialectEnergy is the comma-delimited energy usage export.
	DialectEnergy
)

// Delimiter returns the field separator used by the dialect.
func (d Dialect) Delimiter() rune {
	if d == DialectEnergy {
		return ','
	}
	return ';'
}

func (d Dialect) String() string {
	if d == DialectEnergy {
		return "energy"
	}
	return "entity"
}

// DialectFor maps a delimiter back to its dialect.
func DialectFor(delim rune) Dialect {
	if delim == ',' {
		return DialectEnergy
	}
	return DialectEntity
}

// Dataset is an Original Dataset: a loaded table plus where it came from.
type Dataset struct {
	ID       string
	Name     string
	Path     string
	Dialect  Dialect
	LoadedAt time.Time
	Table    *Table
}

// NewDataset wraps t with a fresh identifier.
func NewDataset(name, path string, dialect Dialect, t *Table) *Dataset {
	if t == nil {
		t = Empty()
	}
	return &Dataset{
		ID:       uuid.NewString(),
		Name:     name,
		Path:     path,
		Dialect:  dialect,
		LoadedAt: time.Now(),
		Table:    t,
	}
}
