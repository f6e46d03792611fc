package csvio

import (
	"bytes"
	"encoding/csv"

	"github.com/KaramelBytes/entityloom/internal/table"
	"github.com/KaramelBytes/entityloom/internal/utils"
)

// Encode serializes view with the dialect's delimiter, header first.
func Encode(view *table.Table, dialect table.Dialect) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = dialect.Delimiter()
	if err := w.Write(view.Columns()); err != nil {
		return nil, err
	}
	for i := 0; i < view.Len(); i++ {
		row := view.Row(i)
		if len(row) == 1 && row[0] == "" {
			// A bare empty line is skipped by readers; quote the lone empty cell.
			w.Flush()
			buf.WriteString("\"\"\n")
			continue
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write exports view to path.
func Write(path string, view *table.Table, dialect table.Dialect) error {
	data, err := Encode(view, dialect)
	if err != nil {
		return &ExportError{Path: path, Err: err}
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}
