// Package csvio reads platform CSV exports into datasets and writes views
// back out in the same dialect.
package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/KaramelBytes/entityloom/internal/table"
)

// Options controls loading.
type Options struct {
	// Delimiter forces the field separator. If 0, it is sniffed from the
	// header line.
	Delimiter rune
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads the file at path into an Original Dataset.
func Load(path string, opt Options) (*table.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	ds, err := Parse(data, opt)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	ds.Name = filepath.Base(path)
	ds.Path = path
	return ds, nil
}

// Parse decodes delimited text into a dataset without a source path.
func Parse(data []byte, opt Options) (*table.Dataset, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, errors.New("file is not valid UTF-8")
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = SniffDelimiter(firstLine(data))
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no header line")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	keep, columns := normalizeHeader(header)

	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(rec))
		}
		row := make([]string, len(keep))
		for i, src := range keep {
			if src < len(rec) {
				row[i] = rec[src]
			}
		}
		rows = append(rows, row)
	}
	t, err := table.New(columns, rows)
	if err != nil {
		return nil, err
	}
	return table.NewDataset("", "", table.DialectFor(delim), t), nil
}

// SniffDelimiter classifies a header line: more commas than semicolons and
// at least one digit means the comma-delimited energy export, anything else
// the semicolon-delimited entity export.
func SniffDelimiter(line string) rune {
	commas := strings.Count(line, ",")
	semis := strings.Count(line, ";")
	if commas > semis && strings.IndexFunc(line, unicode.IsDigit) >= 0 {
		return ','
	}
	return ';'
}

func firstLine(data []byte) string {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		data = data[:i]
	}
	return strings.TrimSuffix(string(data), "\r")
}

// normalizeHeader lower-cases and trims names, drops index placeholder
// columns, and disambiguates names that collide after normalization. It
// returns the source index of every kept column with its final name.
func normalizeHeader(header []string) ([]int, []string) {
	var keep []int
	var names []string
	used := map[string]int{}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if isPlaceholder(name) {
			continue
		}
		if n, dup := used[name]; dup {
			candidate := name
			for {
				n++
				candidate = fmt.Sprintf("%s.%d", name, n)
				if _, taken := used[candidate]; !taken {
					break
				}
			}
			used[name] = n
			name = candidate
		}
		used[name] = 0
		keep = append(keep, i)
		names = append(names, name)
	}
	return keep, names
}

func isPlaceholder(name string) bool {
	return name == "" || strings.HasPrefix(name, "unnamed:")
}
