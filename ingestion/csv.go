package ingestion

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/datamill/core"
)

// csvLoader decodes a CSV file with a header row. The "input" and "output"
// columns are matched case-insensitively and fall back to the first and
// second columns. Quoting is lenient: a bare quote inside an unquoted field
// is kept literally.
type csvLoader struct{}

var _ loader = csvLoader{}

func (csvLoader) load(data []byte, source string) ([]core.Sample, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: CSV has no header row", core.ErrFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrFormat, err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: CSV must have 'input' and 'output' columns or at least two columns", core.ErrFormat)
	}

	inputCol, outputCol := columnIndex(header, "input", 0), columnIndex(header, "output", 1)

	var samples []core.Sample
	for i := 0; ; i++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrFormat, err)
		}
		samples = append(samples, newSample(source, i, cell(row, inputCol), cell(row, outputCol)))
	}
	return samples, nil
}

func columnIndex(header []string, name string, fallback int) int {
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return fallback
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
