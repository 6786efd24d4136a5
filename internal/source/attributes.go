package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tOgg1/threadreport/internal/logging"
	"github.com/tOgg1/threadreport/internal/models"
)

// ErrMissingHeader is returned for an attribute table without a header row.
var ErrMissingHeader = errors.New("attribute table has no header row")

// ReadAttributes parses a CSV attribute table. The first row names the
// columns and column 0 holds the user id.
func ReadAttributes(r io.Reader) (*models.AttributeTable, error) {
	log := logging.Component("ingest")

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read attribute header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	table := models.NewAttributeTable(header)

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read attribute row: %w", err)
		}
		if len(fields) == 0 || (len(fields) == 1 && strings.TrimSpace(fields[0]) == "") {
			continue
		}
		if dropped := table.Put(fields); dropped > 0 {
			line, _ := reader.FieldPos(0)
			log.Warn().
				Int("line", line).
				Str("user", fields[0]).
				Int("dropped", dropped).
				Msg("attribute row wider than header, extra fields dropped")
		}
	}
	return table, nil
}

// LoadAttributes opens path and reads it with ReadAttributes.
func LoadAttributes(path string) (*models.AttributeTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open attributes %s: %w", path, err)
	}
	defer file.Close()

	table, err := ReadAttributes(file)
	if err != nil {
		return nil, fmt.Errorf("load attributes %s: %w", path, err)
	}
	return table, nil
}
