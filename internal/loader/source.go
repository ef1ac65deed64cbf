package loader

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/tbourn/go-console-navigator/internal/domain"
)

// RowSource is a lazy sequence of parsed rows. Next returns io.EOF once the
// sequence is exhausted; any other error is fatal for the load.
type RowSource interface {
	Next() ([]string, error)
}

// Column order of an input row.
const (
	colProfile = iota
	colRegion
	colType
	colName
)

// ParseRow turns a `profile,region,type,name` row into a record. Missing
// trailing columns default to "" and every column is trimmed. It reports false
// when the row has no name; such rows are skipped, not errors.
func ParseRow(fields []string) (domain.ResourceRecord, bool) {
	col := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}
	r := domain.ResourceRecord{
		Profile: col(colProfile),
		Region:  col(colRegion),
		Type:    col(colType),
		Name:    col(colName),
	}
	return r, r.Name != ""
}

const utf8BOM = "\xef\xbb\xbf"

type csvSource struct {
	r *csv.Reader
}

// NewCSVSource reads comma separated rows from r. Rows may have any number of
// fields, stray quotes are tolerated and a leading UTF-8 BOM is dropped.
func NewCSVSource(r io.Reader) RowSource {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && string(bom) == utf8BOM {
		_, _ = br.Discard(3)
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	return &csvSource{r: cr}
}

func (s *csvSource) Next() ([]string, error) {
	return s.r.Read()
}

type sliceSource struct {
	rows [][]string
	pos  int
}

// NewSliceSource serves rows from memory.
func NewSliceSource(rows [][]string) RowSource {
	return &sliceSource{rows: rows}
}

func (s *sliceSource) Next() ([]string, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}
