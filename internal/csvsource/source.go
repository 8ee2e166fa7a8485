// Package csvsource reads delimited export files into raw rows. It knows
// nothing about column meaning; that is decided by the importers.
package csvsource

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Options struct {
	Delimiter  rune
	HeaderRows int
	Encoding   string
}

// Row is one data record with the 1-based physical line it started on.
type Row struct {
	Line   int
	Fields []string
}

type Source struct {
	Headers [][]string
	Rows    []Row
}

// Header returns the first header row, or nil when there is none.
func (s *Source) Header() []string {
	if len(s.Headers) == 0 {
		return nil
	}
	return s.Headers[0]
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string, opts Options) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()
	return Read(f, opts)
}

// Read decodes r and splits it into header and data rows. Blank lines are
// dropped; quoted fields may contain the delimiter.
func Read(r io.Reader, opts Options) (*Source, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}

	decoded, err := decode(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(decoded)
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	src := &Source{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if isBlank(record) {
			continue
		}
		if len(src.Headers) < opts.HeaderRows {
			src.Headers = append(src.Headers, record)
			continue
		}
		src.Rows = append(src.Rows, Row{Line: line, Fields: record})
	}
	return src, nil
}

func decode(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", EncodingUTF8:
		br := bufio.NewReader(r)
		if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			_, _ = br.Discard(len(utf8BOM))
		}
		return br, nil
	case EncodingWindows1252:
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Field returns the trimmed field at i, or "" when the row is shorter.
func (r Row) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return strings.TrimSpace(r.Fields[i])
}
