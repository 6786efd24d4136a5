package report

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sink receives the report header once and then one row per message.
type Sink interface {
	WriteHeader(ctx context.Context, columns []string) error
	WriteRow(ctx context.Context, row Row) error
	Close() error
}

// CSVSink writes rows as comma-separated lines with every field quoted.
type CSVSink struct {
	w      *bufio.Writer
	closer io.Closer
	path   string
	count  *countingWriter
	rows   int
	err    error
}

// NewCSVSink writes to w. Close flushes but does not close w.
func NewCSVSink(w io.Writer) *CSVSink {
	count := &countingWriter{w: w}
	return &CSVSink{w: bufio.NewWriter(count), count: count}
}

// CreateCSVSink creates (or truncates) path and writes the report to it.
func CreateCSVSink(path string) (*CSVSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report %s: %w", path, err)
	}
	sink := NewCSVSink(file)
	sink.closer = file
	sink.path = path
	return sink, nil
}

// WriteHeader writes the column names, quoting only where a name needs it.
func (s *CSVSink) WriteHeader(_ context.Context, columns []string) error {
	for i, col := range columns {
		if i > 0 {
			s.writeString(",")
		}
		if strings.ContainsAny(col, "\",\r\n") {
			s.writeQuoted(col)
		} else {
			s.writeString(col)
		}
	}
	s.writeString("\n")
	return s.err
}

// WriteRow writes one row with every field wrapped in quotes.
func (s *CSVSink) WriteRow(_ context.Context, row Row) error {
	for i, field := range row.Fields() {
		if i > 0 {
			s.writeString(",")
		}
		s.writeQuoted(field)
	}
	s.writeString("\n")
	if s.err == nil {
		s.rows++
	}
	return s.err
}

// Rows returns the number of rows written.
func (s *CSVSink) Rows() int {
	return s.rows
}

// Bytes returns the number of bytes flushed to the underlying writer.
func (s *CSVSink) Bytes() int64 {
	return s.count.n
}

// Close flushes buffered output and closes the file it created, if any.
func (s *CSVSink) Close() error {
	flushErr := s.w.Flush()
	if s.closer != nil {
		if err := s.closer.Close(); err != nil && flushErr == nil {
			flushErr = err
		}
		s.closer = nil
	}
	if s.err != nil {
		return s.err
	}
	return flushErr
}

// Abort closes the sink and removes the file it created, if any.
func (s *CSVSink) Abort() error {
	_ = s.Close()
	if s.path == "" {
		return nil
	}
	path := s.path
	s.path = ""
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove partial report %s: %w", path, err)
	}
	return nil
}

func (s *CSVSink) writeQuoted(value string) {
	s.writeString(`"`)
	s.writeString(strings.ReplaceAll(value, `"`, `""`))
	s.writeString(`"`)
}

func (s *CSVSink) writeString(value string) {
	if s.err != nil {
		return
	}
	_, s.err = s.w.WriteString(value)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
