// Package commutelog appends one line per successful tick to a plain CSV
// file: <unix_timestamp>,<current_minutes>,<baseline_minutes>. There is no
// header row and the file is never truncated or rotated.
package commutelog

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Record is one parsed log line
type Record struct {
	Timestamp       time.Time
	CurrentMinutes  float64
	BaselineMinutes float64
}

// Writer appends records to the commute log
type Writer struct {
	file *os.File
	csv  *csv.Writer
}

// Open opens path for appending, creating it if absent
func Open(path string) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open commute log: %w", err)
	}
	return &Writer{file: file, csv: csv.NewWriter(file)}, nil
}

// Append writes one line and flushes it so a crash never loses a tick
func (w *Writer) Append(r Record) error {
	if err := w.csv.Write(FormatRecord(r)); err != nil {
		return fmt.Errorf("failed to write commute log: %w", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("failed to flush commute log: %w", err)
	}
	return nil
}

// Close flushes pending data and closes the file
func (w *Writer) Close() error {
	w.csv.Flush()
	flushErr := w.csv.Error()
	if err := w.file.Close(); err != nil {
		return err
	}
	return flushErr
}

// FormatRecord renders the three fields of a log line
func FormatRecord(r Record) []string {
	return []string{
		strconv.FormatInt(r.Timestamp.Unix(), 10),
		formatMinutes(r.CurrentMinutes),
		formatMinutes(r.BaselineMinutes),
	}
}

// FormatLine renders a complete log line including the trailing newline
func FormatLine(r Record) string {
	f := FormatRecord(r)
	return f[0] + "," + f[1] + "," + f[2] + "\n"
}

// formatMinutes uses the shortest representation that parses back exactly
func formatMinutes(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseLine parses one log line, with or without its newline
func ParseLine(line string) (Record, error) {
	records, err := ReadAll(strings.NewReader(line))
	if err != nil {
		return Record{}, err
	}
	if len(records) != 1 {
		return Record{}, fmt.Errorf("expected one record, got %d", len(records))
	}
	return records[0], nil
}

// ReadAll parses every line of a commute log
func ReadAll(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = 3

	var records []Record
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read commute log: %w", err)
		}
		record, err := parseFields(fields)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}
}

// ReadFile parses the commute log at path
func ReadFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadAll(file)
}

func parseFields(fields []string) (Record, error) {
	// Older logs wrote the timestamp as a float ("1433258700.0")
	ts, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid timestamp %q: %w", fields[0], err)
	}
	current, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid current minutes %q: %w", fields[1], err)
	}
	baseline, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid baseline minutes %q: %w", fields[2], err)
	}
	return Record{
		Timestamp:       time.Unix(int64(ts), 0),
		CurrentMinutes:  current,
		BaselineMinutes: baseline,
	}, nil
}
