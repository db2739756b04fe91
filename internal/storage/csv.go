package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"quantisuite/internal/calc"
	"quantisuite/internal/history"
)

var csvHeader = []string{"Timestamp", "Type", "Expression", "Result"}

// WriteCSV writes entries with a Timestamp,Type,Expression,Result header.
func WriteCSV(w io.Writer, entries []history.Entry) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	for _, e := range entries {
		row := []string{e.Timestamp.Format(time.RFC3339), string(e.Type), e.Expression, e.Result}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("error writing CSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads what WriteCSV wrote. The header row is optional.
func ReadCSV(r io.Reader) ([]history.Entry, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = len(csvHeader)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && records[0][0] == csvHeader[0] {
		records = records[1:]
	}

	entries := make([]history.Entry, 0, len(records))
	for i, row := range records {
		ts, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad timestamp %q: %w", i+1, row[0], err)
		}
		entries = append(entries, history.Entry{
			Timestamp:  ts,
			Type:       calc.Kind(row[1]),
			Expression: row[2],
			Result:     row[3],
		})
	}
	return entries, nil
}

// ExportCSV writes entries to filename.
func ExportCSV(entries []history.Entry, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportCSV loads entries from filename.
func ImportCSV(filename string) ([]history.Entry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
