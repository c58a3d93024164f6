// Package bulk reads the transparency portal's download archives: a zip holding one
// semicolon separated, Windows-1252 encoded CSV.
package bulk

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"congressdata/internal/flatten"

	"golang.org/x/text/encoding/charmap"
)

var ErrNoCSV = errors.New("no csv in archive")

// FirstCSV returns the name and contents of the first .csv entry in a zip archive.
func FirstCSV(archive []byte) (string, []byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return "", nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range reader.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		contents, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		return f.Name, contents, nil
	}
	return "", nil, ErrNoCSV
}

// Result holds the records parsed from one CSV and the number of malformed rows skipped.
type Result struct {
	Records []flatten.Record
	Skipped int
}

// ReadCSV decodes a Windows-1252 semicolon separated CSV into records of the given dataset.
// Ragged rows are accepted, rows the csv reader cannot parse at all are skipped.
func ReadCSV(data []byte, dataset flatten.BulkDataset) (Result, error) {
	decoded := charmap.Windows1252.NewDecoder().Reader(bytes.NewReader(data))

	reader := csv.NewReader(decoded)
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("read header: %w", err)
	}
	columns := dataset.Rename(header)

	var result Result
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			result.Skipped++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("read row: %w", err)
		}
		result.Records = append(result.Records, dataset.Row(columns, row))
	}
	return result, nil
}

// Extract is FirstCSV followed by ReadCSV.
func Extract(archive []byte, dataset flatten.BulkDataset) (Result, error) {
	_, contents, err := FirstCSV(archive)
	if err != nil {
		return Result{}, err
	}
	return ReadCSV(contents, dataset)
}
