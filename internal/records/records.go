// Package records reads comma separated feeds as streams of typed records.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Record maps normalized header names to inferred values: nil for empty
// fields, time.Time for YYYY-MM-DD dates, float64 for numbers and string
// otherwise.
type Record map[string]any

var (
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	numberPattern  = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	spacesPattern  = regexp.MustCompile(`\s+`)
	byteOrderMark  = "\ufeff"
	trimmedCutset  = "\" \t\r\n"
	errEmptyHeader = errors.New("feed has no header row")
)

// Header normalizes a column name: lower case, whitespace runs replaced by
// underscores. "Country code" becomes "country_code".
func Header(name string) string {
	name = strings.TrimPrefix(name, byteOrderMark)
	name = strings.Trim(name, trimmedCutset)
	return spacesPattern.ReplaceAllString(strings.ToLower(name), "_")
}

// Infer converts a raw field into its typed value.
func Infer(value string) any {
	value = strings.Trim(value, trimmedCutset)
	switch {
	case value == "":
		return nil
	case datePattern.MatchString(value):
		if t, err := time.Parse(time.DateOnly, value); err == nil {
			return t
		}
	case numberPattern.MatchString(value):
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return value
}

// Read streams every record of r to fn, in order. The first row is the header.
// Rows shorter than the header get nil values for missing fields. Reading
// stops at the first error returned by fn. It returns the number of records
// read.
func Read(r io.Reader, fn func(rec Record) error) (int, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, errEmptyHeader
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = Header(name)
	}

	lines := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return lines, fmt.Errorf("failed to read line %d: %w", lines+2, err)
		}

		rec := make(Record, len(columns))
		for i, column := range columns {
			rec[column] = nil
			if i < len(fields) {
				rec[column] = Infer(fields[i])
			}
		}

		lines++
		if err := fn(rec); err != nil {
			return lines, err
		}
	}
}

// Decode copies a record, or any map decoded from JSON, into the struct
// pointed to by out using its mapstructure tags. Numbers and strings are
// converted into each other as needed.
func Decode(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
