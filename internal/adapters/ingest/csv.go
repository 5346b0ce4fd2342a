// Package ingest parses raw enrollment files into validated records. It
// owns column-header normalization and field-presence validation so the
// aggregator can assume well-formed input.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/okian/pinsight/internal/domain/model"
)

// Date layouts accepted at the boundary, tried in order.
var dateLayouts = []string{
	"02-01-2006", // DD-MM-YYYY, the upstream export format
	"2006-01-02", // ISO fallback
}

// Column names after normalization.
const (
	colDate     = "date"
	colState    = "state"
	colDistrict = "district"
	colPincode  = "pincode"
	colAge0to5  = "age05"
	colAge5to17 = "age517"
	colAge18    = "age18greater"
)

// Header aliases seen in the wild, mapped to canonical columns.
var headerAliases = map[string]string{
	"pin":       colPincode,
	"age0to5":   colAge0to5,
	"age5to17":  colAge5to17,
	"age18plus": colAge18,
	"age18":     colAge18,
}

// Report summarizes one parse pass. Rejected rows are counted, never fatal
// to the batch.
type Report struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// ParseCSV reads a headered CSV stream into validated records. Rows
// missing any of date/state/district/pincode are rejected and counted;
// absent or malformed count fields default to zero.
func ParseCSV(r io.Reader) ([]model.RawRecord, Report, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, Report{}, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[normalizeHeader(name)] = i
	}
	for _, required := range []string{colDate, colState, colDistrict, colPincode} {
		if _, ok := columns[required]; !ok {
			return nil, Report{}, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var records []model.RawRecord
	var report Report

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, report, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
		}

		rec, ok := parseRow(row, columns)
		if !ok {
			report.Rejected++
			continue
		}
		report.Accepted++
		records = append(records, rec)
	}

	return records, report, nil
}

func parseRow(row []string, columns map[string]int) (model.RawRecord, bool) {
	date, ok := parseDate(field(row, columns, colDate))
	if !ok {
		return model.RawRecord{}, false
	}

	rec := model.RawRecord{
		Date:      date,
		State:     field(row, columns, colState),
		District:  field(row, columns, colDistrict),
		Pincode:   field(row, columns, colPincode),
		Age0to5:   count(field(row, columns, colAge0to5)),
		Age5to17:  count(field(row, columns, colAge5to17)),
		Age18Plus: count(field(row, columns, colAge18)),
	}
	if rec.State == "" || rec.District == "" || rec.Pincode == "" {
		return model.RawRecord{}, false
	}
	return rec, true
}

// normalizeHeader strips everything but letters and digits and lowercases,
// so "Age 0 5", "age_0_5" and "Age-0-5" all map to the same column.
func normalizeHeader(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	normalized := b.String()
	if canonical, ok := headerAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

func field(row []string, columns map[string]int, col string) string {
	idx, ok := columns[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// count parses a non-negative count field; empty or malformed values
// default to zero at this boundary.
func count(value string) int {
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
