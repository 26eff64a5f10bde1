package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"gbp-agency-api/apperror"
)

// maxParseWarnings bounds the recoverable-complaint list returned to the
// caller; the rest are only counted.
const maxParseWarnings = 10

// ParsedRow is one data row keyed by normalized header name. Index is the
// 1-based ordinal of the row within the file's data section, counting rows
// that failed to tokenize so indexes still line up with the spreadsheet.
type ParsedRow struct {
	Index int               `json:"row_index"`
	Data  map[string]string `json:"data"`
}

// ParsedCSV is the outcome of tokenizing an upload.
type ParsedCSV struct {
	Headers  []string
	Rows     []ParsedRow
	Warnings []string
	Skipped  int
}

var headerSpaceRe = regexp.MustCompile(`\s+`)

// normalizeHeaders lowercases headers and collapses internal whitespace to
// underscores, so "Contact Name", "contact name" and "CONTACT_NAME" all map
// to the same schema column.
func normalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimPrefix(h, "﻿")
		h = strings.TrimSpace(h)
		h = strings.ToLower(h)
		h = headerSpaceRe.ReplaceAllString(h, "_")
		out[i] = h
	}
	return out
}

// decodeToUTF8 strips a UTF-8 BOM and transcodes Windows-1252 exports, the
// usual shape of a CSV saved from Excel.
func decodeToUTF8(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return data
	}
	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return data
	}
	return out
}

func isBlankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ParseCSV tokenizes an uploaded CSV into header-keyed rows. Tokenizer
// failures on individual lines are skipped and reported as warnings; the
// whole parse fails only when the input is empty or no row could be
// recovered at all.
func ParseCSV(r io.Reader) (*ParsedCSV, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeParseError, "could not read uploaded file")
	}

	data = decodeToUTF8(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperror.New(apperror.CodeParseError, "uploaded file is empty")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	headerRec, err := reader.Read()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeParseError, "could not read header row")
	}
	headers := normalizeHeaders(headerRec)

	hasHeader := false
	for _, h := range headers {
		if h != "" {
			hasHeader = true
			break
		}
	}
	if !hasHeader {
		return nil, apperror.New(apperror.CodeParseError, "header row is empty")
	}

	parsed := &ParsedCSV{Headers: headers}
	rowIndex := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rowIndex++
			parsed.Skipped++
			if len(parsed.Warnings) < maxParseWarnings {
				parsed.Warnings = append(parsed.Warnings, fmt.Sprintf("row %d: %v", rowIndex, err))
			}
			continue
		}
		if isBlankRecord(rec) {
			continue
		}
		rowIndex++

		rowData := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(rec) {
				rowData[h] = strings.TrimSpace(rec[i])
			} else {
				rowData[h] = ""
			}
		}
		if len(rec) > len(headers) && len(parsed.Warnings) < maxParseWarnings {
			parsed.Warnings = append(parsed.Warnings, fmt.Sprintf("row %d: %d extra cells ignored", rowIndex, len(rec)-len(headers)))
		}
		parsed.Rows = append(parsed.Rows, ParsedRow{Index: rowIndex, Data: rowData})
	}

	if len(parsed.Rows) == 0 {
		if parsed.Skipped > 0 {
			return nil, apperror.Newf(apperror.CodeParseError, "no rows could be parsed (%d skipped)", parsed.Skipped)
		}
		return nil, apperror.New(apperror.CodeParseError, "no data rows found")
	}

	return parsed, nil
}
