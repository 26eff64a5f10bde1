package services

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"gbp-agency-api/utils"
)

const (
	RowStatusValid   = "valid"
	RowStatusWarning = "warning"
	RowStatusError   = "error"
)

// RowIssue is one field-level complaint on a row.
type RowIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationOutcome is the per-row verdict returned by the upload endpoint.
// Status is the row's worst finding: error beats warning beats valid.
type ValidationOutcome struct {
	RowIndex int               `json:"row_index"`
	Status   string            `json:"status"`
	Data     map[string]string `json:"data"`
	Errors   []RowIssue        `json:"errors,omitempty"`
	Warnings []RowIssue        `json:"warnings,omitempty"`
}

// ValidateRow checks one row against the import type's schema. It touches
// nothing outside its arguments, so the same row always yields the same
// outcome.
func ValidateRow(t ImportType, row ParsedRow) ValidationOutcome {
	spec := specFor(t)
	out := ValidationOutcome{RowIndex: row.Index, Status: RowStatusValid, Data: row.Data}

	for _, rule := range spec.fields {
		value := strings.TrimSpace(row.Data[rule.name])
		if value == "" {
			if rule.required {
				out.Errors = append(out.Errors, RowIssue{Field: rule.name, Message: fmt.Sprintf("%s is required", rule.name)})
			}
			continue
		}

		switch rule.check {
		case checkEmail:
			if !utils.ValidateEmail(value) {
				out.Errors = append(out.Errors, RowIssue{Field: rule.name, Message: fmt.Sprintf("%s must be a valid email address", rule.name)})
			}
		case checkURL:
			if !utils.ValidateURL(value) {
				out.Errors = append(out.Errors, RowIssue{Field: rule.name, Message: fmt.Sprintf("%s must start with http:// or https://", rule.name)})
			}
		case checkDate:
			if _, ok := utils.ParseFlexibleDate(value); !ok {
				out.Errors = append(out.Errors, RowIssue{Field: rule.name, Message: fmt.Sprintf("%s is not a recognizable date", rule.name)})
			}
		case checkCoordinate:
			if _, ok := utils.ParseCoordinate(value); !ok {
				out.Errors = append(out.Errors, RowIssue{Field: rule.name, Message: fmt.Sprintf("%s must be numeric", rule.name)})
			}
		}

		if len(rule.enum) > 0 && !utils.InEnum(value, rule.enum) {
			out.Errors = append(out.Errors, RowIssue{Field: rule.name, Message: fmt.Sprintf("%s must be one of: %s", rule.name, strings.Join(rule.enum, ", "))})
		}
		if rule.maxLen > 0 && utf8.RuneCountInString(value) > rule.maxLen {
			out.Warnings = append(out.Warnings, RowIssue{Field: rule.name, Message: fmt.Sprintf("%s exceeds %d characters and will be truncated by the profile surface", rule.name, rule.maxLen)})
		}
	}

	var unknown []string
	for col := range row.Data {
		if col == "" {
			continue
		}
		if _, ok := spec.ruleFor(col); !ok {
			unknown = append(unknown, col)
		}
	}
	sort.Strings(unknown)
	for _, col := range unknown {
		out.Warnings = append(out.Warnings, RowIssue{Field: col, Message: fmt.Sprintf("unrecognized column %q ignored", col)})
	}

	if len(out.Errors) > 0 {
		out.Status = RowStatusError
	} else if len(out.Warnings) > 0 {
		out.Status = RowStatusWarning
	}
	return out
}

// ValidationSummary aggregates the per-row outcomes of one upload.
type ValidationSummary struct {
	Outcomes []ValidationOutcome
	Valid    int
	Warning  int
	Error    int
}

func ValidateRows(t ImportType, rows []ParsedRow) ValidationSummary {
	summary := ValidationSummary{Outcomes: make([]ValidationOutcome, 0, len(rows))}
	for _, row := range rows {
		outcome := ValidateRow(t, row)
		switch outcome.Status {
		case RowStatusError:
			summary.Error++
		case RowStatusWarning:
			summary.Warning++
		default:
			summary.Valid++
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}
	return summary
}
