package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueFields(issues []RowIssue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Field)
	}
	return out
}

func TestValidateRowPerType(t *testing.T) {
	tests := []struct {
		name          string
		importType    ImportType
		data          map[string]string
		wantStatus    string
		wantErrFields []string
		wantWarnOn    []string
	}{
		{
			name:       "client valid",
			importType: ImportTypeClient,
			data: map[string]string{
				"name":         "Bella Vista",
				"email":        "owner@bellavista.example.com",
				"website":      "https://bellavista.example.com",
				"package_tier": "professional",
			},
			wantStatus: RowStatusValid,
		},
		{
			name:          "client missing required name",
			importType:    ImportTypeClient,
			data:          map[string]string{"email": "owner@example.com"},
			wantStatus:    RowStatusError,
			wantErrFields: []string{"name"},
		},
		{
			name:          "client malformed email",
			importType:    ImportTypeClient,
			data:          map[string]string{"name": "Bella", "email": "not-an-email"},
			wantStatus:    RowStatusError,
			wantErrFields: []string{"email"},
		},
		{
			name:          "client website without scheme",
			importType:    ImportTypeClient,
			data:          map[string]string{"name": "Bella", "email": "owner@example.com", "website": "bellavista.example.com"},
			wantStatus:    RowStatusError,
			wantErrFields: []string{"website"},
		},
		{
			name:          "client unknown package tier",
			importType:    ImportTypeClient,
			data:          map[string]string{"name": "Bella", "email": "owner@example.com", "package_tier": "platinum"},
			wantStatus:    RowStatusError,
			wantErrFields: []string{"package_tier"},
		},
		{
			name:       "client empty optional enum is fine",
			importType: ImportTypeClient,
			data:       map[string]string{"name": "Bella", "email": "owner@example.com", "package_tier": ""},
			wantStatus: RowStatusValid,
		},
		{
			name:       "client long notes only warn",
			importType: ImportTypeClient,
			data: map[string]string{
				"name":  "Bella",
				"email": "owner@example.com",
				"notes": strings.Repeat("x", notesMaxLen+1),
			},
			wantStatus: RowStatusWarning,
			wantWarnOn: []string{"notes"},
		},
		{
			name:       "client unknown column warns",
			importType: ImportTypeClient,
			data:       map[string]string{"name": "Bella", "email": "owner@example.com", "twitter_handle": "@bella"},
			wantStatus: RowStatusWarning,
			wantWarnOn: []string{"twitter_handle"},
		},
		{
			name:       "error outranks warning",
			importType: ImportTypeClient,
			data:       map[string]string{"email": "owner@example.com", "twitter_handle": "@bella"},
			wantStatus: RowStatusError,
		},
		{
			name:          "location non numeric latitude",
			importType:    ImportTypeLocation,
			data:          map[string]string{"client_id": "1", "name": "Downtown", "address": "221 SW Morrison", "latitude": "north"},
			wantStatus:    RowStatusError,
			wantErrFields: []string{"latitude"},
		},
		{
			name:       "location numeric coordinates",
			importType: ImportTypeLocation,
			data:       map[string]string{"client_id": "1", "name": "Downtown", "address": "221 SW Morrison", "latitude": "45.5180", "longitude": "-122.6740"},
			wantStatus: RowStatusValid,
		},
		{
			name:          "post unparseable schedule",
			importType:    ImportTypePost,
			data:          map[string]string{"location_id": "1", "content": "Fresh menu", "scheduled_at": "next tuesday"},
			wantStatus:    RowStatusError,
			wantErrFields: []string{"scheduled_at"},
		},
		{
			name:       "post long content warns",
			importType: ImportTypePost,
			data:       map[string]string{"location_id": "1", "content": strings.Repeat("x", postContentMaxLen+1)},
			wantStatus: RowStatusWarning,
			wantWarnOn: []string{"content"},
		},
		{
			name:          "media missing url",
			importType:    ImportTypeMedia,
			data:          map[string]string{"location_id": "1"},
			wantStatus:    RowStatusError,
			wantErrFields: []string{"url"},
		},
		{
			name:          "media unknown category",
			importType:    ImportTypeMedia,
			data:          map[string]string{"location_id": "1", "url": "https://cdn.example.com/a.jpg", "category": "selfie"},
			wantStatus:    RowStatusError,
			wantErrFields: []string{"category"},
		},
		{
			name:          "competitor missing everything required",
			importType:    ImportTypeCompetitor,
			data:          map[string]string{"notes": "opened in March"},
			wantStatus:    RowStatusError,
			wantErrFields: []string{"location_id", "name"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			outcome := ValidateRow(tc.importType, ParsedRow{Index: 1, Data: tc.data})

			assert.Equal(t, tc.wantStatus, outcome.Status)
			for _, field := range tc.wantErrFields {
				assert.Contains(t, issueFields(outcome.Errors), field)
			}
			for _, field := range tc.wantWarnOn {
				assert.Contains(t, issueFields(outcome.Warnings), field)
			}
		})
	}
}

func TestValidateRowIsDeterministic(t *testing.T) {
	row := ParsedRow{Index: 3, Data: map[string]string{
		"name":           "Bella",
		"email":          "bad-email",
		"notes":          strings.Repeat("n", notesMaxLen+10),
		"twitter_handle": "@bella",
		"extra_column":   "x",
	}}

	first := ValidateRow(ImportTypeClient, row)
	second := ValidateRow(ImportTypeClient, row)
	assert.Equal(t, first, second)
}

func TestValidateRowsCountsByStatus(t *testing.T) {
	rows := []ParsedRow{
		{Index: 1, Data: map[string]string{"name": "One", "email": "one@example.com"}},
		{Index: 2, Data: map[string]string{"email": "two@example.com"}},
		{Index: 3, Data: map[string]string{"name": "Three", "email": "three@example.com", "surprise": "y"}},
	}

	summary := ValidateRows(ImportTypeClient, rows)

	require.Len(t, summary.Outcomes, 3)
	assert.Equal(t, 1, summary.Valid)
	assert.Equal(t, 1, summary.Error)
	assert.Equal(t, 1, summary.Warning)
	assert.Equal(t, RowStatusValid, summary.Outcomes[0].Status)
	assert.Equal(t, RowStatusError, summary.Outcomes[1].Status)
	assert.Equal(t, RowStatusWarning, summary.Outcomes[2].Status)
}
