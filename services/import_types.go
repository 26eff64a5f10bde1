package services

import (
	"strings"

	"gorm.io/gorm"

	"gbp-agency-api/apperror"
	"gbp-agency-api/models"
)

// ImportType selects which entity a bulk job creates rows for.
type ImportType string

const (
	ImportTypeClient     ImportType = "client"
	ImportTypeLocation   ImportType = "location"
	ImportTypePost       ImportType = "post"
	ImportTypeMedia      ImportType = "media"
	ImportTypeCompetitor ImportType = "competitor"
)

// fieldCheck is a format rule applied to one CSV column.
type fieldCheck int

const (
	checkNone fieldCheck = iota
	checkEmail
	checkURL
	checkDate
	checkCoordinate
)

// Silent-truncation ceilings of the downstream profile surface. Exceeding
// them is a warning, not an error.
const (
	postContentMaxLen = 1500
	notesMaxLen       = 2000
	descriptionMaxLen = 1000
)

// fieldRule describes one expected column of an import type.
type fieldRule struct {
	name     string
	required bool
	check    fieldCheck
	enum     []string
	maxLen   int
}

type inserterFunc func(db *gorm.DB, agencyID, actorID uint, row map[string]string) (string, error)

// importSpec is everything the pipeline knows about one import type:
// the column schema, the template sample, and the inserter, held as data so
// every stage dispatches through this single table.
type importSpec struct {
	fields []fieldRule
	sample []string
	insert inserterFunc
}

var importRegistry = map[ImportType]*importSpec{
	ImportTypeClient: {
		fields: []fieldRule{
			{name: "name", required: true},
			{name: "email", required: true, check: checkEmail},
			{name: "phone"},
			{name: "website", check: checkURL},
			{name: "contact_name"},
			{name: "package_tier", enum: models.PackageTiers},
			{name: "notes", maxLen: notesMaxLen},
		},
		sample: []string{"Bella Vista Trattoria", "owner@bellavista.example.com", "+1 503 555 0142", "https://bellavista.example.com", "Maria Conti", "professional", "Prefers weekly summaries"},
		insert: insertClientRow,
	},
	ImportTypeLocation: {
		fields: []fieldRule{
			{name: "client_id", required: true},
			{name: "name", required: true},
			{name: "address", required: true},
			{name: "city"},
			{name: "state"},
			{name: "postal_code"},
			{name: "country"},
			{name: "phone"},
			{name: "latitude", check: checkCoordinate},
			{name: "longitude", check: checkCoordinate},
			{name: "place_id"},
			{name: "primary_category"},
		},
		sample: []string{"1", "Bella Vista Downtown", "221 SW Morrison St", "Portland", "OR", "97204", "US", "+1 503 555 0143", "45.5180", "-122.6740", "ChIJd8BlQ2BZwokRAFUEcm_qrcA", "Italian restaurant"},
		insert: insertLocationRow,
	},
	ImportTypePost: {
		fields: []fieldRule{
			{name: "location_id", required: true},
			{name: "content", required: true, maxLen: postContentMaxLen},
			{name: "title"},
			{name: "content_type", enum: models.PostContentTypes},
			{name: "cta_url", check: checkURL},
			{name: "scheduled_at", check: checkDate},
		},
		sample: []string{"1", "Fresh truffle menu this weekend only. Book a table now!", "Truffle Weekend", "offer", "https://bellavista.example.com/reservations", "2025-11-07 17:00"},
		insert: insertPostRow,
	},
	ImportTypeMedia: {
		fields: []fieldRule{
			{name: "location_id", required: true},
			{name: "url", required: true, check: checkURL},
			{name: "category", enum: models.MediaCategories},
			{name: "description", maxLen: descriptionMaxLen},
		},
		sample: []string{"1", "https://cdn.example.com/photos/dining-room.jpg", "interior", "Main dining room after the 2025 refresh"},
		insert: insertMediaRow,
	},
	ImportTypeCompetitor: {
		fields: []fieldRule{
			{name: "location_id", required: true},
			{name: "name", required: true},
			{name: "place_id"},
			{name: "website", check: checkURL},
			{name: "notes", maxLen: notesMaxLen},
		},
		sample: []string{"1", "Piazza Nuova", "ChIJN1t_tDeuEmsRUsoyG83frY4", "https://piazzanuova.example.com", "Opened two blocks away in March"},
		insert: insertCompetitorRow,
	},
}

// ParseImportType validates a raw type token at the API boundary. Unknown
// types are rejected here so the pipeline itself only ever sees registry
// members.
func ParseImportType(raw string) (ImportType, error) {
	t := ImportType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := importRegistry[t]; !ok {
		return "", apperror.Newf(apperror.CodeInvalidInput, "unknown import type %q, expected one of: %s", raw, strings.Join(ImportTypeNames(), ", "))
	}
	return t, nil
}

// ImportTypeNames returns the supported types in a stable order.
func ImportTypeNames() []string {
	return []string{
		string(ImportTypeClient),
		string(ImportTypeLocation),
		string(ImportTypePost),
		string(ImportTypeMedia),
		string(ImportTypeCompetitor),
	}
}

func specFor(t ImportType) *importSpec {
	return importRegistry[t]
}

// headerNames returns the template column order for the type.
func (s *importSpec) headerNames() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.name
	}
	return out
}

func (s *importSpec) ruleFor(column string) (fieldRule, bool) {
	for _, f := range s.fields {
		if f.name == column {
			return f, true
		}
	}
	return fieldRule{}, false
}
