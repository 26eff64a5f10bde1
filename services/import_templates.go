package services

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"gbp-agency-api/apperror"
)

// ImportTemplate is a generated starter CSV for one import type.
type ImportTemplate struct {
	FileName string
	Content  []byte
}

// TemplateFor renders the starter CSV for an import type: the header row in
// schema order plus one sample row that passes validation unchanged, so a
// downloaded template can be round-tripped through upload as-is.
func TemplateFor(t ImportType) (*ImportTemplate, error) {
	spec := specFor(t)
	if spec == nil {
		return nil, apperror.Newf(apperror.CodeInvalidInput, "unknown import type %q", string(t))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(spec.headerNames()); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "could not render template")
	}
	if err := w.Write(spec.sample); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "could not render template")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "could not render template")
	}

	return &ImportTemplate{
		FileName: fmt.Sprintf("%s_import_template.csv", string(t)),
		Content:  buf.Bytes(),
	}, nil
}
