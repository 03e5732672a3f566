package tui

import (
	"draftpad/internal/model"
	"draftpad/internal/validate"
)

// formController binds field values to validation rules. Errors are kept for every
// field but only shown once the field has been edited or a submit was attempted.
type formController struct {
	rules   *validate.Validator
	touched map[validate.Field]bool
	errs    validate.Errors
}

func newFormController(rules *validate.Validator) *formController {
	return &formController{
		rules:   rules,
		touched: map[validate.Field]bool{},
		errs:    validate.Errors{},
	}
}

// change revalidates a single field after an edit.
func (f *formController) change(field validate.Field, fields model.Fields) {
	f.touched[field] = true
	if fe := f.rules.ValidateField(field, fields); fe != nil {
		f.errs[field] = *fe
		return
	}
	delete(f.errs, field)
}

// validateAll marks every field touched and returns the full error set.
func (f *formController) validateAll(fields model.Fields) validate.Errors {
	for _, field := range validate.Fields {
		f.touched[field] = true
	}
	f.errs = f.rules.Validate(fields)
	return f.errs
}

func (f *formController) errorFor(field validate.Field) string {
	if !f.touched[field] {
		return ""
	}
	if fe, ok := f.errs[field]; ok {
		return fe.Message
	}
	return ""
}
