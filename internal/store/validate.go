package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/gradebook/internal/model"
)

var fieldValidator = newFieldValidator()

func newFieldValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so messages match the persisted layout.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkFields runs the struct-tag rules on v.
func checkFields(op, kind string, v any) error {
	err := fieldValidator.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return model.NewValidationError(op, kind, err.Error())
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("invalid %s: must satisfy %s", fe.Field(), rule))
	}
	return model.NewValidationError(op, kind, strings.Join(msgs, "; "))
}

// normalizeKey trims and NFC-normalizes a unique key before it is stored.
func normalizeKey(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// sameKey compares two unique keys ignoring case and Unicode form.
func sameKey(a, b string) bool {
	fold := cases.Fold()
	return fold.String(normalizeKey(a)) == fold.String(normalizeKey(b))
}

// checkNationalID applies the injected national-id validator, if any.
func (s *Store) checkNationalID(op, kind, nationalID string) error {
	if s.idValid == nil || s.idValid(nationalID) {
		return nil
	}
	return model.NewValidationError(op, kind, fmt.Sprintf("invalid national id %q", nationalID))
}

// checkNewID rejects a caller-supplied identifier that is already in use by
// any entity.
func (s *Store) checkNewID(op, kind, id string) error {
	if id == "" {
		return nil
	}
	if s.idInUse(id) {
		return model.NewValidationError(op, kind, fmt.Sprintf("id %q already in use", id))
	}
	return nil
}

func (s *Store) idInUse(id string) bool {
	return s.studentIndex(id) >= 0 ||
		s.teacherIndex(id) >= 0 ||
		s.subjectIndex(id) >= 0 ||
		s.sectionIndex(id) >= 0
}

// requireSubject fails when subjectID does not resolve.
func (s *Store) requireSubject(op, kind, subjectID string) error {
	if s.subjectIndex(subjectID) < 0 {
		return model.NewValidationError(op, kind, fmt.Sprintf("subject %q does not exist", subjectID))
	}
	return nil
}

// dedupe returns ids without repeats, preserving first occurrence order.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
