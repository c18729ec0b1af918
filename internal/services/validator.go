package services

import (
	"fmt"
	"strings"
	"time"

	"hrflow/internal/models"
)

// StructureValidator applies a fixed rule set to a StructuredCV. No AI
// involved: the same record always yields the same ordered defect
// list, which is what lets the correction loop terminate instead of
// oscillating on model output.
type StructureValidator interface {
	Validate(cv *models.StructuredCV) []models.ValidationDefect
}

type structureValidator struct {
	now func() time.Time
}

func NewStructureValidator() StructureValidator {
	return &structureValidator{now: time.Now}
}

// NewStructureValidatorAt fixes the reference time for the non-future
// date rule.
func NewStructureValidatorAt(now func() time.Time) StructureValidator {
	return &structureValidator{now: now}
}

// Validate implements StructureValidator. Defects are reported in
// field order: identity, contact, experience, education.
func (v *structureValidator) Validate(cv *models.StructuredCV) []models.ValidationDefect {
	var defects []models.ValidationDefect

	if strings.TrimSpace(cv.FullName) == "" {
		defects = append(defects, models.ValidationDefect{
			FieldPath:   "full_name",
			Kind:        models.DefectMissing,
			Description: "candidate name is required",
		})
	}

	if !cv.HasContactMethod() {
		defects = append(defects, models.ValidationDefect{
			FieldPath:   "contact",
			Kind:        models.DefectMissing,
			Description: "at least one contact method (email, phone or linkedin) is required",
		})
	}

	for i, exp := range cv.Experience {
		path := fmt.Sprintf("experience[%d]", i)

		if strings.TrimSpace(exp.Position) == "" {
			defects = append(defects, models.ValidationDefect{
				FieldPath:   path + ".position",
				Kind:        models.DefectMissing,
				Description: "experience entry has no role",
			})
		}

		if strings.TrimSpace(exp.StartDate) == "" {
			defects = append(defects, models.ValidationDefect{
				FieldPath:   path + ".start_date",
				Kind:        models.DefectMissing,
				Description: "experience entry has no duration",
			})
		} else {
			defects = append(defects, v.checkDate(path+".start_date", exp.StartDate)...)
		}

		if exp.EndDate != "" {
			defects = append(defects, v.checkDate(path+".end_date", exp.EndDate)...)
		}
	}

	for i, edu := range cv.Education {
		path := fmt.Sprintf("education[%d]", i)

		if edu.StartDate != "" {
			defects = append(defects, v.checkDate(path+".start_date", edu.StartDate)...)
		}
		if edu.EndDate != "" {
			defects = append(defects, v.checkDate(path+".end_date", edu.EndDate)...)
		}
	}

	defects = append(defects, v.checkDuplicateEducation(cv.Education)...)

	return defects
}

// checkDate accepts YYYY, YYYY-MM and the literal "Present", and
// rejects dates after the reference time.
func (v *structureValidator) checkDate(path, value string) []models.ValidationDefect {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "present") {
		return nil
	}

	var parsed time.Time
	var err error
	switch len(value) {
	case 4:
		parsed, err = time.Parse("2006", value)
	case 7:
		parsed, err = time.Parse("2006-01", value)
	default:
		err = fmt.Errorf("unrecognized date layout")
	}
	if err != nil {
		return []models.ValidationDefect{{
			FieldPath:   path,
			Kind:        models.DefectMalformed,
			Description: fmt.Sprintf("date %q is not YYYY, YYYY-MM or Present", value),
		}}
	}

	if parsed.After(v.now()) {
		return []models.ValidationDefect{{
			FieldPath:   path,
			Kind:        models.DefectInconsistent,
			Description: fmt.Sprintf("date %q is in the future", value),
		}}
	}

	return nil
}

// checkDuplicateEducation flags later entries that repeat an earlier
// institution+degree pair. Differing fields of study are tolerated as
// legitimate parallel programs.
func (v *structureValidator) checkDuplicateEducation(entries []models.Education) []models.ValidationDefect {
	var defects []models.ValidationDefect

	seen := make(map[string]int)
	for i, edu := range entries {
		key := strings.ToLower(strings.TrimSpace(edu.Institution)) + "|" +
			strings.ToLower(strings.TrimSpace(edu.Degree)) + "|" +
			strings.ToLower(strings.TrimSpace(edu.FieldOfStudy))
		if first, ok := seen[key]; ok {
			defects = append(defects, models.ValidationDefect{
				FieldPath:   fmt.Sprintf("education[%d]", i),
				Kind:        models.DefectInconsistent,
				Description: fmt.Sprintf("duplicate of education entry %d", first),
			})
			continue
		}
		seen[key] = i
	}

	return defects
}
