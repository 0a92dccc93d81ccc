package report

import (
	"strings"
	"unicode/utf8"
)

// Wizard steps. Step numbers are part of the validator contract.
const (
	StepConfiguration        = 1
	StepDealSelection        = 2
	StepTrancheSelection     = 3
	StepCalculationSelection = 4
	StepReview               = 5
)

// FieldError attributes one validation message to a form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationResult is recomputed on every check, never mutated in place.
type ValidationResult struct {
	Valid  bool
	Errors []FieldError
}

func invalid(errs ...FieldError) ValidationResult {
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateStep runs the validator for one wizard step against the draft.
func ValidateStep(step int, d *Draft) ValidationResult {
	switch step {
	case StepConfiguration:
		return validateConfiguration(d)
	case StepDealSelection:
		return validateDealSelection(d)
	case StepTrancheSelection:
		return validateTrancheSelection(d)
	case StepCalculationSelection:
		return validateCalculationSelection(d)
	case StepReview:
		return ValidateAll(d)
	default:
		return ValidationResult{Valid: true}
	}
}

// ValidateAll unions the errors of every prior step.
func ValidateAll(d *Draft) ValidationResult {
	var errs []FieldError
	for _, step := range []int{StepConfiguration, StepDealSelection, StepTrancheSelection, StepCalculationSelection} {
		errs = append(errs, ValidateStep(step, d).Errors...)
	}
	return invalid(errs...)
}

// CanProceedToNextStep reports whether the wizard may advance past a step.
// The tranche step always permits proceeding when scope is DEAL, regardless
// of its own validator; this is the definitive rule, callers must not
// reimplement it.
func CanProceedToNextStep(step int, d *Draft) bool {
	if step == StepTrancheSelection && d.Scope == ScopeDeal {
		return true
	}
	return ValidateStep(step, d).Valid
}

func validateConfiguration(d *Draft) ValidationResult {
	var errs []FieldError

	name := strings.TrimSpace(d.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "reportName", Message: "Report name is required"})
	} else if utf8.RuneCountInString(name) < 3 {
		errs = append(errs, FieldError{Field: "reportName", Message: "Report name must be at least 3 characters"})
	}

	if !d.Scope.Valid() {
		errs = append(errs, FieldError{Field: "scope", Message: "Select a report scope (DEAL or TRANCHE)"})
	}

	return invalid(errs...)
}

func validateDealSelection(d *Draft) ValidationResult {
	if len(d.SelectedDeals) == 0 {
		return invalid(FieldError{Field: "selectedDeals", Message: "Select at least one deal"})
	}
	return invalid()
}

// validateTrancheSelection is only meaningful for TRANCHE scope; a DEAL
// scope report is always valid here (and callers skip the step entirely).
func validateTrancheSelection(d *Draft) ValidationResult {
	if d.Scope != ScopeTranche {
		return invalid()
	}
	if !d.HasTrancheSelection() {
		return invalid(FieldError{Field: "selectedTranches", Message: "Select at least one tranche"})
	}
	return invalid()
}

func validateCalculationSelection(d *Draft) ValidationResult {
	var errs []FieldError

	if len(d.SelectedCalculations) == 0 {
		errs = append(errs, FieldError{Field: "selectedCalculations", Message: "Select at least one calculation"})
	}

	if d.Columns != nil {
		seen := make(map[string]string, len(d.Columns.Columns))
		for _, col := range d.Columns.Columns {
			key := strings.ToLower(strings.TrimSpace(col.DisplayName))
			if other, dup := seen[key]; dup {
				errs = append(errs, FieldError{
					Field:   "columnPreferences",
					Message: "Duplicate column name: " + other,
				})
				continue
			}
			seen[key] = col.DisplayName
		}

		if len(d.Columns.VisibleColumns()) == 0 && !d.IncludeDefaultColumns {
			errs = append(errs, FieldError{Field: "columnPreferences", Message: "At least one column must be visible"})
		}
	}

	return invalid(errs...)
}
