package schema

import (
	"encoding/json"
	"fmt"
)

// ValidationSeverity separates problems that block rendering from those
// that only get logged.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue points at one catalog violation. Path is a JSON pointer
// into the checked tree or element, e.g. /elements/card/props/title.
type ValidationIssue struct {
	Path     string             `json:"path"`
	Code     string             `json:"code"`
	Message  string             `json:"message"`
	Severity ValidationSeverity `json:"severity"`
}

// ValidationResult collects what a catalog check found. A tree that fails
// the catalog is data, not an error: callers inspect Success.
type ValidationResult struct {
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []ValidationIssue `json:"warnings,omitempty"`
}

// Success reports whether the checked value may be rendered.
func (r *ValidationResult) Success() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) add(sev ValidationSeverity, path, code, message string) {
	issue := ValidationIssue{Path: path, Code: code, Message: message, Severity: sev}
	if sev == SeverityError {
		r.Errors = append(r.Errors, issue)
		return
	}
	r.Warnings = append(r.Warnings, issue)
}

// AddError records a violation that fails the check.
func (r *ValidationResult) AddError(path, code, message string) {
	r.add(SeverityError, path, code, message)
}

// AddWarning records a finding that leaves the check passing.
func (r *ValidationResult) AddWarning(path, code, message string) {
	r.add(SeverityWarning, path, code, message)
}

// Merge appends other's issues, keeping their order. other may be nil.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// ToError summarizes a failed check as one VALIDATION_ERROR for logging.
// The message names the first violation and its location; every issue is
// kept under Details["issues"]. Nil when the check passed.
func (r *ValidationResult) ToError() error {
	if r.Success() {
		return nil
	}
	first := r.Errors[0]
	msg := fmt.Sprintf("%s: %s", first.Path, first.Message)
	if extra := len(r.Errors) - 1; extra > 0 {
		msg = fmt.Sprintf("%s (and %d more)", msg, extra)
	}
	return NewError(ErrCodeValidation, msg).WithDetails(map[string]any{
		"issues":   r.Errors,
		"warnings": r.Warnings,
	})
}

// MarshalJSON adds the derived success flag to the encoded result.
func (r ValidationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success  bool              `json:"success"`
		Errors   []ValidationIssue `json:"errors,omitempty"`
		Warnings []ValidationIssue `json:"warnings,omitempty"`
	}{r.Success(), r.Errors, r.Warnings})
}
