package domain

import (
	"fmt"
	"strings"
)

// FieldError addresses one failure to a path inside the submitted or
// assembled document.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// FieldErrorer is implemented by every error kind surfaced by the core.
type FieldErrorer interface {
	FieldErrors() []FieldError
}

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// InvalidInputError reports a submitted value that cannot be accepted.
// Errors carries the per-field failures when validation produced several.
type InvalidInputError struct {
	Field  string
	Reason string
	Errors []FieldError
}

func (e InvalidInputError) Error() string {
	if len(e.Errors) > 0 {
		return "invalid input: " + joinFieldErrors(e.Errors)
	}
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e InvalidInputError) Is(target error) bool {
	_, ok := target.(InvalidInputError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidInputError)
	return ok
}

func (e InvalidInputError) FieldErrors() []FieldError {
	if len(e.Errors) > 0 {
		return e.Errors
	}
	return []FieldError{{Path: e.Field, Message: e.Reason}}
}

// MalformedGeometryInputError reports a bounding box string that cannot be parsed.
type MalformedGeometryInputError struct {
	Input  string
	Reason string
}

func (e MalformedGeometryInputError) Error() string {
	return fmt.Sprintf("malformed geometry input %q: %s", e.Input, e.Reason)
}

func (e MalformedGeometryInputError) Is(target error) bool {
	_, ok := target.(MalformedGeometryInputError)
	if ok {
		return true
	}
	_, ok = target.(*MalformedGeometryInputError)
	return ok
}

func (e MalformedGeometryInputError) FieldErrors() []FieldError {
	return []FieldError{{Path: "geometry", Message: e.Error()}}
}

// InvalidGeometryError reports a polygon that breaks the ring invariants.
type InvalidGeometryError struct {
	Reason string
}

func (e InvalidGeometryError) Error() string {
	return "invalid geometry: " + e.Reason
}

func (e InvalidGeometryError) Is(target error) bool {
	_, ok := target.(InvalidGeometryError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidGeometryError)
	return ok
}

func (e InvalidGeometryError) FieldErrors() []FieldError {
	return []FieldError{{Path: "geometry", Message: e.Reason}}
}

// UnknownExtensionError reports a selected extension missing from the registry.
type UnknownExtensionError struct {
	ID string
}

func (e UnknownExtensionError) Error() string {
	return fmt.Sprintf("unknown extension %q", e.ID)
}

func (e UnknownExtensionError) Is(target error) bool {
	_, ok := target.(UnknownExtensionError)
	if ok {
		return true
	}
	_, ok = target.(*UnknownExtensionError)
	return ok
}

func (e UnknownExtensionError) FieldErrors() []FieldError {
	return []FieldError{{Path: "extensions", Message: e.Error()}}
}

// MissingIdentifierError reports a foreign record without a stable identifier.
type MissingIdentifierError struct{}

func (e MissingIdentifierError) Error() string {
	return "record has no identifier"
}

func (e MissingIdentifierError) Is(target error) bool {
	_, ok := target.(MissingIdentifierError)
	if ok {
		return true
	}
	_, ok = target.(*MissingIdentifierError)
	return ok
}

func (e MissingIdentifierError) FieldErrors() []FieldError {
	return []FieldError{{Path: "identifier", Message: e.Error()}}
}

// SpecValidationError carries the external validator's failures verbatim.
type SpecValidationError struct {
	Errors []FieldError
}

func (e SpecValidationError) Error() string {
	return "specification validation failed: " + joinFieldErrors(e.Errors)
}

func (e SpecValidationError) Is(target error) bool {
	_, ok := target.(SpecValidationError)
	if ok {
		return true
	}
	_, ok = target.(*SpecValidationError)
	return ok
}

func (e SpecValidationError) FieldErrors() []FieldError {
	return e.Errors
}

func joinFieldErrors(errs []FieldError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.String()
	}
	return strings.Join(parts, "; ")
}

// Sentinels for errors.Is matching.
var (
	ErrNotFound               = NotFoundError{}
	ErrInvalidInput           = InvalidInputError{}
	ErrMalformedGeometryInput = MalformedGeometryInputError{}
	ErrInvalidGeometry        = InvalidGeometryError{}
	ErrUnknownExtension       = UnknownExtensionError{}
	ErrMissingIdentifier      = MissingIdentifierError{}
	ErrSpecValidation         = SpecValidationError{}
)
