package domain

import (
	"github.com/totegamma/catalog"
)

// RecordFields are the caller owned parts of a record. Temporal and spatial
// values travel separately because they are canonicalized first.
type RecordFields struct {
	ID          string
	Collection  string
	Title       string
	Description string
	Properties  map[string]any
	Links       []catalog.Link
	Assets      map[string]catalog.Asset
	Keywords    []string
	Extensions  []string
}

// Record is what the persistence collaborator stores: the fields plus the
// normalized extent and the original, non-flattened geometry.
type Record struct {
	RecordFields
	Temporal    TemporalExtent
	Geometry    *Geometry
	SpecVersion string
}

// ValidationResult is either Valid(item) or Invalid(errors).
type ValidationResult struct {
	item   *catalog.Item
	errors []FieldError
}

func Valid(item catalog.Item) ValidationResult {
	cp := item.Clone()
	return ValidationResult{item: &cp}
}

func Invalid(errs []FieldError) ValidationResult {
	return ValidationResult{errors: append([]FieldError(nil), errs...)}
}

func (r ValidationResult) IsValid() bool {
	return r.item != nil
}

// Item returns a copy of the validated item; callers cannot reach the
// validated value itself.
func (r ValidationResult) Item() (catalog.Item, bool) {
	if r.item == nil {
		return catalog.Item{}, false
	}
	return r.item.Clone(), true
}

func (r ValidationResult) Errors() []FieldError {
	return append([]FieldError(nil), r.errors...)
}

// Err converts an Invalid result into a SpecValidationError.
func (r ValidationResult) Err() error {
	if r.IsValid() {
		return nil
	}
	return SpecValidationError{Errors: r.Errors()}
}
