package stac

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/totegamma/catalog/internal/domain"
	"github.com/totegamma/catalog/schemas"
)

// Validator checks assembled shapes against the STAC JSON schema.
type Validator interface {
	// Version is the STAC version the validator checks against.
	Version() string
	// Validate returns the violations of shape, nil when it conforms.
	Validate(kind string, shape any) ([]domain.FieldError, error)
}

// SchemaValidator validates against the JSON schemas embedded for one
// STAC version.
type SchemaValidator struct {
	version string
	kinds   map[string]*gojsonschema.Schema
}

func NewSchemaValidator(version string) (*SchemaValidator, error) {
	raw, ok := schemas.Specification(version, schemas.ItemKind)
	if !ok {
		return nil, fmt.Errorf("no %s schema for specification version %s", schemas.ItemKind, version)
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s schema: %w", schemas.ItemKind, err)
	}
	return &SchemaValidator{
		version: version,
		kinds:   map[string]*gojsonschema.Schema{schemas.ItemKind: compiled},
	}, nil
}

func (v *SchemaValidator) Version() string {
	return v.version
}

func (v *SchemaValidator) Validate(kind string, shape any) ([]domain.FieldError, error) {
	compiled, ok := v.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported kind %q", kind)
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(shape))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]domain.FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, domain.FieldError{Path: desc.Field(), Message: desc.Description()})
	}
	return errs, nil
}

var _ Validator = (*SchemaValidator)(nil)
