package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/totegamma/catalog/internal/domain"
)

const rootContext = "(root)"

// Compiled is a Schema ready to validate documents.
type Compiled struct {
	schema    Schema
	validator *gojsonschema.Schema
}

func (s Schema) Compile() (*Compiled, error) {
	validator, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(s.Document()))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Compiled{schema: s.clone(), validator: validator}, nil
}

func (c *Compiled) Schema() Schema {
	return c.schema.clone()
}

// Validate checks doc, which must be JSON compatible, and returns one
// FieldError per violation.
func (c *Compiled) Validate(doc any) ([]domain.FieldError, error) {
	result, err := c.validator.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]domain.FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, domain.FieldError{
			Path:    fieldPath(desc),
			Message: desc.Description(),
		})
	}
	return errs, nil
}

// fieldPath points required-property failures at the missing key rather
// than at its parent.
func fieldPath(desc gojsonschema.ResultError) string {
	path := desc.Field()
	if path == rootContext {
		path = ""
	}
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			if path == "" {
				return prop
			}
			return strings.Join([]string{path, prop}, ".")
		}
	}
	return path
}
