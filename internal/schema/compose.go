package schema

import (
	"github.com/totegamma/catalog/internal/domain"
)

// Schema is the validation schema of one submission.
type Schema struct {
	// Fields holds the top level rules of the submission document.
	Fields map[string]Rule
	// Properties constrains the property bag; nil leaves it open.
	Properties *PropertySchema
	// Extensions lists the merged extension ids in merge order.
	Extensions []string
}

func (s Schema) clone() Schema {
	out := Schema{
		Fields:     PropertySchema{Rules: s.Fields}.Merge(PropertySchema{}).Rules,
		Extensions: append([]string(nil), s.Extensions...),
	}
	if s.Properties != nil {
		p := PropertySchema{}.Merge(*s.Properties)
		out.Properties = &p
	}
	return out
}

var polygonSchema = map[string]any{
	"type":     "object",
	"required": []any{"type", "coordinates"},
	"properties": map[string]any{
		"type": map[string]any{"const": domain.GeometryTypePolygon},
		"coordinates": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "array",
					"minItems": 2,
					"maxItems": 2,
					"items":    map[string]any{"type": "number"},
				},
			},
		},
	},
}

func nullableString() map[string]any {
	return map[string]any{"type": []any{"string", "null"}}
}

// BaseItemSchema is the shape every item submission has, before extensions.
func BaseItemSchema() Schema {
	return Schema{
		Fields: map[string]Rule{
			"id":             {Schema: map[string]any{"type": "string"}},
			"collectionId":   {Schema: map[string]any{"type": "string", "minLength": 1}, Required: true},
			"title":          {Schema: nullableString()},
			"description":    {Schema: nullableString()},
			"geometry":       {Schema: polygonSchema, Required: true},
			"datetime":       {Schema: nullableString()},
			"start_datetime": {Schema: nullableString()},
			"end_datetime":   {Schema: nullableString()},
			"dateRange": {Schema: map[string]any{
				"type": []any{"object", "null"},
				"properties": map[string]any{
					"from": nullableString(),
					"to":   nullableString(),
				},
			}},
			"keywords": {Schema: map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			}},
			domain.ExtensionsField: {Schema: map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			}},
			"assets": {Schema: map[string]any{"type": "object"}},
		},
	}
}

// Compose merges the property schema of every selected extension, in
// selection order, into base. It is a pure function of its arguments.
func Compose(base Schema, sel Selection, registry Lookup) (Schema, error) {
	out := base.clone()
	for _, id := range sel.ids {
		ext, ok := registry.Lookup(id)
		if !ok {
			return Schema{}, domain.UnknownExtensionError{ID: id}
		}
		props := PropertySchema{}
		if out.Properties != nil {
			props = *out.Properties
		}
		merged := props.Merge(ext.PropertiesSchema)
		out.Properties = &merged
		out.Extensions = append(out.Extensions, id)
	}
	return out, nil
}

// Document renders the full JSON Schema of the submission. A closed property
// bag is required to be present.
func (s Schema) Document() map[string]any {
	fields := PropertySchema{Rules: s.Fields}.Document()
	delete(fields, "additionalProperties")

	properties := fields["properties"].(map[string]any)
	if s.Properties == nil {
		properties["properties"] = map[string]any{"type": []any{"object", "null"}}
	} else {
		properties["properties"] = s.Properties.Document()
		required, _ := fields["required"].([]any)
		fields["required"] = append(required, "properties")
	}

	fields["$schema"] = "http://json-schema.org/draft-07/schema#"
	return fields
}

// PropertyKeys lists the keys recognised in the property bag; nil when the
// bag is open.
func (s Schema) PropertyKeys() []string {
	if s.Properties == nil {
		return nil
	}
	return s.Properties.Keys()
}
