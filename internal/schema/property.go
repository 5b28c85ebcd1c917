// Package schema composes the validation schema of a record submission from
// a base shape and the property schemas of explicitly selected extensions.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/totegamma/catalog"
)

// Rule is the rule for one key: a JSON Schema fragment and whether the key
// has to be present.
type Rule struct {
	Schema   map[string]any
	Required bool
}

func (r Rule) clone() Rule {
	return Rule{Schema: catalog.CloneMap(r.Schema), Required: r.Required}
}

// PropertySchema describes the allowed keys of a property bag.
type PropertySchema struct {
	Rules map[string]Rule
}

// Merge returns the field-wise union of p and other. On a key defined by
// both, the rule of other wins.
func (p PropertySchema) Merge(other PropertySchema) PropertySchema {
	out := PropertySchema{Rules: make(map[string]Rule, len(p.Rules)+len(other.Rules))}
	for k, r := range p.Rules {
		out.Rules[k] = r.clone()
	}
	for k, r := range other.Rules {
		out.Rules[k] = r.clone()
	}
	return out
}

func (p PropertySchema) Keys() []string {
	keys := make([]string, 0, len(p.Rules))
	for k := range p.Rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Document renders p as a JSON Schema object. Keys outside the rules are
// rejected.
func (p PropertySchema) Document() map[string]any {
	properties := make(map[string]any, len(p.Rules))
	required := []any{}
	for _, k := range p.Keys() {
		r := p.Rules[k]
		properties[k] = catalog.CloneMap(r.Schema)
		if r.Required {
			required = append(required, k)
		}
	}
	doc := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

// ParsePropertySchema reads a JSON Schema shaped object with "properties"
// and an optional "required" list.
func ParsePropertySchema(doc map[string]any) (PropertySchema, error) {
	out := PropertySchema{Rules: map[string]Rule{}}

	rawProps, ok := doc["properties"]
	if !ok {
		return out, nil
	}
	props, ok := rawProps.(map[string]any)
	if !ok {
		return PropertySchema{}, fmt.Errorf("properties must be an object")
	}
	for k, v := range props {
		fragment, ok := v.(map[string]any)
		if !ok {
			return PropertySchema{}, fmt.Errorf("property %q must be a schema object", k)
		}
		out.Rules[k] = Rule{Schema: catalog.CloneMap(fragment)}
	}

	if rawRequired, ok := doc["required"]; ok {
		list, ok := rawRequired.([]any)
		if !ok {
			return PropertySchema{}, fmt.Errorf("required must be a list")
		}
		for _, item := range list {
			name, ok := item.(string)
			if !ok {
				return PropertySchema{}, fmt.Errorf("required entries must be strings")
			}
			r, ok := out.Rules[name]
			if !ok {
				return PropertySchema{}, fmt.Errorf("required property %q is not defined", name)
			}
			r.Required = true
			out.Rules[name] = r
		}
	}
	return out, nil
}

func (p PropertySchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Document())
}

func (p *PropertySchema) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	parsed, err := ParsePropertySchema(doc)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
