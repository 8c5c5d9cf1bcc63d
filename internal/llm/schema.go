package llm

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Type names follow the upper-case OpenAPI subset Gemini expects.
const (
	TypeObject  = "OBJECT"
	TypeArray   = "ARRAY"
	TypeString  = "STRING"
	TypeNumber  = "NUMBER"
	TypeInteger = "INTEGER"
	TypeBoolean = "BOOLEAN"
)

// ErrSchemaMismatch is wrapped by every Validate failure.
var ErrSchemaMismatch = errors.New("response does not match schema")

// Schema describes the JSON shape a model must return ("Controlled Generation").
type Schema struct {
	// Type is one of the Type* constants.
	Type string `json:"type"`

	// Description explains the field's purpose to the model.
	Description string `json:"description,omitempty"`

	// Properties maps field names to child schemas (Type OBJECT).
	Properties map[string]*Schema `json:"properties,omitempty"`

	// Items is the element schema; every ARRAY must set it.
	Items *Schema `json:"items,omitempty"`

	// Required lists the properties the model MUST include.
	Required []string `json:"required,omitempty"`

	// Enum restricts a STRING to the listed values.
	Enum []string `json:"enum,omitempty"`
}

// PropertyNames returns the object's property names in sorted order.
func (s *Schema) PropertyNames() []string {
	return slices.Sorted(maps.Keys(s.Properties))
}

// Definition converts the schema into the JSON-schema dialect used by
// OpenAI's strict response formats: lower-case types, every object closed to
// extra keys.
func (s *Schema) Definition() jsonschema.Definition {
	return s.definition(true)
}

func (s *Schema) definition(strict bool) jsonschema.Definition {
	def := jsonschema.Definition{
		Type:        jsonschema.DataType(strings.ToLower(s.Type)),
		Description: s.Description,
		Enum:        s.Enum,
	}
	if strict {
		def.Required = s.Required
	}
	if len(s.Properties) > 0 {
		def.Properties = make(map[string]jsonschema.Definition, len(s.Properties))
		for _, name := range s.PropertyNames() {
			def.Properties[name] = s.Properties[name].definition(strict)
		}
		if strict {
			def.AdditionalProperties = false
		}
	}
	if s.Items != nil {
		items := s.Items.definition(strict)
		def.Items = &items
	}
	return def
}

// Validate checks a value produced by encoding/json against the schema.
// The root value must be present. Object properties that are absent or null
// are accepted; use MissingRequired to find them. Every present value must
// match its declared type. Enum is guidance for the model and is not checked.
func (s *Schema) Validate(v any) error {
	if v == nil {
		return fmt.Errorf("%w: value is null", ErrSchemaMismatch)
	}
	v = dropNulls(v)

	def := s.definition(false)
	if jsonschema.Validate(def, v) {
		return nil
	}
	if obj, ok := v.(map[string]any); ok && def.Type == jsonschema.Object {
		for _, name := range s.PropertyNames() {
			child, present := obj[name]
			if present && !jsonschema.Validate(def.Properties[name], child) {
				return fmt.Errorf("%w: field %q is not a valid %s",
					ErrSchemaMismatch, name, def.Properties[name].Type)
			}
		}
	}
	return fmt.Errorf("%w: expected %s", ErrSchemaMismatch, def.Type)
}

// MissingRequired lists the required properties of an object value that are
// absent or null, in the order they are declared.
func (s *Schema) MissingRequired(v any) []string {
	obj, ok := v.(map[string]any)
	if !ok {
		return slices.Clone(s.Required)
	}
	var missing []string
	for _, name := range s.Required {
		if val, present := obj[name]; !present || val == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// dropNulls removes null-valued object keys at every depth so they read as
// absent. Null array elements are kept and fail validation.
func dropNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			if child != nil {
				out[k] = dropNulls(child)
			}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = dropNulls(item)
		}
		return out
	default:
		return v
	}
}
