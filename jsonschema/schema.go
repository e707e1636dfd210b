package jsonschema

// Draft is the dialect emitted at the document root.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
// It covers what a decode schema can say about its input and nothing more.
type Schema struct {
	// Core
	SchemaURI   string `json:"$schema,omitempty"`
	Type        any    `json:"type,omitempty"` // string or []string
	Description string `json:"description,omitempty"`

	// Numeric
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items       *Schema   `json:"items,omitempty"`
	PrefixItems []*Schema `json:"prefixItems,omitempty"`
	MinItems    *int      `json:"minItems,omitempty"`
	MaxItems    *int      `json:"maxItems,omitempty"`

	// Union
	AnyOf []*Schema `json:"anyOf,omitempty"`
}

// Int returns a pointer to n, for MinItems/MaxItems.
func Int(n int) *int { return &n }

// Float returns a pointer to f, for Minimum/Maximum.
func Float(f float64) *float64 { return &f }
