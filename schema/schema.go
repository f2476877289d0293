// Package schema provides flat schema descriptors for tool parameters and
// structured output, JSON Schema rendering for model declarations, and typed
// extraction of schema-conforming payloads.
//
// # Quick Start
//
//	desc := schema.NewDescriptor().
//	    Field("city", schema.TypeString, "City name").
//	    Field("temperature", schema.TypeNumber, "Temperature in celsius").
//	    Field("sunny", schema.TypeBoolean, "Whether it is sunny").
//	    Field("alerts", schema.TypeStringList, "Active weather alerts")
//
//	value, err := schema.Extract(payload, desc)
//
// Descriptors are deliberately flat: a single level of named, typed fields.
// Nested objects are out of scope.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// FieldType is the type tag of a descriptor field.
type FieldType string

const (
	TypeString     FieldType = "string"
	TypeNumber     FieldType = "number"
	TypeBoolean    FieldType = "boolean"
	TypeStringList FieldType = "string[]"
)

// valid reports whether the type tag is one of the supported tags.
func (t FieldType) valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeStringList:
		return true
	}
	return false
}

// Field is a single named, typed field in a Descriptor.
type Field struct {
	Name        string
	Type        FieldType
	Description string
}

// Descriptor is an ordered list of flat fields describing either a tool's
// parameters or the expected shape of a structured answer.
//
// A Descriptor is built once and read-only afterwards; it is safe to share
// across concurrent runs.
type Descriptor struct {
	fields []Field
	index  map[string]int
}

// NewDescriptor creates an empty Descriptor.
func NewDescriptor() *Descriptor {
	return &Descriptor{index: make(map[string]int)}
}

// Field appends a field to the descriptor and returns the descriptor for
// chaining.
//
// Panics if the name is empty, the name is already present, or the type tag
// is not one of the supported tags. Descriptors are built at wiring time, so
// these are programming errors, not runtime conditions.
func (d *Descriptor) Field(name string, typ FieldType, description string) *Descriptor {
	if name == "" {
		panic("schema: field name must not be empty")
	}
	if !typ.valid() {
		panic(fmt.Sprintf("schema: field %q has unsupported type tag %q", name, typ))
	}
	if _, exists := d.index[name]; exists {
		panic(fmt.Sprintf("schema: field %q is already declared", name))
	}
	d.index[name] = len(d.fields)
	d.fields = append(d.fields, Field{Name: name, Type: typ, Description: description})
	return d
}

// Fields returns the fields in declaration order.
func (d *Descriptor) Fields() []Field {
	if d == nil {
		return nil
	}
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// Len returns the number of declared fields.
func (d *Descriptor) Len() int {
	if d == nil {
		return 0
	}
	return len(d.fields)
}

// Raw renders the descriptor as a JSON Schema object suitable for model
// declarations. All declared fields are required. Additional properties are
// permitted, matching the forward-compatible extraction behavior: payload
// fields not present in the descriptor are ignored.
func (d *Descriptor) Raw() map[string]any {
	if d == nil {
		return nil
	}
	props := make(map[string]any, len(d.fields))
	required := make([]string, 0, len(d.fields))
	for _, f := range d.fields {
		prop := map[string]any{}
		switch f.Type {
		case TypeStringList:
			prop["type"] = "array"
			prop["items"] = map[string]any{"type": "string"}
		default:
			prop["type"] = string(f.Type)
		}
		if f.Description != "" {
			prop["description"] = f.Description
		}
		props[f.Name] = prop
		required = append(required, f.Name)
	}
	raw := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		raw["required"] = required
	}
	return raw
}

// Compiled pairs a descriptor's raw JSON Schema with its compiled validator.
type Compiled struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the underlying JSON Schema map.
func (c *Compiled) Raw() map[string]any {
	if c == nil {
		return nil
	}
	return c.raw
}

// Validate validates data against the compiled schema. Returns nil when the
// receiver is nil, allowing tools without parameters to skip validation.
func (c *Compiled) Validate(data map[string]any) error {
	if c == nil || c.compiled == nil {
		return nil
	}
	if err := c.compiled.Validate(normalize(data)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// Compile compiles the descriptor into a validator for runtime argument
// checking. Returns (nil, nil) for a nil descriptor.
func (d *Descriptor) Compile() (*Compiled, error) {
	if d == nil {
		return nil, nil
	}
	raw := d.Raw()

	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(rawJSON)))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Compiled{raw: raw, compiled: compiled}, nil
}

// MustCompile is like Compile but panics on error. Use for descriptors
// defined at wiring time.
func (d *Descriptor) MustCompile() *Compiled {
	c, err := d.Compile()
	if err != nil {
		panic(err)
	}
	return c
}

// normalize round-trips data through JSON decoding conventions so the
// validator sees the same value shapes it would for a decoded payload
// (e.g. int -> float64).
func normalize(data map[string]any) any {
	b, err := json.Marshal(data)
	if err != nil {
		return data
	}
	v, err := jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
	if err != nil {
		return data
	}
	return v
}
