package schema

import (
	jsonschema "github.com/swaggest/jsonschema-go"
)

// Helper functions to create JSON schemas

// CreateStringSchema creates a JSON schema for a string field
func CreateStringSchema(description string) *jsonschema.Schema {
	strType := jsonschema.SimpleType("string")
	return &jsonschema.Schema{
		Type:        &jsonschema.Type{SimpleTypes: &strType},
		Description: &description,
	}
}

// CreateNonEmptyStringSchema creates a JSON schema for a string with at least one character
func CreateNonEmptyStringSchema(description string) *jsonschema.Schema {
	s := CreateStringSchema(description)
	s.MinLength = 1
	return s
}

// CreateStringSchemaEnum creates a JSON schema for a string field with enum values
func CreateStringSchemaEnum(description string, enumValues []string) *jsonschema.Schema {
	strType := jsonschema.SimpleType("string")
	enum := make([]interface{}, len(enumValues))
	for i, v := range enumValues {
		enum[i] = v
	}
	return &jsonschema.Schema{
		Type:        &jsonschema.Type{SimpleTypes: &strType},
		Description: &description,
		Enum:        enum,
	}
}

// CreateArraySchema creates a JSON schema for an array whose elements match items
func CreateArraySchema(description string, items *jsonschema.Schema) *jsonschema.Schema {
	arrType := jsonschema.SimpleType("array")
	return &jsonschema.Schema{
		Type:        &jsonschema.Type{SimpleTypes: &arrType},
		Description: &description,
		Items:       &jsonschema.Items{SchemaOrBool: &jsonschema.SchemaOrBool{TypeObject: items}},
	}
}

// CreateObjectSchema creates a JSON schema for an object with properties and required fields
func CreateObjectSchema(properties map[string]*jsonschema.Schema, required []string) *jsonschema.Schema {
	schemaProps := make(map[string]jsonschema.SchemaOrBool)
	for name, prop := range properties {
		schemaProps[name] = jsonschema.SchemaOrBool{TypeObject: prop}
	}

	objType := jsonschema.SimpleType("object")
	return &jsonschema.Schema{
		Type:       &jsonschema.Type{SimpleTypes: &objType},
		Properties: schemaProps,
		Required:   required,
	}
}

// WithTitle sets the title and draft-07 $schema of a root document
func WithTitle(s *jsonschema.Schema, title, description string) *jsonschema.Schema {
	draft := "http://json-schema.org/draft-07/schema#"
	s.Schema = &draft
	s.Title = &title
	s.Description = &description
	return s
}
