package schema

import (
	"encoding/json"
	"testing"

	jsonschema "github.com/swaggest/jsonschema-go"
)

func TestCreateStringSchema(t *testing.T) {
	schema := CreateStringSchema("test description")

	if schema.Description == nil || *schema.Description != "test description" {
		t.Errorf("Expected description 'test description', got %v", schema.Description)
	}

	if schema.Type == nil || schema.Type.SimpleTypes == nil {
		t.Fatal("Expected type to be set")
	}

	expectedType := jsonschema.SimpleType("string")
	if *schema.Type.SimpleTypes != expectedType {
		t.Errorf("Expected type 'string', got %v", *schema.Type.SimpleTypes)
	}
}

func TestCreateNonEmptyStringSchema(t *testing.T) {
	schema := CreateNonEmptyStringSchema("id")
	if schema.MinLength != 1 {
		t.Errorf("Expected minLength 1, got %d", schema.MinLength)
	}
}

func TestCreateStringSchemaEnum(t *testing.T) {
	schema := CreateStringSchemaEnum("role", []string{"user", "assistant"})
	if len(schema.Enum) != 2 || schema.Enum[0] != "user" {
		t.Errorf("Expected enum [user assistant], got %v", schema.Enum)
	}
}

func TestCreateArraySchema(t *testing.T) {
	schema := CreateArraySchema("names", CreateStringSchema("a name"))

	expectedType := jsonschema.SimpleType("array")
	if schema.Type == nil || schema.Type.SimpleTypes == nil || *schema.Type.SimpleTypes != expectedType {
		t.Fatalf("Expected type 'array', got %v", schema.Type)
	}
	if schema.Items == nil || schema.Items.SchemaOrBool == nil || schema.Items.SchemaOrBool.TypeObject == nil {
		t.Fatal("Expected items schema to be set")
	}
}

func TestCreateObjectSchema(t *testing.T) {
	properties := map[string]*jsonschema.Schema{
		"name": CreateStringSchema("The name"),
		"tags": CreateArraySchema("Tags", CreateStringSchema("tag")),
	}
	required := []string{"name"}

	schema := CreateObjectSchema(properties, required)

	if schema.Type == nil || schema.Type.SimpleTypes == nil {
		t.Fatal("Expected type to be set")
	}

	expectedType := jsonschema.SimpleType("object")
	if *schema.Type.SimpleTypes != expectedType {
		t.Errorf("Expected type 'object', got %v", *schema.Type.SimpleTypes)
	}

	if len(schema.Properties) != 2 {
		t.Errorf("Expected 2 properties, got %d", len(schema.Properties))
	}

	if len(schema.Required) != 1 || schema.Required[0] != "name" {
		t.Errorf("Expected required field 'name', got %v", schema.Required)
	}
}

func TestWithTitleMarshals(t *testing.T) {
	doc := WithTitle(CreateObjectSchema(map[string]*jsonschema.Schema{
		"id": CreateStringSchema("id"),
	}, []string{"id"}), "Thing", "A thing")

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["title"] != "Thing" {
		t.Errorf("Expected title 'Thing', got %v", decoded["title"])
	}
	if decoded["$schema"] != "http://json-schema.org/draft-07/schema#" {
		t.Errorf("Expected draft-07 $schema, got %v", decoded["$schema"])
	}
}
