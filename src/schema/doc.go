// Package schema provides helper functions for building JSON Schema documents.
//
// The helpers wrap github.com/swaggest/jsonschema-go and are used to publish
// the shape of benchmark scenario and evaluation files.
//
// Example usage:
//
//	turn := schema.CreateObjectSchema(map[string]*jsonschema.Schema{
//		"role":    schema.CreateStringSchemaEnum("Speaker", []string{"user", "assistant"}),
//		"content": schema.CreateStringSchema("Message text"),
//	}, []string{"role", "content"})
//
//	doc := schema.WithTitle(schema.CreateArraySchema("Turns", turn), "Conversation", "A scripted conversation")
package schema
