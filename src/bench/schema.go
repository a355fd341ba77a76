package bench

import (
	jsonschema "github.com/swaggest/jsonschema-go"

	"github.com/elee1766/chatledger/src/schema"
)

// ScenarioSchema describes conversations/<name>.json
func ScenarioSchema() *jsonschema.Schema {
	turn := schema.CreateObjectSchema(map[string]*jsonschema.Schema{
		"role":    schema.CreateStringSchemaEnum("Speaker of the turn; only user turns are replayed", []string{"user", "assistant"}),
		"content": schema.CreateNonEmptyStringSchema("Message text"),
	}, []string{"role", "content"})

	doc := schema.CreateObjectSchema(map[string]*jsonschema.Schema{
		"scenario_id":  schema.CreateNonEmptyStringSchema("Stable identifier stored with every run"),
		"title":        schema.CreateStringSchema("Human readable title; defaults to scenario_id"),
		"conversation": schema.CreateArraySchema("Scripted turns in order", turn),
	}, []string{"scenario_id", "conversation"})

	return schema.WithTitle(doc, "Scenario", "A scripted conversation replayed before probing")
}

// EvalSchema describes eval/<name>_eval.json
func EvalSchema() *jsonschema.Schema {
	phrases := func(description string) *jsonschema.Schema {
		return schema.CreateArraySchema(description, schema.CreateNonEmptyStringSchema("Case-insensitive phrase"))
	}

	probe := schema.CreateObjectSchema(map[string]*jsonschema.Schema{
		"id":           schema.CreateNonEmptyStringSchema("Probe identifier, used to pair probes across runs"),
		"type":         schema.CreateStringSchema("Probe category; scores are averaged per type"),
		"question":     schema.CreateNonEmptyStringSchema("Question sent after the conversation"),
		"must_include": phrases("Every phrase must appear in the answer"),
		"expected_any": phrases("At least one phrase must appear; used when must_include is empty"),
	}, []string{"id", "question"})

	doc := schema.CreateObjectSchema(map[string]*jsonschema.Schema{
		"probes": schema.CreateArraySchema("Probes asked in order", probe),
	}, []string{"probes"})

	return schema.WithTitle(doc, "Eval", "Probes scored against a scenario")
}
