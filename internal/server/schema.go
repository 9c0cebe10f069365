package server

import (
	"fmt"

	"github.com/kaptinlin/jsonschema"
)

// maxTranscriptMessages caps the relay payload; anything larger is rejected
// with 413 before schema validation runs.
const maxTranscriptMessages = 2000

const outboundCallSchemaJSON = `{
	"type": "object",
	"required": ["phoneNumberId", "assistantId", "customer"],
	"properties": {
		"phoneNumberId": {"type": "string", "minLength": 1},
		"assistantId": {"type": "string", "minLength": 1},
		"customer": {
			"type": "object",
			"required": ["number"],
			"properties": {
				"number": {"type": "string", "minLength": 7},
				"name": {"type": "string"}
			}
		}
	}
}`

const outboundCampaignSchemaJSON = `{
	"type": "object",
	"required": ["phoneNumberId", "assistantId", "customer"],
	"properties": {
		"name": {"type": "string"},
		"phoneNumberId": {"type": "string", "minLength": 1},
		"assistantId": {"type": "string", "minLength": 1},
		"customer": {
			"type": "object",
			"required": ["number"],
			"properties": {
				"number": {"type": "string", "minLength": 7},
				"name": {"type": "string"}
			}
		}
	}
}`

const transcriptSchemaJSON = `{
	"type": "object",
	"required": ["transcript"],
	"properties": {
		"callId": {"type": "string"},
		"assistantId": {"type": "string"},
		"startedAt": {"type": "number"},
		"endedAt": {"type": "number"},
		"transcript": {
			"type": "array",
			"minItems": 1,
			"maxItems": 2000,
			"items": {
				"type": "object",
				"required": ["role", "text", "timestamp"],
				"properties": {
					"role": {"type": "string", "minLength": 1},
					"text": {"type": "string", "minLength": 1},
					"timestamp": {"type": "number"}
				}
			}
		},
		"metadata": {"type": "object"}
	}
}`

var (
	outboundCallSchema     = mustCompileSchema(outboundCallSchemaJSON)
	outboundCampaignSchema = mustCompileSchema(outboundCampaignSchemaJSON)
	transcriptSchema       = mustCompileSchema(transcriptSchemaJSON)
)

func mustCompileSchema(raw string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile([]byte(raw))
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}

// validateBody checks data against schema and returns a structured,
// JSON-serializable description of every failure, or nil when valid.
func validateBody(schema *jsonschema.Schema, data []byte) any {
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return result.ToList()
}
