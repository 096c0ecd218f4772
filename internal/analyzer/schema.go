package analyzer

import (
	"github.com/sashabaranov/go-openai/jsonschema"
)

// worldModelSchema WorldModel 的 JSON Schema
// strict 模式不支持任意键的对象，context 用键值对数组描述，再由 UnmarshalJSON 兼容
func worldModelSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type:        jsonschema.Object,
		Description: "The current state of understanding",
		Properties: map[string]jsonschema.Definition{
			"context": {
				Type:        jsonschema.Array,
				Description: "Key concepts and their current understanding",
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"concept":       {Type: jsonschema.String},
						"understanding": {Type: jsonschema.String},
					},
					Required:             []string{"concept", "understanding"},
					AdditionalProperties: false,
				},
			},
			"topics": {
				Type:        jsonschema.Array,
				Description: "Main topics being discussed",
				Items:       &jsonschema.Definition{Type: jsonschema.String},
			},
			"questions": {
				Type:        jsonschema.Array,
				Description: "Open questions to explore",
				Items:       &jsonschema.Definition{Type: jsonschema.String},
			},
			"summary": {
				Type:        jsonschema.String,
				Description: "Current summary of the discussion",
			},
		},
		Required:             []string{"context", "topics", "questions", "summary"},
		AdditionalProperties: false,
	}
}

func analysisSchema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"world_model": worldModelSchema(),
			"response":    {Type: jsonschema.String, Description: "The response to the user"},
			"follow_up":   {Type: jsonschema.String, Description: "A follow-up question to continue the conversation"},
		},
		Required:             []string{"world_model", "response", "follow_up"},
		AdditionalProperties: false,
	}
}

func updateSchema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"updated_world_model": worldModelSchema(),
			"response":            {Type: jsonschema.String, Description: "The response to the user"},
			"follow_up":           {Type: jsonschema.String, Description: "A follow-up question to continue the conversation"},
			"referenced_content":  {Type: jsonschema.String, Description: "Any new content that was referenced, empty when none"},
		},
		Required:             []string{"updated_world_model", "response", "follow_up", "referenced_content"},
		AdditionalProperties: false,
	}
}
