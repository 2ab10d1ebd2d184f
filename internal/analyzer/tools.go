package analyzer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const (
	toolLogIngredients = "logFoodIngredients"
	toolSetConfidence  = "setAnalysisConfidence"
)

var toolDefinitions = []openai.Tool{
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        toolLogIngredients,
			Description: "Logs all detected food ingredients, including their estimated calories (kcal) and weight, from a food image to the database.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"logId": {
						Type:        jsonschema.Integer,
						Description: "The unique identifier (ID) of the food log entry, used to associate all ingredients with the correct image.",
					},
					"ingredients": {
						Type:        jsonschema.Array,
						Description: "A comprehensive list of all visually detected ingredients. Each ingredient must include its name, estimated calories (kcal), and estimated weight in grams.",
						Items: &jsonschema.Definition{
							Type: jsonschema.Object,
							Properties: map[string]jsonschema.Definition{
								"ingredient": {Type: jsonschema.String, Description: "Ingredient name"},
								"kcal":       {Type: jsonschema.Integer, Description: "Estimated calories"},
								"weight":     {Type: jsonschema.Number, Description: "Estimated weight in grams"},
							},
							Required: []string{"ingredient", "kcal", "weight"},
						},
					},
				},
				Required: []string{"logId", "ingredients"},
			},
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        toolSetConfidence,
			Description: "Sets the analysis confidence score (0-100) for a specific food log entry. Always pass the exact logId provided by the user.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"logId": {
						Type:        jsonschema.Integer,
						Description: "The unique identifier (ID) of the food log entry to update.",
					},
					"confidence": {
						Type:        jsonschema.Integer,
						Description: "An integer confidence score from 0 to 100 representing how confident you are in your analysis.",
					},
				},
				Required: []string{"logId", "confidence"},
			},
		},
	},
}

type logIngredientsArgs struct {
	LogID       *int64                  `json:"logId"`
	Ingredients []model.IngredientEntry `json:"ingredients"`
}

type setConfidenceArgs struct {
	LogID      *int64 `json:"logId"`
	Confidence *int   `json:"confidence"`
}

// dispatch runs one tool call and returns the JSON handed back to the model.
func dispatch(ctx context.Context, tools Tools, call openai.ToolCall) string {
	var result model.ToolResult

	switch call.Function.Name {
	case toolLogIngredients:
		var args logIngredientsArgs
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			result = model.FailedTool(fmt.Sprintf("invalid arguments: %v", err))
			break
		}
		result = tools.LogFoodIngredients(ctx, args.LogID, args.Ingredients)
	case toolSetConfidence:
		var args setConfidenceArgs
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			result = model.FailedTool(fmt.Sprintf("invalid arguments: %v", err))
			break
		}
		result = tools.SetAnalysisConfidence(ctx, args.LogID, args.Confidence)
	default:
		result = model.FailedTool("unknown tool: " + call.Function.Name)
	}

	b, err := json.Marshal(result)
	if err != nil {
		return `{"status":"FAILED","message":"could not encode tool result"}`
	}
	return string(b)
}
