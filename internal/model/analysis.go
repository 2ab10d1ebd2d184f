package model

import "github.com/shopspring/decimal"

// Upload and tool call statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// MinConfidence and MaxConfidence bound the analysis confidence score.
const (
	MinConfidence = 0
	MaxConfidence = 100
)

// UploadResponse is returned by POST /ai/agent/upload.
type UploadResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	LogID      int64  `json:"logId,omitempty"`
	Count      *int   `json:"count,omitempty"`
	Confidence *int   `json:"confidence,omitempty"`
}

// IngredientEntry is one ingredient as reported by the model in a
// logFoodIngredients tool call.
type IngredientEntry struct {
	Ingredient string          `json:"ingredient"`
	Kcal       int             `json:"kcal"`
	Weight     decimal.Decimal `json:"weight"`
}

// ToolResult is the JSON document handed back to the model after a tool call.
type ToolResult struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	LogID      int64  `json:"logId,omitempty"`
	Count      *int   `json:"count,omitempty"`
	Confidence *int   `json:"confidence,omitempty"`
}

// FailedTool builds a FAILED tool result.
func FailedTool(msg string) ToolResult {
	return ToolResult{Status: StatusFailed, Message: msg}
}
