// internal/workers/notification/send-bulk-sms/validation.go
package sendbulksms

import "wms-dispatch/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"phoneNumbers", "message"},
		Properties: map[string]validation.Property{
			"phoneNumbers": {
				Type:        "array",
				Description: "Recipient phone numbers in any accepted format",
				MinItems:    validation.Int(1),
				Items:       &validation.Property{Type: "string", MinLength: validation.Int(1)},
			},
			"message": {
				Type:        "string",
				Description: "Text sent to every number",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(918),
			},
			"testMode": {
				Type: "boolean",
			},
		},
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"batchId":   {Type: "string"},
			"total":     {Type: "integer"},
			"succeeded": {Type: "integer"},
			"failed":    {Type: "integer"},
			"testMode":  {Type: "boolean"},
			"results":   {Type: "array"},
		},
	}
}
