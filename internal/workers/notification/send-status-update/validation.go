// internal/workers/notification/send-status-update/validation.go
package sendstatusupdate

import "wms-dispatch/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"parcelId", "newStatus"},
		Properties: map[string]validation.Property{
			"parcelId": {
				Type:    "integer",
				Minimum: validation.Float(1),
			},
			"newStatus": {
				Type:        "string",
				Description: "pending, confirmed, in_transit, delivered, cancelled or free text",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(50),
			},
			"additionalInfo": {
				Type:      "string",
				MaxLength: validation.Int(300),
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
			"batchId":          {Type: "string"},
			"waybill":          {Type: "string"},
			"newStatus":        {Type: "string"},
			"senderNotified":   {Type: "boolean"},
			"receiverNotified": {Type: "boolean"},
			"results":          {Type: "array"},
		},
	}
}
