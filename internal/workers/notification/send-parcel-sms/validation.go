// internal/workers/notification/send-parcel-sms/validation.go
package sendparcelsms

import "wms-dispatch/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"parcelIds", "templateId"},
		Properties: map[string]validation.Property{
			"parcelIds": {
				Type:        "array",
				Description: "Parcels to notify, in send order",
				MinItems:    validation.Int(1),
				Items:       &validation.Property{Type: "integer", Minimum: validation.Float(1)},
			},
			"templateId": {
				Type:        "string",
				Description: "Message template identifier",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(100),
			},
			"customMessage": {
				Type:        "string",
				Description: "Message text when templateId is custom",
				MaxLength:   validation.Int(918),
			},
			"recipients": {
				Type:        "string",
				Description: "Which party of each parcel is notified",
				Enum:        []string{"both", "sender", "receiver"},
			},
			"testMode": {
				Type:        "boolean",
				Description: "Send through the gateway's test mode",
			},
		},
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"batchId":          {Type: "string"},
			"templateId":       {Type: "string"},
			"total":            {Type: "integer"},
			"succeeded":        {Type: "integer"},
			"failed":           {Type: "integer"},
			"testMode":         {Type: "boolean"},
			"results":          {Type: "array", Description: "One result per recipient"},
			"failureReported":  {Type: "boolean"},
			"failedRecipients": {Type: "array", Items: &validation.Property{Type: "string"}},
		},
	}
}
