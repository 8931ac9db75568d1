// internal/workers/session/session-logout/validation.go
package sessionlogout

import "wms-dispatch/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"userId"},
		Properties: map[string]validation.Property{
			"userId": {
				Type:        "string",
				Description: "User identifier",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(255),
			},
			"sessionId": {
				Type:        "string",
				Description: "Session to end; required unless logoutAll is set",
				MaxLength:   validation.Int(255),
			},
			"logoutAll": {
				Type:        "boolean",
				Description: "End every session of the user",
			},
			"reason": {
				Type:        "string",
				Description: "Reason recorded with the logout",
				MaxLength:   validation.Int(100),
			},
		},
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"success":             {Type: "boolean"},
			"message":             {Type: "string"},
			"sessionsInvalidated": {Type: "integer"},
			"logoutAt":            {Type: "string"},
		},
	}
}
