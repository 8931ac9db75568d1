// internal/sms/sns.go
package sms

import (
	"context"
	"strings"
)

// SMSPublisher is satisfied by the common AWS SNS client.
type SMSPublisher interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

// SNSGateway sends through AWS SNS direct publishing. Test sends are
// acknowledged without publishing.
type SNSGateway struct {
	publisher SMSPublisher
}

// NewSNSGateway sends through an SNS publisher.
func NewSNSGateway(publisher SMSPublisher) *SNSGateway {
	return &SNSGateway{publisher: publisher}
}

// Send publishes directly to the normalized number. Test mode does not publish.
func (g *SNSGateway) Send(ctx context.Context, phone, message string, opts SendOptions) (*GatewayResponse, error) {
	e164 := "+" + strings.TrimPrefix(NormalizePhone(phone), "+")

	if opts.Test {
		return &GatewayResponse{Status: string(StatusSuccess), Message: "Test mode: message accepted, not published"}, nil
	}

	msgID, err := g.publisher.SendSMS(ctx, e164, message)
	if err != nil {
		return nil, err
	}
	return &GatewayResponse{Status: string(StatusSuccess), Message: "Message published", MsgID: msgID}, nil
}

// SNSConfigErrors lists what the SNS provider is missing.
func SNSConfigErrors(region string) []string {
	if strings.TrimSpace(region) == "" {
		return []string{"AWS region is not configured"}
	}
	return nil
}
