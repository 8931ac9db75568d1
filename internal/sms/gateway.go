// internal/sms/gateway.go
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	commonhttp "wms-dispatch/internal/common/http"
)

// SendOptions mirror the gateway's optional send parameters.
type SendOptions struct {
	Test         bool   `json:"test,omitempty"`
	ScheduleTime string `json:"scheduleTime,omitempty"`
	MsgType      string `json:"msgType,omitempty"` // text | unicode
}

// GatewayResponse is the gateway's reply to a single send.
type GatewayResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	MsgID   string   `json:"msgId,omitempty"`
	Cost    *float64 `json:"cost,omitempty"`
	Balance *float64 `json:"balance,omitempty"`
}

// Succeeded reports whether the gateway accepted the message.
func (r *GatewayResponse) Succeeded() bool {
	return strings.EqualFold(r.Status, string(StatusSuccess))
}

// Sender is the external send primitive. Implementations return an error for
// transport or HTTP failures and a response for anything the gateway answered.
type Sender interface {
	Send(ctx context.Context, phone, message string, opts SendOptions) (*GatewayResponse, error)
}

// GatewayConfig holds the bulk SMS account. It is passed explicitly to the
// gateway and the workflow.
type GatewayConfig struct {
	ServerURL  string
	UserID     string
	Password   string
	SenderName string
}

// Validate lists every missing setting.
func (c GatewayConfig) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.UserID) == "" {
		errs = append(errs, "SMS User ID is not configured")
	}
	if strings.TrimSpace(c.Password) == "" {
		errs = append(errs, "SMS Password is not configured")
	}
	if strings.TrimSpace(c.SenderName) == "" {
		errs = append(errs, "SMS Sender Name is not configured")
	}
	if strings.TrimSpace(c.ServerURL) == "" {
		errs = append(errs, "SMS Server URL is not configured")
	} else if u, err := url.Parse(c.ServerURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "SMS Server URL is invalid")
	}
	return errs
}

// HostPinnacleGateway sends through the HostPinnacle quick-send API.
type HostPinnacleGateway struct {
	cfg    GatewayConfig
	client *commonhttp.Client
}

// NewHostPinnacleGateway posts to cfg.ServerURL with the given request timeout.
func NewHostPinnacleGateway(cfg GatewayConfig, timeout time.Duration) *HostPinnacleGateway {
	return &HostPinnacleGateway{
		cfg:    cfg,
		client: commonhttp.NewClient(timeout),
	}
}

// Send posts one message to /send and decodes the JSON reply.
func (g *HostPinnacleGateway) Send(ctx context.Context, phone, message string, opts SendOptions) (*GatewayResponse, error) {
	msgType := opts.MsgType
	if msgType == "" {
		msgType = "text"
	}

	form := url.Values{
		"userid":         {g.cfg.UserID},
		"password":       {g.cfg.Password},
		"mobile":         {NormalizePhone(phone)},
		"senderid":       {g.cfg.SenderName},
		"msg":            {message},
		"sendMethod":     {"quick"},
		"msgType":        {msgType},
		"output":         {"json"},
		"duplicatecheck": {"true"},
	}
	if opts.Test {
		form.Set("test", "true")
	}
	if opts.ScheduleTime != "" {
		form.Set("scheduleTime", opts.ScheduleTime)
	}

	body, err := g.client.PostForm(ctx, strings.TrimRight(g.cfg.ServerURL, "/")+"/send", form)
	if err != nil {
		return nil, err
	}

	return decodeGatewayResponse(body)
}

type wireResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Reason  string      `json:"reason"`
	MsgID   string      `json:"msgId"`
	Cost    json.Number `json:"cost"`
	Balance json.Number `json:"balance"`
}

func decodeGatewayResponse(body []byte) (*GatewayResponse, error) {
	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		// Some accounts quote numbers, retry with them as strings.
		var loose map[string]interface{}
		if json.Unmarshal(body, &loose) != nil {
			return nil, fmt.Errorf("decode gateway response: %w", err)
		}
		wire = wireResponse{
			Status:  stringField(loose, "status"),
			Message: stringField(loose, "message"),
			Reason:  stringField(loose, "reason"),
			MsgID:   stringField(loose, "msgId"),
			Cost:    json.Number(stringField(loose, "cost")),
			Balance: json.Number(stringField(loose, "balance")),
		}
	}

	resp := &GatewayResponse{
		Status:  wire.Status,
		Message: wire.Message,
		MsgID:   wire.MsgID,
		Cost:    parseAmount(wire.Cost),
		Balance: parseAmount(wire.Balance),
	}
	if resp.Message == "" {
		resp.Message = wire.Reason
	}
	return resp, nil
}

func stringField(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func parseAmount(n json.Number) *float64 {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
