// internal/sms/dispatcher.go
package sms

import (
	"context"
	"fmt"
	"time"

	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/common/metrics"

	"github.com/google/uuid"
)

// DefaultSendInterval paces consecutive gateway calls.
const DefaultSendInterval = 500 * time.Millisecond

// Job is one planned send: a recipient and its rendered text.
type Job struct {
	Recipient Recipient
	Message   string
}

// Dispatcher sends jobs one at a time through a Sender, pausing between
// sends. Individual failures become error results and never stop the run.
type Dispatcher struct {
	sender   Sender
	interval time.Duration
	logger   logger.Logger

	sleep func(time.Duration)
	now   func() time.Time
}

// NewDispatcher pauses interval between sends. A negative interval is zero.
func NewDispatcher(sender Sender, interval time.Duration, log logger.Logger) *Dispatcher {
	if interval < 0 {
		interval = 0
	}
	return &Dispatcher{
		sender:   sender,
		interval: interval,
		logger:   log.Named("sms-dispatcher"),
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// SendOne performs a single send and always returns a result.
func (d *Dispatcher) SendOne(ctx context.Context, job Job, opts SendOptions) SendResult {
	r := job.Recipient
	result := SendResult{
		ID:        uuid.NewString(),
		Recipient: r.Label(),
		Phone:     NormalizePhone(r.Phone),
		Role:      r.Role,
		ParcelID:  r.ParcelID,
		Waybill:   r.Waybill,
	}

	resp, err := d.send(ctx, r.Phone, job.Message, opts)
	result.SentAt = d.now().UTC()

	if err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Failed to send to %s: %v", failureTarget(r), err)
		d.logger.Warn("sms send failed", map[string]interface{}{
			"phone":   result.Phone,
			"role":    string(r.Role),
			"waybill": r.Waybill,
			"error":   err,
		})
	} else {
		result.Status = StatusError
		if resp.Succeeded() {
			result.Status = StatusSuccess
		}
		result.Message = resp.Message
		result.MsgID = resp.MsgID
		result.Cost = resp.Cost
		result.Balance = resp.Balance
	}

	metrics.SMSMessagesSent.WithLabelValues(string(result.Status), roleLabel(r.Role)).Inc()
	return result
}

// send converts a panicking Sender into an error so one bad recipient cannot
// take down the batch.
func (d *Dispatcher) send(ctx context.Context, phone, message string, opts SendOptions) (resp *GatewayResponse, err error) {
	defer func() {
		if p := recover(); p != nil {
			resp, err = nil, fmt.Errorf("sender panic: %v", p)
		}
	}()

	resp, err = d.sender.Send(ctx, phone, message, opts)
	if err == nil && resp == nil {
		err = fmt.Errorf("gateway returned no response")
	}
	return resp, err
}

// Run sends every job in order and appends one result per job to batch.
// The caller's cancellation is ignored once the run has started.
func (d *Dispatcher) Run(ctx context.Context, batch *BatchResult, jobs []Job, opts SendOptions) {
	ctx = context.WithoutCancel(ctx)

	for i, job := range jobs {
		if i > 0 && d.interval > 0 {
			d.sleep(d.interval)
		}
		batch.add(d.SendOne(ctx, job, opts))
	}
}

func failureTarget(r Recipient) string {
	if r.Role != "" {
		return string(r.Role)
	}
	return r.Phone
}

func roleLabel(role Role) string {
	if role == "" {
		return "bulk"
	}
	return string(role)
}
