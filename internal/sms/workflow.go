// internal/sms/workflow.go
package sms

import (
	"context"
	"time"

	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/common/metrics"

	"github.com/google/uuid"
)

// Recorder persists a finished batch. Failures are logged, not returned.
type Recorder interface {
	Record(ctx context.Context, batch *BatchResult) error
}

// Observer receives per-batch measurements.
type Observer interface {
	RecordBatch(ctx context.Context, kind string, recipients, failed int, duration time.Duration)
}

// WorkflowOption configures a Workflow.
type WorkflowOption func(*Workflow)

// WithRecorder stores every finished batch. Recorder errors are logged only.
func WithRecorder(r Recorder) WorkflowOption {
	return func(w *Workflow) { w.recorder = r }
}

// WithObserver is told about every finished batch.
func WithObserver(o Observer) WorkflowOption {
	return func(w *Workflow) { w.observer = o }
}

// Workflow is the notification dispatch workflow: gate, render, then send
// sequentially through the dispatcher.
type Workflow struct {
	catalog    *Catalog
	dispatcher *Dispatcher
	configErrs []string
	recorder   Recorder
	observer   Observer
	logger     logger.Logger
	now        func() time.Time
}

// NewWorkflow builds a workflow. configErrs is the gateway configuration
// state; while it is non-empty every send is refused.
func NewWorkflow(catalog *Catalog, dispatcher *Dispatcher, configErrs []string, log logger.Logger, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		catalog:    catalog,
		dispatcher: dispatcher,
		configErrs: append([]string(nil), configErrs...),
		logger:     log.Named("sms-workflow"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) Catalog() *Catalog {
	return w.catalog
}

// ConfigErrors lists the gateway configuration problems that block sending.
func (w *Workflow) ConfigErrors() []string {
	return append([]string(nil), w.configErrs...)
}

// Available reports whether the gateway is configured.
func (w *Workflow) Available() bool {
	return len(w.configErrs) == 0
}

// PlanParcels renders the jobs for a parcel batch in parcel-then-role order.
func (w *Workflow) PlanParcels(req ParcelBatchRequest) []Job {
	tmpl, ok := w.catalog.Get(req.TemplateID)
	if !ok {
		return nil
	}

	roles := req.Recipients.Roles()
	jobs := make([]Job, 0, len(req.Parcels)*len(roles))
	for _, p := range req.Parcels {
		for _, role := range roles {
			r := RecipientFor(p, role)
			msg := req.CustomMessage
			if !tmpl.IsCustom() {
				msg = Render(tmpl.Body, r.Fields)
			}
			jobs = append(jobs, Job{Recipient: r, Message: msg})
		}
	}
	return jobs
}

// Preview returns the planned messages and the gate's verdict without sending.
func (w *Workflow) Preview(req ParcelBatchRequest) ([]Job, []string) {
	return w.PlanParcels(req), ValidateParcelBatch(req, w.catalog, w.configErrs)
}

// SendParcels validates the whole batch and then notifies each parcel's
// parties in order. A refused batch returns a *ValidationError and sends nothing.
func (w *Workflow) SendParcels(ctx context.Context, req ParcelBatchRequest) (*BatchResult, error) {
	if errs := ValidateParcelBatch(req, w.catalog, w.configErrs); len(errs) > 0 {
		return nil, w.reject(BatchKindParcels, errs)
	}

	batch := w.newBatch(BatchKindParcels, req.Options)
	batch.TemplateID = req.TemplateID
	w.run(ctx, batch, w.PlanParcels(req), req.Options)
	return batch, nil
}

// SendBulk sends one custom message to every number, in order.
func (w *Workflow) SendBulk(ctx context.Context, req BulkRequest) (*BatchResult, error) {
	if errs := ValidateBulk(req, w.configErrs); len(errs) > 0 {
		return nil, w.reject(BatchKindBulk, errs)
	}

	jobs := make([]Job, len(req.PhoneNumbers))
	for i, phone := range req.PhoneNumbers {
		jobs[i] = Job{Recipient: Recipient{Phone: phone}, Message: req.Message}
	}

	batch := w.newBatch(BatchKindBulk, req.Options)
	batch.TemplateID = CustomTemplateID
	w.run(ctx, batch, jobs, req.Options)
	return batch, nil
}

// SendStatusUpdate notifies the sender and then the receiver of a status change.
func (w *Workflow) SendStatusUpdate(ctx context.Context, req StatusUpdateRequest) (*BatchResult, error) {
	if errs := ValidateStatusUpdate(req, w.configErrs); len(errs) > 0 {
		return nil, w.reject(BatchKindStatusUpdate, errs)
	}

	var jobs []Job
	for _, role := range RecipientsBoth.Roles() {
		jobs = append(jobs, Job{
			Recipient: RecipientFor(req.Parcel, role),
			Message:   StatusUpdateMessage(req.Parcel, req.NewStatus, role, req.AdditionalInfo),
		})
	}

	batch := w.newBatch(BatchKindStatusUpdate, req.Options)
	w.run(ctx, batch, jobs, req.Options)
	return batch, nil
}

func (w *Workflow) reject(kind string, reasons []string) error {
	metrics.SMSBatchesRejected.WithLabelValues(kind).Inc()
	w.logger.Info("batch refused by pre-send validation", map[string]interface{}{
		"kind":    kind,
		"reasons": reasons,
	})
	return &ValidationError{Reasons: reasons}
}

func (w *Workflow) newBatch(kind string, opts SendOptions) *BatchResult {
	return &BatchResult{
		BatchID:  uuid.NewString(),
		Kind:     kind,
		TestMode: opts.Test,
		Results:  []SendResult{},
	}
}

func (w *Workflow) run(ctx context.Context, batch *BatchResult, jobs []Job, opts SendOptions) {
	batch.StartedAt = w.now().UTC()
	w.dispatcher.Run(ctx, batch, jobs, opts)
	batch.FinishedAt = w.now().UTC()

	metrics.SMSBatchDuration.WithLabelValues(batch.Kind).Observe(batch.Duration().Seconds())

	fields := map[string]interface{}{
		"batchId":    batch.BatchID,
		"kind":       batch.Kind,
		"recipients": len(batch.Results),
		"succeeded":  batch.Succeeded,
		"failed":     batch.Failed,
		"testMode":   batch.TestMode,
	}
	if batch.Failed > 0 {
		w.logger.Warn("sms batch finished with failures", fields)
	} else {
		w.logger.Info("sms batch finished", fields)
	}

	recordCtx := context.WithoutCancel(ctx)
	if w.observer != nil {
		w.observer.RecordBatch(recordCtx, batch.Kind, len(batch.Results), batch.Failed, batch.Duration())
	}
	if w.recorder != nil {
		if err := w.recorder.Record(recordCtx, batch); err != nil {
			w.logger.Error("failed to record sms batch", map[string]interface{}{
				"batchId": batch.BatchID,
				"error":   err,
			})
		}
	}
}
