// internal/dispatchlog/multi.go
package dispatchlog

import (
	"context"
	stderrors "errors"

	"wms-dispatch/internal/sms"
)

// Multi records to every recorder and joins their errors.
type Multi []sms.Recorder

// Record calls every recorder and joins their errors.
func (m Multi) Record(ctx context.Context, batch *sms.BatchResult) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, batch); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
