// internal/dispatchlog/postgres.go
package dispatchlog

import (
	"context"
	"database/sql"

	"wms-dispatch/internal/common/database"
	"wms-dispatch/internal/common/errors"
	"wms-dispatch/internal/sms"
)

const insertEntry = `
		INSERT INTO sms_dispatch_log (
			result_id, batch_id, batch_kind, template_id, parcel_id, waybill, role,
			recipient, phone, status, message, msg_id, cost, test_mode, sent_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

// PostgresRecorder writes a batch to sms_dispatch_log in one transaction.
type PostgresRecorder struct {
	db *sql.DB
}

// NewPostgresRecorder writes to the sms_dispatch_log table.
func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// Record inserts one row per result in a single transaction.
func (r *PostgresRecorder) Record(ctx context.Context, batch *sms.BatchResult) error {
	entries := Entries(batch)
	if len(entries) == 0 {
		return nil
	}

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertEntry)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range entries {
			_, err := stmt.ExecContext(ctx,
				e.ResultID, e.BatchID, e.BatchKind, nullString(e.TemplateID), e.ParcelID,
				nullString(e.Waybill), nullString(e.Role), nullString(e.Recipient),
				e.Phone, e.Status, e.Message, nullString(e.MsgID), e.Cost, e.TestMode, e.SentAt,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
