// internal/parcels/repository.go
package parcels

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"wms-dispatch/internal/common/errors"
	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/models"
	"wms-dispatch/internal/sms"

	"github.com/lib/pq"
)

const selectColumns = `
		SELECT id, waybill_number, sender, COALESCE(sender_telephone, ''),
		       receiver, COALESCE(receiver_telephone, ''), COALESCE(destination, ''),
		       COALESCE(branch, ''), status
		FROM parcels`

// PhoneFilter narrows a listing by whether any party can be texted.
type PhoneFilter string

const (
	PhoneAny     PhoneFilter = ""
	PhoneValid   PhoneFilter = "valid"
	PhoneInvalid PhoneFilter = "invalid"
)

// Filter narrows List. Zero values match everything.
type Filter struct {
	Branch      string
	Search      string
	Status      *models.ParcelStatus
	Destination string
	Phone       PhoneFilter
	Limit       int
}

// Repository reads parcels from PostgreSQL.
type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log.Named("parcels"),
	}
}

// GetByID returns one parcel or PARCEL_NOT_FOUND.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Parcel, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+`
		WHERE id = $1`, id)

	p, err := scanParcel(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewParcelNotFoundError(id)
	}
	if err != nil {
		return nil, r.queryError(ctx, "parcel_by_id", err)
	}
	return p, nil
}

// GetByIDs loads parcels in the order of ids. Any id without a row fails the
// whole call with the missing ids listed.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]models.Parcel, error) {
	if len(ids) == 0 {
		return []models.Parcel{}, nil
	}

	rows, err := r.db.QueryContext(ctx, selectColumns+`
		WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, r.queryError(ctx, "parcels_by_ids", err)
	}
	defer rows.Close()

	byID := make(map[int64]models.Parcel, len(ids))
	for rows.Next() {
		p, err := scanParcel(rows)
		if err != nil {
			return nil, r.queryError(ctx, "parcels_by_ids", err)
		}
		byID[p.ID] = *p
	}
	if err := rows.Err(); err != nil {
		return nil, r.queryError(ctx, "parcels_by_ids", err)
	}

	out := make([]models.Parcel, 0, len(ids))
	var missing []int64
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, p)
	}
	if len(missing) > 0 {
		return nil, errors.NewParcelNotFoundError(missing...)
	}
	return out, nil
}

// List returns parcels matching f, newest first. Phone validity is applied
// after the query because it depends on number normalization, so the limit
// is applied in Go whenever a phone filter is set.
func (r *Repository) List(ctx context.Context, f Filter) ([]models.Parcel, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Branch != "" {
		where = append(where, "branch = "+arg(f.Branch))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + s + "%")
		where = append(where, fmt.Sprintf(
			"(waybill_number ILIKE %[1]s OR sender ILIKE %[1]s OR receiver ILIKE %[1]s OR destination ILIKE %[1]s)", p))
	}
	if f.Status != nil {
		where = append(where, "status = "+arg(int(*f.Status)))
	}
	if f.Destination != "" {
		where = append(where, "destination = "+arg(f.Destination))
	}

	query := selectColumns
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY id DESC"
	if f.Limit > 0 && f.Phone == PhoneAny {
		query += " LIMIT " + arg(f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.queryError(ctx, "parcels_list", err)
	}
	defer rows.Close()

	out := []models.Parcel{}
	for rows.Next() {
		p, err := scanParcel(rows)
		if err != nil {
			return nil, r.queryError(ctx, "parcels_list", err)
		}
		if !matchesPhone(*p, f.Phone) {
			continue
		}
		out = append(out, *p)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, r.queryError(ctx, "parcels_list", err)
	}
	return out, nil
}

// Destinations lists the distinct non-blank destinations, sorted.
func (r *Repository) Destinations(ctx context.Context, branch string) ([]string, error) {
	query := `
		SELECT DISTINCT destination
		FROM parcels
		WHERE destination IS NOT NULL AND TRIM(destination) <> ''`
	var args []interface{}
	if branch != "" {
		query += ` AND branch = $1`
		args = append(args, branch)
	}
	query += `
		ORDER BY destination`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.queryError(ctx, "destinations", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, r.queryError(ctx, "destinations", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, r.queryError(ctx, "destinations", err)
	}
	return out, nil
}

func (r *Repository) queryError(ctx context.Context, queryType string, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.NewQueryTimeoutError(queryType)
	}
	r.logger.Error("parcel query failed", map[string]interface{}{
		"queryType": queryType,
		"error":     err,
	})
	return errors.NewQueryExecutionFailedError(queryType, err)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanParcel(s scanner) (*models.Parcel, error) {
	var (
		p      models.Parcel
		status int
	)
	err := s.Scan(
		&p.ID, &p.WaybillNumber, &p.Sender, &p.SenderTelephone,
		&p.Receiver, &p.ReceiverTelephone, &p.Destination,
		&p.Branch, &status,
	)
	if err != nil {
		return nil, err
	}
	p.Status = models.ParcelStatus(status)
	return &p, nil
}

func matchesPhone(p models.Parcel, f PhoneFilter) bool {
	switch f {
	case PhoneValid:
		return sms.HasValidPhone(p)
	case PhoneInvalid:
		return !sms.HasValidPhone(p)
	default:
		return true
	}
}
