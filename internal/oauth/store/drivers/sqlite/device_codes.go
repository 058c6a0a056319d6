package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/sableauth/sable/internal/oauth/domain"
)

type deviceCodesRepo struct {
	db              *sql.DB
	minPollInterval time.Duration
}

func (r *deviceCodesRepo) GetDeviceCodeByID(ctx context.Context, id string) (domain.DeviceCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_code, client_id, scopes, authorized, user_id,
		       issued_at, expires_at, last_polled_at
		FROM device_codes WHERE id = ?`, id)

	var (
		d          domain.DeviceCode
		scopes     string
		authorized sql.NullBool
		userID     sql.NullString
		lastPolled sql.NullTime
	)
	err := row.Scan(
		&d.ID, &d.UserCode, &d.ClientID, &scopes, &authorized, &userID,
		&d.IssuedAt, &d.ExpiresAt, &lastPolled,
	)
	if err != nil {
		return domain.DeviceCode{}, mapNotFound(err)
	}

	d.Scopes = splitFields(scopes)
	d.Authorized = mapNullBoolPtr(authorized)
	d.UserID = mapNullString(userID)
	d.LastPolledAt = mapNullTimePtr(lastPolled)
	return d, nil
}

func (r *deviceCodesRepo) SaveDeviceCode(ctx context.Context, d domain.DeviceCode) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE device_codes
		SET authorized = ?, user_id = ?, last_polled_at = ?
		WHERE id = ?`,
		mapOptionalBool(d.Authorized), mapStringNull(d.UserID),
		mapOptionalTime(d.LastPolledAt), d.ID,
	)
	return err
}

// ShouldSlowDown stamps the poll time and reports whether the previous poll
// was inside the minimum interval. The stamp always lands, so a device that
// keeps hammering keeps getting slow_down.
func (r *deviceCodesRepo) ShouldSlowDown(ctx context.Context, d domain.DeviceCode, now time.Time) (bool, error) {
	tooFast := d.LastPolledAt != nil && now.Sub(*d.LastPolledAt) < r.minPollInterval

	_, err := r.db.ExecContext(ctx, `
		UPDATE device_codes SET last_polled_at = ? WHERE id = ?`, now, d.ID)
	if err != nil {
		return false, err
	}
	return tooFast, nil
}

func (r *deviceCodesRepo) CreateDeviceCode(ctx context.Context, d domain.DeviceCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO device_codes (
			id, user_code, client_id, scopes, authorized, user_id,
			issued_at, expires_at, last_polled_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.UserCode, d.ClientID, joinFields(d.Scopes),
		mapOptionalBool(d.Authorized), mapStringNull(d.UserID),
		d.IssuedAt, d.ExpiresAt, mapOptionalTime(d.LastPolledAt),
	)
	return err
}
