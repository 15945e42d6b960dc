package postgres

import (
	"context"
	"database/sql"
	"errors"

	"devtrack/internal/domain"
	dterrors "devtrack/pkg/errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type DeviceRepository struct {
	db *sqlx.DB
}

func NewDeviceRepository(db *sqlx.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) FindBySerial(ctx context.Context, serialNumber string) (*domain.Device, error) {
	var device domain.Device
	query := `
		SELECT device_name, serial_number, user_name
		FROM devices WHERE serial_number = $1`

	err := r.db.GetContext(ctx, &device, query, serialNumber)
	if err == sql.ErrNoRows {
		return nil, dterrors.ErrDeviceNotFound
	}
	if err != nil {
		return nil, dterrors.Wrap(err, "failed to find device")
	}
	return &device, nil
}

func (r *DeviceRepository) FindAll(ctx context.Context) ([]*domain.Device, error) {
	devices := []*domain.Device{}
	query := `SELECT device_name, serial_number, user_name FROM devices`

	if err := r.db.SelectContext(ctx, &devices, query); err != nil {
		return nil, dterrors.Wrap(err, "failed to list devices")
	}
	return devices, nil
}

// Create inserts an unassigned device. The conflict clause turns a concurrent
// duplicate into ErrDeviceAlreadyRegistered instead of a second row.
func (r *DeviceRepository) Create(ctx context.Context, device *domain.Device) error {
	query := `
		INSERT INTO devices (device_name, serial_number, user_name)
		VALUES ($1, $2, NULL)
		ON CONFLICT (serial_number) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, device.DeviceName, device.SerialNumber)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return dterrors.ErrDeviceAlreadyRegistered
		}
		return dterrors.Wrap(err, "failed to create device")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return dterrors.Wrap(err, "failed to create device")
	}
	if n == 0 {
		return dterrors.ErrDeviceAlreadyRegistered
	}
	device.UserName = nil
	return nil
}

// UpdateOwner moves user_name between NULL and a value in one statement.
// A non-nil userName only applies to an unassigned device; nil only applies
// to an assigned one. updated is false when no row satisfied the guard.
func (r *DeviceRepository) UpdateOwner(ctx context.Context, serialNumber string, userName *string) (device *domain.Device, updated bool, err error) {
	var (
		query string
		args  []interface{}
	)
	if userName != nil {
		query = `
			UPDATE devices SET user_name = $1
			WHERE serial_number = $2 AND user_name IS NULL
			RETURNING device_name, serial_number, user_name`
		args = []interface{}{*userName, serialNumber}
	} else {
		query = `
			UPDATE devices SET user_name = NULL
			WHERE serial_number = $1 AND user_name IS NOT NULL
			RETURNING device_name, serial_number, user_name`
		args = []interface{}{serialNumber}
	}

	var d domain.Device
	err = r.db.GetContext(ctx, &d, query, args...)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, dterrors.Wrap(err, "failed to update device owner")
	}
	return &d, true, nil
}

func (r *DeviceRepository) Delete(ctx context.Context, serialNumber string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE serial_number = $1`, serialNumber)
	if err != nil {
		return dterrors.Wrap(err, "failed to delete device")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dterrors.Wrap(err, "failed to delete device")
	}
	if n == 0 {
		return dterrors.ErrDeviceNotFound
	}
	return nil
}
