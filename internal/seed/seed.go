// Package seed loads demo devices from YAML and registers them through the
// device service.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"

	"devtrack/internal/device"
	"devtrack/internal/domain"
	dterrors "devtrack/pkg/errors"
	"devtrack/pkg/logger"

	"gopkg.in/yaml.v3"
)

// Entry is one device in a seed file. A non-empty UserName also takes the
// device for that user.
type Entry struct {
	DeviceName   string `yaml:"device_name"`
	SerialNumber string `yaml:"serial_number"`
	UserName     string `yaml:"user_name,omitempty"`
}

type File struct {
	Devices []Entry `yaml:"devices"`
}

type Result struct {
	Registered int
	Taken      int
	Skipped    int
}

// Parse decodes a seed document and rejects entries without a name or serial.
func Parse(r io.Reader) ([]Entry, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, dterrors.Wrap(err, "failed to parse seed file")
	}

	for i, e := range f.Devices {
		if e.DeviceName == "" || e.SerialNumber == "" {
			return nil, fmt.Errorf("seed entry %d: device_name and serial_number are required", i+1)
		}
	}
	return f.Devices, nil
}

// Apply registers each entry. Serials that are already registered or already
// taken are skipped with a warning; any other error stops the run.
func Apply(ctx context.Context, svc *device.Service, entries []Entry, log logger.Logger) (Result, error) {
	var res Result
	for _, e := range entries {
		_, err := svc.Register(ctx, &domain.RegisterDeviceRequest{
			DeviceName:   e.DeviceName,
			SerialNumber: e.SerialNumber,
		})
		switch {
		case err == nil:
			res.Registered++
		case errors.Is(err, dterrors.ErrDeviceAlreadyRegistered):
			res.Skipped++
			log.Warn("Device already registered, skipping", map[string]interface{}{"serial_number": e.SerialNumber})
			continue
		default:
			return res, dterrors.Wrap(err, "failed to register "+e.SerialNumber)
		}

		if e.UserName == "" {
			continue
		}
		_, err = svc.Take(ctx, &domain.TakeDeviceRequest{UserName: e.UserName, SerialNumber: e.SerialNumber})
		switch {
		case err == nil:
			res.Taken++
		case errors.Is(err, dterrors.ErrDeviceAlreadyTaken):
			log.Warn("Device already taken, leaving holder unchanged", map[string]interface{}{"serial_number": e.SerialNumber})
		default:
			return res, dterrors.Wrap(err, "failed to take "+e.SerialNumber)
		}
	}
	return res, nil
}
