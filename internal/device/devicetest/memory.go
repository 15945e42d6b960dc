// Package devicetest provides an in-memory device.Repository for tests.
package devicetest

import (
	"context"
	"sync"

	"devtrack/internal/domain"
	dterrors "devtrack/pkg/errors"
)

// MemoryRepository mirrors the guarded statements of the Postgres repository
// under a mutex. Fail, when set, is returned by every call.
type MemoryRepository struct {
	mu      sync.Mutex
	order   []string
	devices map[string]domain.Device
	Fail    error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{devices: map[string]domain.Device{}}
}

func (r *MemoryRepository) Create(ctx context.Context, device *domain.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	if _, ok := r.devices[device.SerialNumber]; ok {
		return dterrors.ErrDeviceAlreadyRegistered
	}
	device.UserName = nil
	r.devices[device.SerialNumber] = *device
	r.order = append(r.order, device.SerialNumber)
	return nil
}

func (r *MemoryRepository) FindBySerial(ctx context.Context, serialNumber string) (*domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	d, ok := r.devices[serialNumber]
	if !ok {
		return nil, dterrors.ErrDeviceNotFound
	}
	return &d, nil
}

func (r *MemoryRepository) FindAll(ctx context.Context) ([]*domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	out := []*domain.Device{}
	for _, sn := range r.order {
		if d, ok := r.devices[sn]; ok {
			out = append(out, &d)
		}
	}
	return out, nil
}

func (r *MemoryRepository) UpdateOwner(ctx context.Context, serialNumber string, userName *string) (*domain.Device, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, false, r.Fail
	}
	d, ok := r.devices[serialNumber]
	if !ok || d.Assigned() == (userName != nil) {
		return nil, false, nil
	}
	if userName != nil {
		name := *userName
		d.UserName = &name
	} else {
		d.UserName = nil
	}
	r.devices[serialNumber] = d
	return &d, true, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, serialNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	if _, ok := r.devices[serialNumber]; !ok {
		return dterrors.ErrDeviceNotFound
	}
	delete(r.devices, serialNumber)
	for i, sn := range r.order {
		if sn == serialNumber {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
