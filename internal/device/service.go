// ==============================================================================
// DEVICE SERVICE - internal/device/service.go
// ==============================================================================
package device

import (
	"context"
	"errors"

	"devtrack/internal/domain"
	dterrors "devtrack/pkg/errors"
	"devtrack/pkg/logger"
)

type Service struct {
	repo   Repository
	logger logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log,
	}
}

// Register adds an unassigned device. A serial number can only be registered once.
func (s *Service) Register(ctx context.Context, req *domain.RegisterDeviceRequest) (*domain.Device, error) {
	device := &domain.Device{
		DeviceName:   req.DeviceName,
		SerialNumber: req.SerialNumber,
	}

	if err := s.repo.Create(ctx, device); err != nil {
		return nil, err
	}

	s.logger.Info("Device registered", map[string]interface{}{
		"serial_number": device.SerialNumber,
		"device_name":   device.DeviceName,
	})

	return device, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Device, error) {
	return s.repo.FindAll(ctx)
}

func (s *Service) Get(ctx context.Context, serialNumber string) (*domain.Device, error) {
	return s.repo.FindBySerial(ctx, serialNumber)
}

// Take assigns an unassigned device to req.UserName.
func (s *Service) Take(ctx context.Context, req *domain.TakeDeviceRequest) (*domain.Device, error) {
	userName := req.UserName
	device, updated, err := s.repo.UpdateOwner(ctx, req.SerialNumber, &userName)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, s.classify(ctx, req.SerialNumber, dterrors.ErrDeviceAlreadyTaken)
	}

	s.logger.Info("Device taken", map[string]interface{}{
		"serial_number": device.SerialNumber,
		"user_name":     userName,
	})

	return device, nil
}

// Release clears the current assignment of an assigned device.
func (s *Service) Release(ctx context.Context, serialNumber string) (*domain.Device, error) {
	device, updated, err := s.repo.UpdateOwner(ctx, serialNumber, nil)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, s.classify(ctx, serialNumber, dterrors.ErrDeviceNotAssigned)
	}

	s.logger.Info("Device released", map[string]interface{}{
		"serial_number": serialNumber,
	})

	return device, nil
}

func (s *Service) Delete(ctx context.Context, serialNumber string) error {
	if err := s.repo.Delete(ctx, serialNumber); err != nil {
		return err
	}

	s.logger.Info("Device deleted", map[string]interface{}{
		"serial_number": serialNumber,
	})

	return nil
}

// classify explains why a guarded owner update matched no row: either the
// device does not exist, or it is in the wrong assignment state.
func (s *Service) classify(ctx context.Context, serialNumber string, stateErr error) error {
	_, err := s.repo.FindBySerial(ctx, serialNumber)
	if errors.Is(err, dterrors.ErrDeviceNotFound) {
		return dterrors.ErrDeviceNotFound
	}
	if err != nil {
		return err
	}
	return stateErr
}

type Repository interface {
	Create(ctx context.Context, device *domain.Device) error
	FindBySerial(ctx context.Context, serialNumber string) (*domain.Device, error)
	FindAll(ctx context.Context) ([]*domain.Device, error)
	UpdateOwner(ctx context.Context, serialNumber string, userName *string) (*domain.Device, bool, error)
	Delete(ctx context.Context, serialNumber string) error
}
