// Package handler provides HTTP handlers for the device tracking service.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"devtrack/internal/device"
	"devtrack/internal/domain"
	"devtrack/internal/middleware"
	dterrors "devtrack/pkg/errors"
	"devtrack/pkg/logger"
	"devtrack/pkg/validator"

	"github.com/gorilla/mux"
)

const (
	msgInvalidInput      = "Invalid input data"
	msgRegisterFields    = "Request body must contain device_name and serial_number"
	msgTakeFields        = "Request body must contain user_name and serial_number"
	msgDeviceNotFound    = "Device not found"
	msgAlreadyRegistered = "Device already registered"
	msgAlreadyTaken      = "Device already taken"
	msgNotAssigned       = "Device is not assigned to any user"
	msgDeviceDeleted     = "Device deleted successfully"
	msgDeviceReleased    = "Device released successfully"
	msgServerError       = "Server error"
)

const (
	maxRequestBodyBytes  = 1 << 20
	serialNumberRouteVar = "serial_number"
)

// DeviceHandler manages device endpoints.
type DeviceHandler struct {
	service   *device.Service
	validator *validator.Validator
	logger    logger.Logger
}

// NewDeviceHandler creates a DeviceHandler.
func NewDeviceHandler(service *device.Service, val *validator.Validator, log logger.Logger) *DeviceHandler {
	return &DeviceHandler{
		service:   service,
		validator: val,
		logger:    log,
	}
}

// Register handles POST /register.
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterDeviceRequest
	if !h.decode(w, r, &req, msgRegisterFields) {
		return
	}

	d, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, err, req.SerialNumber)
		return
	}

	h.respondJSON(w, http.StatusOK, d.Summary())
}

// List handles GET /devices.
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.service.List(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	out := make([]domain.DeviceSummary, 0, len(devices))
	for _, d := range devices {
		out = append(out, d.Summary())
	}
	h.respondJSON(w, http.StatusOK, out)
}

// Get handles GET /devices/{serial_number}.
func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	serial := mux.Vars(r)[serialNumberRouteVar]

	d, err := h.service.Get(r.Context(), serial)
	if err != nil {
		h.respondServiceError(w, r, err, serial)
		return
	}

	h.respondJSON(w, http.StatusOK, d.Holder())
}

// Take handles POST /take.
func (h *DeviceHandler) Take(w http.ResponseWriter, r *http.Request) {
	var req domain.TakeDeviceRequest
	if !h.decode(w, r, &req, msgTakeFields) {
		return
	}

	d, err := h.service.Take(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, err, req.SerialNumber)
		return
	}

	h.respondJSON(w, http.StatusOK, d)
}

// Delete handles DELETE /devices/{serial_number}.
func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	serial := mux.Vars(r)[serialNumberRouteVar]

	if err := h.service.Delete(r.Context(), serial); err != nil {
		h.respondServiceError(w, r, err, serial)
		return
	}

	h.respondMessage(w, http.StatusOK, msgDeviceDeleted)
}

// Release handles DELETE /release/{serial_number}.
func (h *DeviceHandler) Release(w http.ResponseWriter, r *http.Request) {
	serial := mux.Vars(r)[serialNumberRouteVar]

	d, err := h.service.Release(r.Context(), serial)
	if err != nil {
		h.respondServiceError(w, r, err, serial)
		return
	}

	h.respondJSON(w, http.StatusOK, domain.ReleaseDeviceResponse{
		Message: msgDeviceReleased,
		Device:  d,
	})
}

// decode reads a JSON body into dst and validates it. It writes the 400
// response itself and returns false when the request cannot proceed.
func (h *DeviceHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, missingMsg string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && err != io.EOF {
		h.respondMessage(w, http.StatusBadRequest, msgInvalidInput)
		return false
	}

	if err := h.validator.Validate(dst); err != nil {
		var verr *validator.ValidationError
		if errors.As(err, &verr) {
			h.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"message": missingMsg,
				"errors":  verr.Fields,
			})
			return false
		}
		h.respondMessage(w, http.StatusBadRequest, msgInvalidInput)
		return false
	}
	return true
}

func (h *DeviceHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, serial string) {
	switch {
	case errors.Is(err, dterrors.ErrDeviceNotFound):
		h.respondMessage(w, http.StatusNotFound, msgDeviceNotFound)
	case errors.Is(err, dterrors.ErrDeviceAlreadyRegistered):
		h.respondMessage(w, http.StatusBadRequest, msgAlreadyRegistered)
	case errors.Is(err, dterrors.ErrDeviceAlreadyTaken):
		h.respondMessage(w, http.StatusBadRequest, msgAlreadyTaken)
	case errors.Is(err, dterrors.ErrDeviceNotAssigned):
		h.respondMessage(w, http.StatusBadRequest, msgNotAssigned)
	default:
		h.logger.Error("Device store operation failed", map[string]interface{}{
			"error":         err.Error(),
			"method":        r.Method,
			"path":          r.URL.Path,
			"serial_number": serial,
			"request_id":    middleware.RequestIDFromContext(r.Context()),
		})
		h.respondMessage(w, http.StatusInternalServerError, msgServerError)
	}
}

func (h *DeviceHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *DeviceHandler) respondMessage(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"message": message})
}
