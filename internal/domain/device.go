package domain

// Device is a serial-numbered item and the user currently holding it.
// A nil UserName means the device is unassigned.
type Device struct {
	DeviceName   string  `json:"device_name" db:"device_name"`
	SerialNumber string  `json:"serial_number" db:"serial_number"`
	UserName     *string `json:"user_name" db:"user_name"`
}

// Assigned reports whether the device is currently held by a user.
func (d *Device) Assigned() bool {
	return d.UserName != nil
}

// Summary is the shape returned by register and list.
func (d *Device) Summary() DeviceSummary {
	return DeviceSummary{DeviceName: d.DeviceName, SerialNumber: d.SerialNumber}
}

// Holder is the shape returned by a lookup by serial number.
func (d *Device) Holder() DeviceHolder {
	return DeviceHolder{DeviceName: d.DeviceName, UserName: d.UserName}
}

type DeviceSummary struct {
	DeviceName   string `json:"device_name"`
	SerialNumber string `json:"serial_number"`
}

type DeviceHolder struct {
	DeviceName string  `json:"device_name"`
	UserName   *string `json:"user_name"`
}

// RegisterDeviceRequest is the body of POST /register.
type RegisterDeviceRequest struct {
	DeviceName   string `json:"device_name" validate:"required"`
	SerialNumber string `json:"serial_number" validate:"required"`
}

// TakeDeviceRequest is the body of POST /take.
type TakeDeviceRequest struct {
	UserName     string `json:"user_name" validate:"required"`
	SerialNumber string `json:"serial_number" validate:"required"`
}

// ReleaseDeviceResponse is the body returned by a successful release.
type ReleaseDeviceResponse struct {
	Message string  `json:"message"`
	Device  *Device `json:"device"`
}
