package domain

import "time"

// DeviceCode is the grant artifact of the RFC 8628 device flow. The device
// polls the token endpoint with it while the user approves or denies on a
// second screen.
type DeviceCode struct {
	ID       string
	UserCode string

	ClientID string
	Scopes   []string

	// Authorized is tri-state: nil while the user decision is pending,
	// then true (granted) or false (denied). Once false it stays false.
	Authorized *bool

	// UserID is set when the user approves.
	UserID string

	IssuedAt  time.Time
	ExpiresAt time.Time

	// LastPolledAt drives the slow_down policy.
	LastPolledAt *time.Time
}

// Pending reports whether the user decision is still outstanding.
func (d DeviceCode) Pending() bool { return d.Authorized == nil }

// Denied reports whether the user (or the server) denied the device.
func (d DeviceCode) Denied() bool { return d.Authorized != nil && !*d.Authorized }
