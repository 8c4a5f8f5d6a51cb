// Package domain contains the core data types for the device lending service
// and the booking rules that decide whether a device can change hands.
// This package has no dependencies on storage or HTTP and is imported by
// every other internal package (repo, service, handler).
package domain

// Device is a physical asset that users can borrow.
// Devices are seeded administratively and never change through the API.
type Device struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is a person who can book devices.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
