package data

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrVehicleNotFound is returned when no vehicle matches the lookup.
	ErrVehicleNotFound = errors.New("vehicle not found")
	// ErrCheckInNotFound is returned when no check-in record matches the lookup.
	ErrCheckInNotFound = errors.New("check-in record not found")
	// ErrAlreadyInside is returned when a vehicle with an open check-in is checked in again.
	ErrAlreadyInside = errors.New("vehicle already has an open check-in")
	// ErrAlreadyClosed is returned when closing a check-in that is already closed.
	ErrAlreadyClosed = errors.New("check-in record already closed")
)
