package service

import "errors"

var (
	// ErrInvoiceNotFound is returned when no invoice has the requested id
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrInvalidInvoice wraps invoice validation failures
	ErrInvalidInvoice = errors.New("invalid invoice")
	// ErrProfileNotFound is returned when no company profile has been saved
	ErrProfileNotFound = errors.New("company profile not found")
	// ErrInvalidProfile wraps profile validation failures
	ErrInvalidProfile = errors.New("invalid company profile")
	// ErrInvalidLogo is returned for uploads that are not a supported image or are too large
	ErrInvalidLogo = errors.New("invalid logo")
	// ErrInvalidEmailRequest wraps email request validation failures
	ErrInvalidEmailRequest = errors.New("invalid email request")
)
