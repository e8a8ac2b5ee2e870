package service

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrPartnerNotFound   = errors.New("partner not found")
	ErrInvalidOTP        = errors.New("invalid OTP provided for collection")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("concurrent modification, retry")
	ErrInvalidSignature  = errors.New("payment signature mismatch")
	ErrUnknownStatus     = errors.New("unknown delivery status")
)
