package domain

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrRemoteUnavailable = errors.New("remote api unavailable")
	ErrDataIntegrity     = errors.New("data integrity violation")
	ErrEmptyResult       = errors.New("empty result")
	ErrExportFailure     = errors.New("export failed")
)
