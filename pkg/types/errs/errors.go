package errs

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrAlreadyExists  = errors.New("record already exists")
	ErrStatusConflict = errors.New("status conflict")
	ErrValidation     = errors.New("validation failed")
)
