package usecase

import "errors"

// DomainError is a problem with the caller's input. Boundaries answer 400.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is an infrastructure failure. Err keeps the cause so
// sentinels like entity.ErrStoreUnavailable stay visible to errors.Is.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeLeadNotFound     = "LEAD_NOT_FOUND"
	CodeDatabase         = "DATABASE_ERROR"
	CodeCompletion       = "COMPLETION_ERROR"
)
