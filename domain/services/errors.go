package services

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable machine-readable classification returned to callers
// so clients can distinguish "try a different code" from "already processed"
// and so on.
type ErrorCode string

const (
	CodeValidation              ErrorCode = "validation_error"
	CodeInvalidDraw             ErrorCode = "invalid_draw"
	CodeDuplicateTransaction    ErrorCode = "duplicate_transaction"
	CodeTransactionNotFound     ErrorCode = "transaction_not_found"
	CodeOnChainFailure          ErrorCode = "on_chain_failure"
	CodeNoValidTransfer         ErrorCode = "no_valid_transfer"
	CodeInsufficientPayment     ErrorCode = "insufficient_payment"
	CodeSenderMismatch          ErrorCode = "sender_mismatch"
	CodeSelfReferral            ErrorCode = "self_referral_not_allowed"
	CodeBonusLimitReached       ErrorCode = "bonus_limit_reached"
	CodeAuthorization           ErrorCode = "authorization_error"
	CodeRateLimited             ErrorCode = "rate_limit_exceeded"
	CodePersistence             ErrorCode = "persistence_error"
	CodeSettlementInconsistency ErrorCode = "settlement_inconsistency"
)

// ServiceError carries an ErrorCode alongside a human-readable message
type ServiceError struct {
	Code    ErrorCode
	Message string
	cause   error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

// NewServiceError creates a ServiceError with a formatted message
func NewServiceError(code ErrorCode, format string, args ...any) *ServiceError {
	return &ServiceError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapServiceError attaches a cause to a coded error
func WrapServiceError(code ErrorCode, cause error, format string, args ...any) *ServiceError {
	return &ServiceError{Code: code, Message: fmt.Sprintf(format, args...), cause: cause}
}

// CodeOf extracts the error code from an error chain. Unclassified errors
// report as persistence failures, the safe default for a datastore-backed
// engine.
func CodeOf(err error) ErrorCode {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodePersistence
}

// IsCode reports whether the error chain carries the given code
func IsCode(err error, code ErrorCode) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Code == code
}
