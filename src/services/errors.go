package services

import "errors"

// Taxonomy of expected orchestration failures. State-machine violations
// (ErrAlreadyProcessed, ErrAlreadyFinalized) are normal under races and
// retried callbacks, not bugs.
var (
	ErrNotFound                = errors.New("conversion not found")
	ErrForbidden               = errors.New("access to this conversion is not authorized")
	ErrAlreadyProcessed        = errors.New("conversion already processed")
	ErrAlreadyFinalized        = errors.New("transaction already finalized")
	ErrUnknownTransaction      = errors.New("unknown transaction")
	ErrReplayDetected          = errors.New("callback replay detected")
	ErrStaleCallback           = errors.New("callback outside freshness window")
	ErrProvider                = errors.New("provider call failed")
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
	ErrAlreadyValidated        = errors.New("transaction already validated")
	ErrNotRefundable           = errors.New("only validated transactions are refundable")
	ErrAdminRequired           = errors.New("administrator access required")
	ErrReasonRequired          = errors.New("a reason is required for this action")
)
