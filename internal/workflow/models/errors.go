package models

import dErrors "willgate/pkg/domain-errors"

var (
	ErrSessionNotFound      = dErrors.New(dErrors.CodeNotFound, "no workflow session for account")
	ErrAccountNotFound      = dErrors.New(dErrors.CodeNotFound, "account not known to the ledger")
	ErrNotOwner             = dErrors.New(dErrors.CodeForbidden, "caller does not own the account")
	ErrInvalidState         = dErrors.New(dErrors.CodeInvalidState, "operation not allowed in the current workflow state")
	ErrInvalidResetMode     = dErrors.New(dErrors.CodeValidation, "reset mode must be soft or hard")
	ErrNotAuthorized        = dErrors.New(dErrors.CodeInvalidState, "distribution is not authorized")
	ErrNoBeneficiaries      = dErrors.New(dErrors.CodeValidation, "No beneficiaries")
	ErrDistributionInFlight = dErrors.New(dErrors.CodeConflict, "distribution already in flight")
	ErrDistributionFailed   = dErrors.New(dErrors.CodeDistributionFailed, "distribution failed")
)
