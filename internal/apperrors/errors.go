package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the requesting user is not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrReconciliation indicates a budget recompute pass could not complete.
// The mutation that triggered the pass has already been committed; callers
// should surface this as a warning rather than a failure of the mutation.
var ErrReconciliation = errors.New("budget reconciliation failed")
