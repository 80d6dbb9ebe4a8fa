package core

import (
	"errors"
	"fmt"
)

// Error taxonomy. ErrValidation, ErrNotFound, ErrTransport and ErrAuth are
// the categories callers branch on with errors.Is; the field-level sentinels
// below all wrap ErrValidation so a single check covers every malformed
// input.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("expense not found")
	ErrTransport  = errors.New("transport failure")
	ErrAuth       = errors.New("authentication failed")

	ErrInvalidAmount      = fmt.Errorf("%w: amount must be greater than 0", ErrValidation)
	ErrEmptyDescription   = fmt.Errorf("%w: empty description", ErrValidation)
	ErrDescriptionTooLong = fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	ErrInvalidCategory    = fmt.Errorf("%w: invalid category", ErrValidation)
	ErrInvalidDate        = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrEmptyPatch         = fmt.Errorf("%w: no fields to update", ErrValidation)
)
