package repository

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalid           = errors.New("invalid input")
	ErrInsufficientFunds = errors.New("insufficient funds in checking account")
	ErrAlreadyPaid       = errors.New("expense already paid this month")
	ErrAlreadyExecuted   = errors.New("recommendation is not pending")
	ErrStatementClosed   = errors.New("statement cycle already closed")
)
