package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
)

// Error carries a client-facing message; Kind is one of the sentinels above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

const (
	MsgMissingFields      = "Please include all fields"
	MsgPasswordMismatch   = "Passwords do not match"
	MsgInvalidRole        = "Invalid role"
	MsgUserExists         = "User already exists"
	MsgInvalidCredentials = "Invalid email or password"
	MsgUserNotFound       = "User not found"
	MsgUserForbidden      = "Forbidden: You do not have permission to update this user"
	MsgRoleForbidden      = "Forbidden: Insufficient privileges"
	MsgProductUpdate      = "Forbidden: You do not have permission to update this product"
	MsgProductDelete      = "Forbidden: You do not have permission to delete this product"
	MsgInvalidProduct     = "Please include product_name, product_description, a non-negative price and product_tag"
)
