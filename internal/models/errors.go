package models

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrReturnNotFound     = errors.New("return record not found")
	ErrSKUNotFound        = errors.New("sku not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("no user logged in")
	ErrConflict           = errors.New("resource conflict")
	ErrNoValidRows        = errors.New("no valid rows found")
	ErrNoOrders           = errors.New("no orders to export")
)
