package models

import "errors"

// Custom errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrDuplicateKey       = errors.New("duplicate key violation")
)
