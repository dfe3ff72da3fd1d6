package domain

import "errors"

// Every failure in the core surfaces as one of these sentinels, wrapped with
// call-site context. Callers branch with errors.Is.
var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrInsufficientShares     = errors.New("insufficient shares")
	ErrInsufficientLiquidity  = errors.New("insufficient liquidity")
	ErrInvalidAllocation      = errors.New("invalid allocation")
	ErrUnsupportedToken       = errors.New("unsupported token")
	ErrUnregisteredController = errors.New("unregistered controller")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrNotFunded              = errors.New("request not funded")
	ErrAlreadyClaimed         = errors.New("request already claimed")
	ErrReentrantCall          = errors.New("reentrant call")
	ErrInactiveSource         = errors.New("yield source inactive")
	ErrRequestNotFound        = errors.New("withdrawal request not found")
)
