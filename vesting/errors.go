package vesting

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthorized      = errors.New("NotAuthorized")
	ErrAlreadyInitialized = errors.New("AlreadyInitialized")
	ErrNotInitialized     = errors.New("NotInitialized")
	ErrCannotBeZero       = errors.New("CannotBeZero")

	ErrInvalidWindow = errors.New("InvalidWindow")
	ErrInvalidCap    = errors.New("InvalidCap")
	ErrTierLocked    = errors.New("TierLocked")

	ErrTierNotActive     = errors.New("TierNotActive")
	ErrNotEligible       = errors.New("NotEligible")
	ErrWalletCapExceeded = errors.New("WalletCapExceeded")
	ErrTierCapExceeded   = errors.New("TierCapExceeded")

	ErrScheduleLocked     = errors.New("ScheduleLocked")
	ErrAllocationOverflow = errors.New("AllocationOverflow")
	ErrIncompleteSchedule = errors.New("IncompleteSchedule")
	ErrAlreadyLocked      = errors.New("AlreadyLocked")
	ErrVestingNotStarted  = errors.New("VestingNotStarted")
)

func ErrInvalidTier(tierID uint64) error {
	return fmt.Errorf("InvalidTier: tier %d does not exist", tierID)
}

func ErrInvalidAmount(entity, value string) error {
	return fmt.Errorf("InvalidAmount for %s with value %s", entity, value)
}

func ErrInvalidUserAddress(address string) error {
	return fmt.Errorf("InvalidUserAddress: %s", address)
}

func ErrInvalidContractAddress(contractAddress string) error {
	return fmt.Errorf("InvalidContractAddress for address %s", contractAddress)
}

func ErrTransferFailed(token, from, to, amount string) error {
	return fmt.Errorf("TransferFailed on token %s from %s to %s for amount %s", token, from, to, amount)
}

type CustomError struct {
	Code    int
	Message string
	Err     error
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

func NewCustomError(code int, message string, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
