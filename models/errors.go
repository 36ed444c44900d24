package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("restaurant not found")
	ErrAlreadyCleaned     = errors.New("queue already archived for this date")
	ErrManualRequired     = errors.New("free plan requires manual cleanup")
	ErrLimitReached       = errors.New("monthly customer limit reached")
	ErrQueueEntryNotFound = errors.New("queue number not found in live queue")
	ErrPlanNotPending     = errors.New("no pending payment proof for this restaurant")
	ErrTxConflict         = errors.New("concurrent modification, transaction aborted")
	ErrInvalidInput       = errors.New("invalid input")
)

// LimitError carries the usage figures shown with ErrLimitReached.
type LimitError struct {
	Message       string
	CustomersUsed int
	Limit         int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s (%d/%d)", e.Message, e.CustomersUsed, e.Limit)
}

func (e *LimitError) Unwrap() error {
	return ErrLimitReached
}
