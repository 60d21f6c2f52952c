package domain

import (
	"errors"
	"fmt"
)

// Operator action errors
var (
	ErrHoldSignal              = errors.New("HOLD signal is not actionable")
	ErrBotInactive             = errors.New("bot is not armed")
	ErrObservationNotFound     = errors.New("currency pair not found in current snapshot")
	ErrTradeIntervalNotElapsed = errors.New("trade interval has not elapsed since the last trade")
	ErrInvalidSettings         = errors.New("invalid settings")
)

// PersistenceError reports a failed settings write. It is never retried.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist settings: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
