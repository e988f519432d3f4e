package engine

import (
	"errors"
	"fmt"
)

// ErrLogicViolation is the sentinel wrapped by every fatal internal
// error the engine can produce: same-side match attempted, a fill
// exceeding remaining quantity, matching against a non-resting order,
// or an unknown time-in-force reaching the matcher. Per spec §7 these
// indicate a broken invariant — the gateway should treat a non-nil
// error from OnNewOrder/OnCancelOrder as unrecoverable and halt, not
// retry or translate it into a user-facing rejection.
var ErrLogicViolation = errors.New("engine: invariant violation")

func fatalf(orderID uint64, format string, args ...any) error {
	return fmt.Errorf("%w: order %d: %s", ErrLogicViolation, orderID, fmt.Sprintf(format, args...))
}
