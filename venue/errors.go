package venue

import "fmt"

// AuthError means login failed and the session never became usable.
// Fatal to the strategy that owns the venue.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("venue auth failed: %v", e.Err) }

func (e *AuthError) Unwrap() error { return e.Err }

// VenueError is any network or HTTP failure on a call made after
// authentication. It carries the full request/response context so the
// failing tick can be reconstructed from logs. It aborts the current
// tick only; the loop survives to the next one.
type VenueError struct {
	Method string
	Path   string
	Status int
	Body   string
	Err    error
}

func (e *VenueError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("venue call %s %s failed: status %d: %s", e.Method, e.Path, e.Status, e.Body)
	}
	return fmt.Sprintf("venue call %s %s failed: %v", e.Method, e.Path, e.Err)
}

func (e *VenueError) Unwrap() error { return e.Err }

// OrderRejected wraps a single leg's placement failure so one leg does
// not prevent the other from being attempted.
type OrderRejected struct {
	Action Action
	Price  float64
	Size   int
	Err    error
}

func (e *OrderRejected) Error() string {
	return fmt.Sprintf("%s %d @ %.2f rejected: %v", e.Action, e.Size, e.Price, e.Err)
}

func (e *OrderRejected) Unwrap() error { return e.Err }
