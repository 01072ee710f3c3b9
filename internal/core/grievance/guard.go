package grievance

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
	err     error
}

// Allow returns an allowing guard result.
func Allow() GuardResult {
	return GuardResult{Allowed: true}
}

// Deny returns a denying guard result carrying a typed error.
func Deny(err error) GuardResult {
	return GuardResult{Allowed: false, Reason: err.Error(), err: err}
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	return fmt.Errorf("%s", r.Reason)
}
