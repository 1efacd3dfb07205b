package gerr

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound is returned when an order lookup by external id matches nothing.
	ErrOrderNotFound = errors.New("order not found")

	// ErrTenantNotFound is returned when a tenant name is not registered.
	ErrTenantNotFound = errors.New("tenant not found")
)

// TransientFetchError indicates a failed call to a remote storefront or
// ads-reporting API. The core never retries it; callers log and propagate.
type TransientFetchError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *TransientFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient fetch error on %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("transient fetch error on %s: status %d", e.Endpoint, e.Status)
}

func (e *TransientFetchError) Unwrap() error {
	return e.Err
}

// IsTransientFetch reports whether err is a TransientFetchError.
func IsTransientFetch(err error) bool {
	var tfe *TransientFetchError
	return errors.As(err, &tfe)
}
