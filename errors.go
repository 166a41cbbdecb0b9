package docqa

import "fmt"

// UnavailableError reports that an external service kept failing after the
// retry budget was spent. The last error is wrapped and reachable through
// errors.Is and errors.As.
type UnavailableError struct {
	Service  string
	Attempts int
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable after %d attempts: %v", e.Service, e.Attempts, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
