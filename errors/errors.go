package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrMissingFields      = fmt.Errorf("missing required field 'username' or 'message'")
	ErrStorageUnreachable = fmt.Errorf("storage unreachable")
)
