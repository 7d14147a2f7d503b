package contract

import "errors"

var (
	ErrNoActiveContract = errors.New("no active contract for employee on date")
)
