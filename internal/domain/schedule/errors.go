package schedule

import "errors"

var (
	ErrNoScheduleFound = errors.New("no active work schedule found for employee on date")
)
