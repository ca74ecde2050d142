package api

import "fmt"

type (
	InvalidThrottle struct {
		Throttle Throttle
	}
)

func (i InvalidThrottle) Error() string {
	return fmt.Sprintf("login throttle must allow at least one attempt, got %v per minute with burst %v", i.Throttle.PerMinute, i.Throttle.Burst)
}
