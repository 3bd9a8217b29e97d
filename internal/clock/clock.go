package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock supplies the current time. Production wiring uses the system
// clock; tests and the demo simulation inject their own.
type Clock interface {
	Now() time.Time
}

// Module provides the system clock.
var Module = fx.Provide(NewSystemClock)

type systemClock struct{}

func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
