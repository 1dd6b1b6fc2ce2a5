package ports

import "time"

// Clock is the single time source for lifecycle calculations, injectable for
// testing. Implementations must return UTC.
type Clock interface {
	Now() time.Time
}
