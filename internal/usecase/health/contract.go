package health

import "context"

// Pinger checks the availability of one backend.
type Pinger interface {
	Ping(ctx context.Context) error
}
