// Defines the Request value that models one unit of synthetic work in the simulation.
// A Request is created by the workload generator and never mutated afterwards.

package sim

import (
	"fmt"
)

// Request is an immutable description of one unit of work.
// Origin and Destination are opaque identifiers (dotted-quad strings in the
// synthetic workload); Duration is the number of ticks a worker needs to finish it.
type Request struct {
	ID          string // Unique identifier, assigned by the generator
	Origin      string // Incoming address
	Destination string // Outgoing address
	Duration    int64  // Service time in ticks; always > 0 for a valid request
	ArrivalTime int64  // Tick at which the request was submitted to the admission queue
}

// NewRequest creates a Request and validates its duration.
// A zero or negative duration can never reach completion under the tick model.
func NewRequest(id, origin, destination string, duration, arrivalTime int64) (Request, error) {
	req := Request{
		ID:          id,
		Origin:      origin,
		Destination: destination,
		Duration:    duration,
		ArrivalTime: arrivalTime,
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate reports whether the request can be processed.
func (req Request) Validate() error {
	if req.Duration <= 0 {
		return fmt.Errorf("request %q: duration must be positive, got %d", req.ID, req.Duration)
	}
	return nil
}

// withArrival returns a copy of the request stamped with the submission tick.
func (req Request) withArrival(clock int64) Request {
	req.ArrivalTime = clock
	return req
}

// This method returns a human-readable string representation of a Request.
func (req Request) String() string {
	return fmt.Sprintf("Request{ipIn=%s, ipOut=%s, duration=%d}", req.Origin, req.Destination, req.Duration)
}
