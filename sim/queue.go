// Implements the AdmissionQueue, which holds all requests waiting for a worker.
// Requests are enqueued on arrival and served strictly first-come-first-served.

package sim

import (
	"fmt"
	"strings"
)

// AdmissionResult is the outcome of offering a request to the AdmissionQueue.
type AdmissionResult string

const (
	Accepted AdmissionResult = "accepted"
	Rejected AdmissionResult = "rejected"
)

// AdmissionQueue is a bounded FIFO queue of requests waiting to be dispatched.
// Length never exceeds capacity; every request turned away increments the
// rejection counter by one. No operation blocks.
type AdmissionQueue struct {
	queue    []Request     // FIFO queue of requests
	capacity int           // maximum number of pending requests
	mode     AdmissionMode // batch admission policy
	rejected int           // running count of rejected requests
	peak     int           // largest length ever observed
}

// NewAdmissionQueue creates an empty queue. Capacity must be positive.
func NewAdmissionQueue(capacity int, mode AdmissionMode) *AdmissionQueue {
	if capacity <= 0 {
		panic(fmt.Sprintf("NewAdmissionQueue: capacity must be positive, got %d", capacity))
	}
	if !IsValidAdmissionMode(string(mode)) {
		panic(fmt.Sprintf("NewAdmissionQueue: unknown admission mode %q", mode))
	}
	if mode == "" {
		mode = AdmissionTailReject
	}
	return &AdmissionQueue{
		queue:    make([]Request, 0, capacity),
		capacity: capacity,
		mode:     mode,
	}
}

// Enqueue offers a request to the back of the queue.
// The request is accepted iff the queue holds fewer than capacity requests.
func (aq *AdmissionQueue) Enqueue(r Request) AdmissionResult {
	if len(aq.queue) >= aq.capacity {
		aq.rejected++
		return Rejected
	}
	aq.queue = append(aq.queue, r)
	aq.peak = max(aq.peak, len(aq.queue))
	return Accepted
}

// EnqueueBatch offers a burst of requests in order and returns one result per request.
// Under AdmissionTailReject the single-request rule is applied element by element,
// so once capacity is reached every remaining request is rejected together.
// Under AdmissionAllOrNothing the batch is admitted only if it fits entirely.
func (aq *AdmissionQueue) EnqueueBatch(reqs []Request) []AdmissionResult {
	results := make([]AdmissionResult, len(reqs))
	if aq.mode == AdmissionAllOrNothing && len(aq.queue)+len(reqs) > aq.capacity {
		for i := range reqs {
			results[i] = Rejected
		}
		aq.rejected += len(reqs)
		return results
	}
	for i, r := range reqs {
		results[i] = aq.Enqueue(r)
	}
	return results
}

// Dequeue removes the request that has waited longest.
// Returns false if the queue is empty.
func (aq *AdmissionQueue) Dequeue() (Request, bool) {
	if len(aq.queue) == 0 {
		return Request{}, false
	}
	r := aq.queue[0]
	aq.queue = aq.queue[1:]
	return r, true
}

// Peek returns the request at the front of the queue without removing it.
func (aq *AdmissionQueue) Peek() (Request, bool) {
	if len(aq.queue) == 0 {
		return Request{}, false
	}
	return aq.queue[0], true
}

// Len returns the number of requests in the queue.
func (aq *AdmissionQueue) Len() int {
	return len(aq.queue)
}

// Capacity returns the maximum number of pending requests.
func (aq *AdmissionQueue) Capacity() int {
	return aq.capacity
}

// Rejected returns the number of requests turned away so far.
func (aq *AdmissionQueue) Rejected() int {
	return aq.rejected
}

// Peak returns the largest queue length observed.
func (aq *AdmissionQueue) Peak() int {
	return aq.peak
}

// Mode returns the batch admission policy.
func (aq *AdmissionQueue) Mode() AdmissionMode {
	return aq.mode
}

// Items returns a copy of the pending requests in FIFO order.
func (aq *AdmissionQueue) Items() []Request {
	out := make([]Request, len(aq.queue))
	copy(out, aq.queue)
	return out
}

func (aq *AdmissionQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, val := range aq.queue {
		sb.WriteString(val.ID)
		if i < len(aq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
