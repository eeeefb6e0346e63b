// Implements the Worker, the unit of the pool that serves one request at a time.

package sim

import (
	"fmt"
)

// WorkerState represents the lifecycle state of a worker.
type WorkerState string

const (
	WorkerNew         WorkerState = "new"         // created, never assigned
	WorkerIdle        WorkerState = "idle"        // waiting for work
	WorkerBusy        WorkerState = "busy"        // serving a request
	WorkerDeactivated WorkerState = "deactivated" // taken out of rotation until work appears
)

// Worker serves at most one Request, consuming one tick of service per Tick call.
//
// Invariants:
//   - while busy, 0 < elapsed < current.Duration between cycles
//   - while not busy, elapsed == 0
//
// A worker is owned by the Simulator's pool and addressed by its index.
type Worker struct {
	Index int    // Position in the pool; dispatch tie-break order
	Name  string // Stable display name

	state   WorkerState
	current Request // valid only while busy, or after completion until Release
	holding bool    // true from Assign until Release
	elapsed int64   // ticks served on current
	startAt int64   // tick boundary at which service of current began

	busyTicks int64 // total ticks spent serving
	completed int   // number of requests finished
}

// NewWorker creates a worker in the New state.
func NewWorker(index int) *Worker {
	return &Worker{
		Index: index,
		Name:  fmt.Sprintf("server_%d", index),
		state: WorkerNew,
	}
}

// State returns the worker's lifecycle state.
func (w *Worker) State() WorkerState {
	return w.state
}

// IsBusy reports whether the worker is currently serving a request.
func (w *Worker) IsBusy() bool {
	return w.state == WorkerBusy
}

// Current returns the request being served and whether there is one.
func (w *Worker) Current() (Request, bool) {
	if !w.holding {
		return Request{}, false
	}
	return w.current, true
}

// Elapsed returns the ticks served on the current request (0 when idle).
func (w *Worker) Elapsed() int64 {
	return w.elapsed
}

// BusyTicks returns the total number of ticks this worker has spent serving.
func (w *Worker) BusyTicks() int64 {
	return w.busyTicks
}

// Completed returns the number of requests this worker has finished.
func (w *Worker) Completed() int {
	return w.completed
}

// Assign hands a request to the worker. startAt is the tick boundary at which
// service begins. Assigning to a worker that still holds a request is an
// invariant violation and panics.
func (w *Worker) Assign(req Request, startAt int64) {
	if w.state == WorkerBusy || w.holding {
		panic(fmt.Sprintf("Assign: worker %s already holds %s", w.Name, w.current.ID))
	}
	if req.Duration <= 0 {
		panic(fmt.Sprintf("Assign: request %s has non-positive duration %d", req.ID, req.Duration))
	}
	w.current = req
	w.holding = true
	w.elapsed = 0
	w.startAt = startAt
	w.state = WorkerBusy
}

// Tick advances the current request by one unit of service.
// Returns true when the request has received its full duration; the worker is
// then Idle and the caller must Release the finished request.
// Ticking a worker that is not busy panics.
func (w *Worker) Tick() bool {
	if w.state != WorkerBusy {
		panic(fmt.Sprintf("Tick: worker %s is %s, not busy", w.Name, w.state))
	}
	w.elapsed++
	w.busyTicks++
	if w.elapsed < w.current.Duration {
		return false
	}
	w.elapsed = 0
	w.state = WorkerIdle
	w.completed++
	return true
}

// Release clears the finished request and returns it with its service start tick.
func (w *Worker) Release() (Request, int64) {
	if w.state == WorkerBusy || !w.holding {
		panic(fmt.Sprintf("Release: worker %s has no finished request", w.Name))
	}
	req, start := w.current, w.startAt
	w.current = Request{}
	w.holding = false
	w.startAt = 0
	return req, start
}

// Deactivate takes an idle worker out of rotation.
// Busy workers cannot be deactivated.
func (w *Worker) Deactivate() {
	if w.state == WorkerBusy {
		panic(fmt.Sprintf("Deactivate: worker %s is busy", w.Name))
	}
	w.state = WorkerDeactivated
}

// Reactivate returns a deactivated worker to the idle state.
func (w *Worker) Reactivate() {
	if w.state != WorkerDeactivated {
		panic(fmt.Sprintf("Reactivate: worker %s is %s, not deactivated", w.Name, w.state))
	}
	w.state = WorkerIdle
}

// markIdle moves a never-assigned worker into the idle state.
func (w *Worker) markIdle() {
	if w.state == WorkerNew {
		w.state = WorkerIdle
	}
}

// This method returns a human-readable string representation of a Worker.
func (w *Worker) String() string {
	return fmt.Sprintf("Server{name=%s}", w.Name)
}
