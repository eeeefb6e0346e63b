// sim/simulator.go
package sim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Arrivals supplies synthetic work to the Simulator.
// Implementations own their random sources; the Simulator calls them only from
// the tick loop, so they need not be safe for concurrent use.
type Arrivals interface {
	// Next returns a freshly generated request with a positive duration.
	Next() Request
	// BurstSize reports how many requests arrive at the given tick; 0 means none.
	BurstSize(clock int64) int
}

// StopReason records why a run ended.
type StopReason string

const (
	StopRunning   StopReason = ""
	StopHorizon   StopReason = "horizon"
	StopQuiescent StopReason = "quiescent"
	StopCancelled StopReason = "cancelled"
)

// Simulator is the dispatch engine: it holds the clock, the worker pool, the
// admission queue and the completion log, and drives them one cycle at a time.
//
// Each cycle:
//  1. advance the clock; past the horizon the run ends
//  2. visit workers in pool order: busy workers serve one tick and report
//     completions, non-busy workers take the next queued request (and serve
//     its first tick immediately) or park according to the idle policy
//  3. offer any burst of new arrivals to the queue
//  4. optionally end the run on quiescence
//
// The Simulator is single-threaded and deterministic given deterministic Arrivals.
type Simulator struct {
	Clock   int64
	Horizon int64
	Config  SimConfig
	// Workers is the pool, indexed by Worker.Index; dispatch order is slice order.
	Workers []*Worker
	// Queue aka admission queue of requests not yet assigned to a worker
	Queue *AdmissionQueue
	Log   *CompletionLog

	arrivals   Arrivals
	observers  []Observer
	submitted  int
	admitted   int
	stopReason StopReason
}

// NewSimulator validates cfg and creates a Simulator with an idle pool and an
// empty queue. arrivals may be nil, in which case only explicitly submitted
// requests are processed.
func NewSimulator(cfg SimConfig, arrivals Arrivals) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	if cfg.Mode == "" {
		cfg.Mode = AdmissionTailReject
	}
	if cfg.Idle == "" {
		cfg.Idle = IdleWait
	}
	workers := make([]*Worker, cfg.Workers)
	for i := range workers {
		workers[i] = NewWorker(i)
	}
	return &Simulator{
		Clock:    0,
		Horizon:  cfg.Horizon,
		Config:   cfg,
		Workers:  workers,
		Queue:    NewAdmissionQueue(cfg.Capacity, cfg.Mode),
		Log:      NewCompletionLog(),
		arrivals: arrivals,
	}, nil
}

// AddObserver registers an observer for per-cycle events.
func (sim *Simulator) AddObserver(o Observer) {
	sim.observers = append(sim.observers, o)
}

func (sim *Simulator) emit(ev Event) {
	for _, o := range sim.observers {
		o.Observe(ev)
	}
}

// Submit offers a single request to the admission queue at the current clock.
// Invalid requests are refused with an error and are not counted as submitted.
func (sim *Simulator) Submit(req Request) (AdmissionResult, error) {
	if err := req.Validate(); err != nil {
		return Rejected, err
	}
	req = req.withArrival(sim.Clock)
	sim.submitted++
	res := sim.Queue.Enqueue(req)
	sim.record(req, res)
	return res, nil
}

// SubmitBatch offers a burst of requests using the queue's batch admission mode.
// If any request is invalid nothing is submitted.
func (sim *Simulator) SubmitBatch(reqs []Request) ([]AdmissionResult, error) {
	for _, r := range reqs {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	return sim.offer(reqs), nil
}

func (sim *Simulator) offer(reqs []Request) []AdmissionResult {
	stamped := make([]Request, len(reqs))
	for i, r := range reqs {
		stamped[i] = r.withArrival(sim.Clock)
	}
	sim.submitted += len(stamped)
	results := sim.Queue.EnqueueBatch(stamped)
	for i, res := range results {
		sim.record(stamped[i], res)
	}
	return results
}

func (sim *Simulator) record(req Request, res AdmissionResult) {
	if res == Accepted {
		sim.admitted++
		sim.emit(&RequestAdmittedEvent{time: sim.Clock, Request: req, QueueLen: sim.Queue.Len()})
		return
	}
	sim.Log.addRejected(1)
	logrus.Debugf("[tick %07d] rejected %s: queue full (%d/%d)", sim.Clock, req.ID, sim.Queue.Len(), sim.Queue.Capacity())
	sim.emit(&RequestRejectedEvent{time: sim.Clock, Request: req, Reason: "queue full"})
}

// Step executes one cycle. It returns false, without running a cycle, once the
// run has ended.
func (sim *Simulator) Step() bool {
	if sim.stopReason != StopRunning {
		return false
	}
	if sim.Clock+1 > sim.Horizon {
		sim.stopReason = StopHorizon
		return false
	}
	sim.Clock++
	logrus.Tracef("[tick %07d] queue=%d", sim.Clock, sim.Queue.Len())

	for _, w := range sim.Workers {
		if w.IsBusy() {
			if w.Tick() {
				sim.complete(w)
			}
			continue
		}
		sim.dispatch(w)
	}

	sim.burst()

	if sim.Config.StopWhenQuiescent && sim.Quiescent() {
		sim.stopReason = StopQuiescent
	}
	return true
}

// dispatch gives the next queued request to a non-busy worker and serves its
// first tick, so a duration-1 request completes in the cycle it is assigned.
func (sim *Simulator) dispatch(w *Worker) {
	req, ok := sim.Queue.Dequeue()
	if !ok {
		sim.park(w)
		return
	}
	if w.State() == WorkerDeactivated {
		w.Reactivate()
		sim.stateChanged(w, WorkerDeactivated)
	}
	from := w.State()
	start := sim.Clock - 1
	w.Assign(req, start)
	logrus.Debugf("[tick %07d] %s assigned %s", sim.Clock, w, req.ID)
	sim.emit(&RequestAssignedEvent{time: sim.Clock, Request: req, WorkerIndex: w.Index, WorkerName: w.Name, StartTime: start})
	sim.stateChanged(w, from)
	if w.Tick() {
		sim.complete(w)
	}
}

// park applies the idle policy to a worker that found no pending work.
func (sim *Simulator) park(w *Worker) {
	from := w.State()
	switch {
	case sim.Config.Idle == IdleDeactivate && from != WorkerDeactivated:
		w.Deactivate()
	case from == WorkerNew:
		w.markIdle()
	default:
		return
	}
	sim.stateChanged(w, from)
}

func (sim *Simulator) complete(w *Worker) {
	req, start := w.Release()
	c := Completion{
		Request:        req,
		WorkerIndex:    w.Index,
		WorkerName:     w.Name,
		StartTime:      start,
		CompletionTime: sim.Clock,
	}
	sim.Log.append(c)
	logrus.Debugf("[tick %07d] %s processed %s", sim.Clock, w, req.ID)
	sim.emit(&RequestCompletedEvent{time: sim.Clock, Completion: c})
	sim.stateChanged(w, WorkerBusy)
}

func (sim *Simulator) stateChanged(w *Worker, from WorkerState) {
	if from == w.State() {
		return
	}
	sim.emit(&WorkerStateChangedEvent{time: sim.Clock, WorkerIndex: w.Index, WorkerName: w.Name, From: from, To: w.State()})
}

// burst offers a batch of new arrivals when the arrival source triggers one.
func (sim *Simulator) burst() {
	if sim.arrivals == nil {
		return
	}
	n := sim.arrivals.BurstSize(sim.Clock)
	if n <= 0 {
		return
	}
	batch := make([]Request, n)
	for i := range batch {
		batch[i] = sim.arrivals.Next()
		if err := batch[i].Validate(); err != nil {
			panic(fmt.Sprintf("burst: arrival source produced an invalid request: %v", err))
		}
	}
	results := sim.offer(batch)
	admitted := 0
	for _, res := range results {
		if res == Accepted {
			admitted++
		}
	}
	logrus.Debugf("[tick %07d] burst of %d: %d admitted, %d rejected", sim.Clock, n, admitted, n-admitted)
	sim.emit(&BurstArrivedEvent{time: sim.Clock, Size: n, Admitted: admitted, Rejected: n - admitted})
}

// Run executes cycles until the horizon is passed, the run becomes quiescent
// (when configured), or ctx is cancelled. Cancellation is checked once per
// cycle; everything recorded up to that point is kept.
func (sim *Simulator) Run(ctx context.Context) error {
	logrus.Infof("Starting simulation with %d workers, queue capacity=%d, horizon=%d ticks, admission=%s, idle=%s",
		len(sim.Workers), sim.Queue.Capacity(), sim.Horizon, sim.Config.Mode, sim.Config.Idle)
	for {
		if err := ctx.Err(); err != nil {
			sim.stopReason = StopCancelled
			logrus.Warnf("[tick %07d] Simulation cancelled: %v", sim.Clock, err)
			return err
		}
		if !sim.Step() {
			break
		}
	}
	logrus.Infof("[tick %07d] Simulation ended (%s)", sim.Clock, sim.stopReason)
	return nil
}

// Quiescent reports whether no worker is busy and the queue is empty.
func (sim *Simulator) Quiescent() bool {
	if sim.Queue.Len() > 0 {
		return false
	}
	for _, w := range sim.Workers {
		if w.IsBusy() {
			return false
		}
	}
	return true
}

// InFlight returns the number of requests currently held by busy workers.
func (sim *Simulator) InFlight() int {
	n := 0
	for _, w := range sim.Workers {
		if w.IsBusy() {
			n++
		}
	}
	return n
}

// Submitted returns the number of requests ever offered to the queue.
func (sim *Simulator) Submitted() int {
	return sim.submitted
}

// Admitted returns the number of requests ever accepted by the queue.
func (sim *Simulator) Admitted() int {
	return sim.admitted
}

// StopReason returns why the run ended, or StopRunning while it can continue.
func (sim *Simulator) StopReason() StopReason {
	return sim.stopReason
}

// Done reports whether the run has ended.
func (sim *Simulator) Done() bool {
	return sim.stopReason != StopRunning
}
