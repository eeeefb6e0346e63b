package sim

// Event is a structured notification emitted by the Simulator during a cycle.
// Events carry data only; formatting them is the observer's concern.
type Event interface {
	Timestamp() int64
	Kind() EventKind
}

// EventKind names an Event type.
type EventKind string

const (
	KindRequestAdmitted    EventKind = "request_admitted"
	KindRequestRejected    EventKind = "request_rejected"
	KindRequestAssigned    EventKind = "request_assigned"
	KindRequestCompleted   EventKind = "request_completed"
	KindWorkerStateChanged EventKind = "worker_state_changed"
	KindBurstArrived       EventKind = "burst_arrived"
)

// Observer receives events in the exact order the Simulator produces them.
// Observers run synchronously inside the tick loop and must not call back into
// the Simulator's mutating methods.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ev Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) { f(ev) }

// RequestAdmittedEvent reports a request accepted into the admission queue.
type RequestAdmittedEvent struct {
	time     int64
	Request  Request
	QueueLen int // queue length after admission
}

func (e *RequestAdmittedEvent) Timestamp() int64 { return e.time }
func (e *RequestAdmittedEvent) Kind() EventKind  { return KindRequestAdmitted }

// RequestRejectedEvent reports a request turned away because the queue was full.
type RequestRejectedEvent struct {
	time    int64
	Request Request
	Reason  string
}

func (e *RequestRejectedEvent) Timestamp() int64 { return e.time }
func (e *RequestRejectedEvent) Kind() EventKind  { return KindRequestRejected }

// RequestAssignedEvent reports a request handed to a worker.
type RequestAssignedEvent struct {
	time        int64
	Request     Request
	WorkerIndex int
	WorkerName  string
	StartTime   int64 // tick boundary at which service began; one before Timestamp
}

func (e *RequestAssignedEvent) Timestamp() int64 { return e.time }
func (e *RequestAssignedEvent) Kind() EventKind  { return KindRequestAssigned }

// RequestCompletedEvent reports a completion appended to the log.
type RequestCompletedEvent struct {
	time       int64
	Completion Completion
}

func (e *RequestCompletedEvent) Timestamp() int64 { return e.time }
func (e *RequestCompletedEvent) Kind() EventKind  { return KindRequestCompleted }

// WorkerStateChangedEvent reports a worker lifecycle transition.
type WorkerStateChangedEvent struct {
	time        int64
	WorkerIndex int
	WorkerName  string
	From, To    WorkerState
}

func (e *WorkerStateChangedEvent) Timestamp() int64 { return e.time }
func (e *WorkerStateChangedEvent) Kind() EventKind  { return KindWorkerStateChanged }

// BurstArrivedEvent reports a burst of new requests offered to the queue.
type BurstArrivedEvent struct {
	time     int64
	Size     int
	Admitted int
	Rejected int
}

func (e *BurstArrivedEvent) Timestamp() int64 { return e.time }
func (e *BurstArrivedEvent) Kind() EventKind  { return KindBurstArrived }
