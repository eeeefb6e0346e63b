package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/dispatch-sim/sim"
	"github.com/inference-sim/dispatch-sim/sim/trace"
)

// eventLogger writes every engine event to logrus as a structured entry.
// Per-request events go to Trace, worker and burst events to Debug.
type eventLogger struct {
	log *logrus.Logger
}

func newEventLogger(log *logrus.Logger) *eventLogger {
	return &eventLogger{log: log}
}

func (l *eventLogger) Observe(ev sim.Event) {
	entry := l.log.WithFields(logrus.Fields{"tick": ev.Timestamp(), "event": string(ev.Kind())})
	switch e := ev.(type) {
	case *sim.RequestAdmittedEvent:
		entry.WithFields(logrus.Fields{"request": e.Request.ID, "queue_len": e.QueueLen}).Trace("request admitted")
	case *sim.RequestRejectedEvent:
		entry.WithFields(logrus.Fields{"request": e.Request.ID, "reason": e.Reason}).Debug("request rejected")
	case *sim.RequestAssignedEvent:
		entry.WithFields(logrus.Fields{"request": e.Request.ID, "worker": e.WorkerName}).Trace("request assigned")
	case *sim.RequestCompletedEvent:
		entry.WithFields(logrus.Fields{
			"request":  e.Completion.Request.ID,
			"worker":   e.Completion.WorkerName,
			"duration": e.Completion.Request.Duration,
		}).Trace("request completed")
	case *sim.WorkerStateChangedEvent:
		entry.WithFields(logrus.Fields{"worker": e.WorkerName, "from": string(e.From), "to": string(e.To)}).Debug("worker state changed")
	case *sim.BurstArrivedEvent:
		entry.WithFields(logrus.Fields{"size": e.Size, "admitted": e.Admitted, "rejected": e.Rejected}).Debug("burst arrived")
	}
}

// traceRecorder turns engine events into decision-trace records.
type traceRecorder struct {
	trace       *trace.SimulationTrace
	reactivated map[int]bool // worker index -> reactivated and not yet assigned
}

func newTraceRecorder(st *trace.SimulationTrace) *traceRecorder {
	return &traceRecorder{trace: st, reactivated: make(map[int]bool)}
}

func (r *traceRecorder) Observe(ev sim.Event) {
	switch e := ev.(type) {
	case *sim.RequestAdmittedEvent:
		r.trace.RecordAdmission(trace.AdmissionRecord{
			RequestID: e.Request.ID,
			Clock:     e.Timestamp(),
			Admitted:  true,
			QueueLen:  e.QueueLen,
		})
	case *sim.RequestRejectedEvent:
		r.trace.RecordAdmission(trace.AdmissionRecord{
			RequestID: e.Request.ID,
			Clock:     e.Timestamp(),
			Admitted:  false,
			Reason:    e.Reason,
		})
	case *sim.WorkerStateChangedEvent:
		if e.From == sim.WorkerDeactivated {
			r.reactivated[e.WorkerIndex] = true
		}
	case *sim.RequestAssignedEvent:
		r.trace.RecordAssignment(trace.AssignmentRecord{
			RequestID:   e.Request.ID,
			Clock:       e.Timestamp(),
			Worker:      e.WorkerName,
			WaitTicks:   e.StartTime - e.Request.ArrivalTime,
			Reactivated: r.reactivated[e.WorkerIndex],
		})
		delete(r.reactivated, e.WorkerIndex)
	case *sim.RequestCompletedEvent:
		c := e.Completion
		r.trace.RecordCompletion(trace.CompletionRecord{
			RequestID: c.Request.ID,
			Clock:     c.CompletionTime,
			Worker:    c.WorkerName,
			StartTime: c.StartTime,
			Duration:  c.Request.Duration,
		})
	}
}
