// Package sim provides the discrete-time dispatch engine: a fixed pool of
// workers draining a bounded FIFO admission queue, one tick at a time.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - request.go: the immutable unit of work (origin, destination, duration)
//   - worker.go: a pool member and its lifecycle (new, idle, busy, deactivated)
//   - queue.go: the bounded admission queue and its burst admission modes
//   - simulator.go: the tick loop (advance clock, dispatch, burst, quiescence)
//
// # Architecture
//
// The engine is single-threaded and owns the pool, the queue and the
// completion log. Randomness is confined to the Arrivals source; given the same
// Arrivals the engine is fully deterministic, and worker index order breaks
// every tie. Sub-packages:
//   - sim/workload/: the synthetic request and burst generator (implements Arrivals)
//   - sim/trace/: decision trace records built from engine events
//
// # Extension Points
//   - Arrivals: where requests and bursts come from
//   - Observer: receives every Event the engine emits, in order
//   - AdmissionMode and IdlePolicy: the configurable dispatch policies
package sim
