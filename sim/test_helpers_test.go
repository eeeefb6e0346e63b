package sim

import (
	"fmt"
	"math/rand"
)

// scriptedArrivals delivers fixed-duration bursts at predetermined ticks.
type scriptedArrivals struct {
	bursts   map[int64]int // tick -> burst size
	duration int64
	next     int
}

func (s *scriptedArrivals) Next() Request {
	r := Request{
		ID:          fmt.Sprintf("burst_%d", s.next),
		Origin:      "10.0.0.1",
		Destination: "10.0.0.2",
		Duration:    s.duration,
	}
	s.next++
	return r
}

func (s *scriptedArrivals) BurstSize(clock int64) int {
	return s.bursts[clock]
}

// randomArrivals mirrors the production generator's shape with a private RNG:
// durations in [minDur, maxDur], bursts with probability p of size [1, maxBurst].
type randomArrivals struct {
	workload *rand.Rand
	burst    *rand.Rand
	minDur   int64
	maxDur   int64
	p        float64
	maxBurst int
	next     int
}

func newRandomArrivals(seed int64, minDur, maxDur int64, p float64, maxBurst int) *randomArrivals {
	rng := NewPartitionedRNG(NewSimulationKey(seed))
	return &randomArrivals{
		workload: rng.ForSubsystem(SubsystemWorkload),
		burst:    rng.ForSubsystem(SubsystemBurst),
		minDur:   minDur,
		maxDur:   maxDur,
		p:        p,
		maxBurst: maxBurst,
	}
}

func (a *randomArrivals) Next() Request {
	d := a.minDur + a.workload.Int63n(a.maxDur-a.minDur+1)
	r := Request{
		ID:          fmt.Sprintf("request_%d", a.next),
		Origin:      fmt.Sprintf("10.0.0.%d", a.workload.Intn(256)),
		Destination: fmt.Sprintf("10.1.0.%d", a.workload.Intn(256)),
		Duration:    d,
	}
	a.next++
	return r
}

func (a *randomArrivals) BurstSize(_ int64) int {
	if a.burst.Float64() >= a.p {
		return 0
	}
	return 1 + a.burst.Intn(a.maxBurst)
}

// newTestSimulator builds a Simulator or panics; for tests with known-valid configs.
func newTestSimulator(workers, capacity int, horizon int64, arrivals Arrivals, policy PolicyConfig) *Simulator {
	cfg := SimConfig{
		Horizon:      horizon,
		PoolConfig:   NewPoolConfig(workers),
		QueueConfig:  NewQueueConfig(capacity, AdmissionTailReject),
		PolicyConfig: policy,
	}
	s, err := NewSimulator(cfg, arrivals)
	if err != nil {
		panic(err)
	}
	return s
}

// eventRecorder collects every event emitted by a Simulator.
type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) Observe(ev Event) {
	r.events = append(r.events, ev)
}

func (r *eventRecorder) ofKind(k EventKind) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.Kind() == k {
			out = append(out, ev)
		}
	}
	return out
}
