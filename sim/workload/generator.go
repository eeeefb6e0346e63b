package workload

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"net/netip"

	"github.com/inference-sim/dispatch-sim/sim"
	"github.com/sirupsen/logrus"
)

// Generator produces synthetic requests and burst sizes from a WorkloadSpec.
// It implements sim.Arrivals.
//
// Request contents (duration, origin, destination) are drawn from the workload
// RNG subsystem and burst triggering from the burst subsystem, so changing the
// burst probability leaves the request stream unchanged.
type Generator struct {
	spec        *WorkloadSpec
	duration    Sampler
	burstSize   Sampler
	burstProb   float64
	origin      addressSpace
	destination addressSpace
	workload    *rand.Rand
	burst       *rand.Rand
	next        int
}

// NewGenerator validates spec, fills its defaults for a pool of the given size,
// and binds it to rng.
func NewGenerator(spec *WorkloadSpec, workers int, rng *sim.PartitionedRNG) (*Generator, error) {
	if spec == nil {
		spec = &WorkloadSpec{}
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	resolved := spec.WithDefaults(workers)
	duration, err := NewSampler(resolved.Duration)
	if err != nil {
		return nil, fmt.Errorf("duration: %w", err)
	}
	burstSize, err := NewSampler(resolved.Burst.Size)
	if err != nil {
		return nil, fmt.Errorf("burst.size: %w", err)
	}
	origin, err := newAddressSpace(resolved.Addresses.Origin)
	if err != nil {
		return nil, fmt.Errorf("addresses.origin: %w", err)
	}
	destination, err := newAddressSpace(resolved.Addresses.Destination)
	if err != nil {
		return nil, fmt.Errorf("addresses.destination: %w", err)
	}
	logrus.Debugf("workload: duration=%s burst.size=%s burst.probability=%.3f initial=%d",
		resolved.Duration.Type, resolved.Burst.Size.Type, *resolved.Burst.Probability, *resolved.InitialRequests)
	return &Generator{
		spec:        resolved,
		duration:    duration,
		burstSize:   burstSize,
		burstProb:   *resolved.Burst.Probability,
		origin:      origin,
		destination: destination,
		workload:    rng.ForSubsystem(sim.SubsystemWorkload),
		burst:       rng.ForSubsystem(sim.SubsystemBurst),
	}, nil
}

// Spec returns the resolved spec, with defaults applied.
func (g *Generator) Spec() *WorkloadSpec {
	return g.spec
}

// InitialRequests returns how many requests should be queued before the first tick.
func (g *Generator) InitialRequests() int {
	return *g.spec.InitialRequests
}

// Next returns a freshly generated request.
func (g *Generator) Next() sim.Request {
	id := fmt.Sprintf("request_%d", g.next)
	g.next++
	d := g.duration.Sample(g.workload)
	origin := g.origin.random(g.workload)
	destination := g.destination.random(g.workload)
	r, err := sim.NewRequest(id, origin, destination, d, 0)
	if err != nil {
		// samplers never return values below 1
		panic(fmt.Sprintf("Generator.Next: %v", err))
	}
	return r
}

// Take returns the next n requests.
func (g *Generator) Take(n int) []sim.Request {
	reqs := make([]sim.Request, n)
	for i := range reqs {
		reqs[i] = g.Next()
	}
	return reqs
}

// BurstSize reports the size of the burst arriving at clock, or 0 if none.
// Exactly one trigger draw is made per call so the burst stream stays aligned
// with the tick count.
func (g *Generator) BurstSize(clock int64) int {
	if g.burst.Float64() >= g.burstProb {
		return 0
	}
	n := int(min(g.burstSize.Sample(g.burst), MaxBurstSize))
	logrus.Tracef("[tick %07d] burst triggered: %d requests", clock, n)
	return n
}

// Generated returns the number of requests produced so far.
func (g *Generator) Generated() int {
	return g.next
}

// addressSpace draws random IPv4 addresses from a prefix.
type addressSpace struct {
	base uint32
	host uint32 // mask of the host bits
}

func newAddressSpace(cidr string) (addressSpace, error) {
	p, err := parseIPv4Prefix(cidr)
	if err != nil {
		return addressSpace{}, err
	}
	a := p.Addr().As4()
	var host uint32
	if p.Bits() < 32 {
		host = ^uint32(0) >> p.Bits()
	}
	return addressSpace{base: binary.BigEndian.Uint32(a[:]), host: host}, nil
}

func (s addressSpace) random(rng *rand.Rand) string {
	v := s.base | (rng.Uint32() & s.host)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b).String()
}
