package sim

// AdmissionMode selects how a burst is admitted when it does not fit in the queue.
type AdmissionMode string

const (
	// AdmissionTailReject admits requests in order until capacity is reached and
	// rejects every remaining request in the burst.
	AdmissionTailReject AdmissionMode = "tail-reject"
	// AdmissionAllOrNothing admits a burst only if all of it fits; otherwise the
	// whole burst is rejected.
	AdmissionAllOrNothing AdmissionMode = "all-or-nothing"
)

// validAdmissionModes maps accepted admission mode strings.
var validAdmissionModes = map[AdmissionMode]bool{
	AdmissionTailReject:   true,
	AdmissionAllOrNothing: true,
	"":                    true, // empty defaults to tail-reject
}

// IsValidAdmissionMode returns true if the given name is a recognized admission mode.
func IsValidAdmissionMode(name string) bool {
	return validAdmissionModes[AdmissionMode(name)]
}

// IdlePolicy selects what happens to a worker that finds no pending work.
type IdlePolicy string

const (
	// IdleWait leaves the worker idle; it is polled again on the next cycle.
	IdleWait IdlePolicy = "idle"
	// IdleDeactivate takes the worker out of rotation until new work is assigned.
	IdleDeactivate IdlePolicy = "deactivate"
)

var validIdlePolicies = map[IdlePolicy]bool{
	IdleWait:       true,
	IdleDeactivate: true,
	"":             true,
}

// IsValidIdlePolicy returns true if the given name is a recognized idle policy.
func IsValidIdlePolicy(name string) bool {
	return validIdlePolicies[IdlePolicy(name)]
}
