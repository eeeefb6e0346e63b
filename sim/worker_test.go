package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerState_Constants_HaveExpectedStringValues(t *testing.T) {
	assert.Equal(t, WorkerState("new"), WorkerNew)
	assert.Equal(t, WorkerState("idle"), WorkerIdle)
	assert.Equal(t, WorkerState("busy"), WorkerBusy)
	assert.Equal(t, WorkerState("deactivated"), WorkerDeactivated)
}

func TestNewWorker_StartsNewAndEmpty(t *testing.T) {
	w := NewWorker(3)

	assert.Equal(t, 3, w.Index)
	assert.Equal(t, "server_3", w.Name)
	assert.Equal(t, WorkerNew, w.State())
	assert.False(t, w.IsBusy())
	_, ok := w.Current()
	assert.False(t, ok)
	assert.Equal(t, int64(0), w.Elapsed())
	assert.Equal(t, "Server{name=server_3}", w.String())
}

func TestWorker_TickUntilDuration_CompletesExactlyOnce(t *testing.T) {
	// GIVEN a worker assigned a 3-tick request
	w := NewWorker(0)
	w.Assign(Request{ID: "r", Duration: 3}, 10)

	// WHEN ticked three times
	// THEN only the third tick reports completion
	assert.False(t, w.Tick())
	assert.Equal(t, int64(1), w.Elapsed())
	assert.False(t, w.Tick())
	assert.Equal(t, int64(2), w.Elapsed())
	assert.True(t, w.Tick())

	// AND the worker is idle with a zero counter, holding the finished request
	assert.Equal(t, WorkerIdle, w.State())
	assert.Equal(t, int64(0), w.Elapsed())
	req, start := w.Release()
	assert.Equal(t, "r", req.ID)
	assert.Equal(t, int64(10), start)
	_, ok := w.Current()
	assert.False(t, ok)
	assert.Equal(t, 1, w.Completed())
	assert.Equal(t, int64(3), w.BusyTicks())
}

func TestWorker_DurationOne_CompletesOnFirstTick(t *testing.T) {
	w := NewWorker(0)
	w.Assign(Request{ID: "r", Duration: 1}, 0)
	assert.True(t, w.Tick())
}

func TestWorker_ElapsedStaysBelowDurationWhileBusy(t *testing.T) {
	w := NewWorker(0)
	w.Assign(Request{ID: "r", Duration: 5}, 0)
	for !w.Tick() {
		require.True(t, w.IsBusy())
		require.Less(t, w.Elapsed(), int64(5))
	}
}

func TestWorker_AssignWhileBusy_Panics(t *testing.T) {
	w := NewWorker(0)
	w.Assign(Request{ID: "a", Duration: 2}, 0)
	assert.Panics(t, func() { w.Assign(Request{ID: "b", Duration: 2}, 0) })
}

func TestWorker_AssignBeforeRelease_Panics(t *testing.T) {
	// GIVEN a worker whose request just finished but was not released
	w := NewWorker(0)
	w.Assign(Request{ID: "a", Duration: 1}, 0)
	require.True(t, w.Tick())

	// THEN assigning again is an invariant violation
	assert.Panics(t, func() { w.Assign(Request{ID: "b", Duration: 1}, 1) })
}

func TestWorker_TickWhenNotBusy_Panics(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Worker)
	}{
		{"new", func(*Worker) {}},
		{"idle", func(w *Worker) { w.markIdle() }},
		{"deactivated", func(w *Worker) { w.Deactivate() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorker(0)
			tt.setup(w)
			assert.Panics(t, func() { w.Tick() })
		})
	}
}

func TestWorker_DeactivatedWorker_ReactivatedByAssign(t *testing.T) {
	// GIVEN a deactivated worker
	w := NewWorker(0)
	w.Deactivate()
	require.Equal(t, WorkerDeactivated, w.State())

	// WHEN work is assigned
	w.Assign(Request{ID: "r", Duration: 2}, 5)

	// THEN it is busy again
	assert.Equal(t, WorkerBusy, w.State())
}

func TestWorker_DeactivateWhileBusy_Panics(t *testing.T) {
	w := NewWorker(0)
	w.Assign(Request{ID: "r", Duration: 2}, 0)
	assert.Panics(t, func() { w.Deactivate() })
}

func TestWorker_ReleaseWithoutCompletion_Panics(t *testing.T) {
	w := NewWorker(0)
	assert.Panics(t, func() { w.Release() })
	w.Assign(Request{ID: "r", Duration: 2}, 0)
	assert.Panics(t, func() { w.Release() })
}
