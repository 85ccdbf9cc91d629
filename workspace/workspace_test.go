package workspace

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/pledgedesk/gate"
	"github.com/zeptools/pledgedesk/record"
)

func newRegistry(clock *time.Time, busy *atomic.Bool) *Registry {
	tickets := &gate.Tickets{Key: []byte("0123456789abcdef0123456789abcdef")}
	r := NewRegistry(func(sessionID string) *gate.Gate {
		return gate.New(sessionID, tickets, busy.Load)
	})
	r.Now = func() time.Time { return *clock }
	return r
}

func TestRegistry_Lifecycle(t *testing.T) {
	clock := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	var busy atomic.Bool
	r := newRegistry(&clock, &busy)

	w := r.Create("s1", "ghaith")
	require.NoError(t, w.Do(func(rec *record.ObserverRecord) error {
		return rec.SetField(record.FieldObserverName, "كريم")
	}))

	got, ok := r.Get("s1")
	require.True(t, ok)
	assert.Same(t, w, got)
	assert.Equal(t, "كريم", got.Snapshot().ObserverName)

	r.Drop("s1")
	_, ok = r.Get("s1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_CreateStartsEmpty(t *testing.T) {
	clock := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	var busy atomic.Bool
	r := newRegistry(&clock, &busy)

	w := r.Create("s1", "ghaith")
	_ = w.Do(func(rec *record.ObserverRecord) error { rec.CandidateName = "x"; return nil })

	fresh := r.Create("s1", "ghaith")
	assert.Equal(t, record.ObserverRecord{}, fresh.Snapshot())
}

func TestRegistry_Sweep(t *testing.T) {
	clock := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	var busy atomic.Bool
	r := newRegistry(&clock, &busy)

	r.Create("idle", "a")
	r.Create("active", "b")

	clock = clock.Add(20 * time.Minute)
	_, _ = r.Get("active")
	clock = clock.Add(15 * time.Minute)

	assert.Equal(t, 1, r.Sweep(30*time.Minute))
	_, ok := r.Get("idle")
	assert.False(t, ok)
	_, ok = r.Get("active")
	assert.True(t, ok)

	busy.Store(true)
	clock = clock.Add(time.Hour)
	assert.Equal(t, 0, r.Sweep(30*time.Minute), "generating workspaces survive")
}

func TestRegistry_SweepJob(t *testing.T) {
	clock := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	var busy atomic.Bool
	r := newRegistry(&clock, &busy)
	r.Create("idle", "a")
	clock = clock.Add(time.Hour)

	job := r.SweepJob(30 * time.Minute)
	assert.True(t, job.Matches(time.Date(2024, 3, 5, 10, 5, 0, 0, time.UTC)))
	assert.False(t, job.Matches(time.Date(2024, 3, 5, 10, 6, 0, 0, time.UTC)))
	require.NoError(t, job.Task(context.Background()))
	assert.Equal(t, 0, r.Len())
}
