// Package workspace owns the per-session state: one record and one confirmation gate.
package workspace

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/zeptools/pledgedesk/gate"
	"github.com/zeptools/pledgedesk/record"
	"github.com/zeptools/pledgedesk/schedjobs"
)

// Workspace serializes every access to its record through Do.
// Gate has its own lock and may be used directly.
type Workspace struct {
	SessionID string
	Username  string
	Gate      *gate.Gate

	mu       sync.Mutex
	record   record.ObserverRecord
	lastSeen time.Time
}

// Do runs fn with exclusive access to the record
func (w *Workspace) Do(fn func(rec *record.ObserverRecord) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(&w.record)
}

// Snapshot copies the record for rendering or export outside the lock
func (w *Workspace) Snapshot() record.ObserverRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record.Snapshot()
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) LastSeen() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// GateFactory builds the gate of a new workspace
type GateFactory func(sessionID string) *gate.Gate

type Registry struct {
	NewGate GateFactory
	Now     func() time.Time

	mu     sync.Mutex
	spaces map[string]*Workspace
}

func NewRegistry(newGate GateFactory) *Registry {
	return &Registry{
		NewGate: newGate,
		Now:     time.Now,
		spaces:  make(map[string]*Workspace),
	}
}

// Create starts an empty workspace for a fresh session, replacing any previous one
func (r *Registry) Create(sessionID string, username string) *Workspace {
	w := &Workspace{
		SessionID: sessionID,
		Username:  username,
		Gate:      r.NewGate(sessionID),
		lastSeen:  r.Now(),
	}
	r.mu.Lock()
	r.spaces[sessionID] = w
	r.mu.Unlock()
	log.Printf("[INFO][WORKSPACE] created for %s", username)
	return w
}

// Get returns the session's workspace and marks it as seen
func (r *Registry) Get(sessionID string) (*Workspace, bool) {
	r.mu.Lock()
	w, ok := r.spaces[sessionID]
	r.mu.Unlock()
	if ok {
		w.touch(r.Now())
	}
	return w, ok
}

// Drop discards the workspace and its record
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	_, ok := r.spaces[sessionID]
	delete(r.spaces, sessionID)
	r.mu.Unlock()
	if ok {
		log.Printf("[INFO][WORKSPACE] dropped")
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spaces)
}

// Sweep drops workspaces idle for longer than idle. Ones whose gate is generating are kept.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.Now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, w := range r.spaces {
		if w.LastSeen().Before(cutoff) && w.Gate.State() != gate.Generating {
			delete(r.spaces, id)
			n++
		}
	}
	if n > 0 {
		log.Printf("[INFO][WORKSPACE] swept %d idle workspaces", n)
	}
	return n
}

// SweepJob runs Sweep every few minutes on the scheduler
func (r *Registry) SweepJob(idle time.Duration) *schedjobs.CronJob {
	job := schedjobs.NewEveryMinCronJob("workspace-sweep", func(context.Context) error {
		r.Sweep(idle)
		return nil
	})
	job.Minutes = schedjobs.BitsEveryNMinutes(5)
	return job
}
