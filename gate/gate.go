// Package gate holds the explicit confirmation step in front of an export.
//
//	closed --Open(guard ok)--> open --Confirm(ticket)--> generating --ok--> closed
//	                            |                                   \--fail--> open
//	                            \--Cancel--> closed
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zeptools/pledgedesk/export"
	"github.com/zeptools/pledgedesk/record"
	"github.com/zeptools/pledgedesk/sec"
)

var (
	ErrNotOpen = errors.New("confirmation gate is not open")
	ErrTicket  = errors.New("confirmation ticket rejected")
)

type State int

const (
	Closed State = iota
	Open
	Generating
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Generating:
		return "generating"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	TicketIssuer     = "pledgedesk/gate"
	DefaultTicketTTL = 10 * time.Minute
)

// Tickets signs confirmation tickets. One instance serves every gate.
type Tickets struct {
	Key []byte
	TTL time.Duration
	Now func() time.Time
}

func (t *Tickets) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Tickets) ttl() time.Duration {
	if t.TTL > 0 {
		return t.TTL
	}
	return DefaultTicketTTL
}

// BusyFunc reports whether the pipeline is running for this gate's owner
type BusyFunc func() bool

// Gate belongs to one session
type Gate struct {
	mu       sync.Mutex
	owner    string
	open     bool
	ticketID string

	tickets *Tickets
	busy    BusyFunc
}

func New(owner string, tickets *Tickets, busy BusyFunc) *Gate {
	if busy == nil {
		busy = func() bool { return false }
	}
	return &Gate{owner: owner, tickets: tickets, busy: busy}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

func (g *Gate) stateLocked() State {
	switch {
	case g.busy():
		return Generating
	case g.open:
		return Open
	default:
		return Closed
	}
}

// Open runs the export guard and, when it passes, issues a fresh ticket.
// Opening an open gate replaces its ticket.
func (g *Gate) Open(rec *record.ObserverRecord) (string, error) {
	if err := export.Validate(rec); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy() {
		return "", export.ErrBusy
	}
	signed, jti, err := sec.IssueHS256Ticket(g.tickets.Key, TicketIssuer, g.owner, g.tickets.ttl(), g.tickets.now())
	if err != nil {
		return "", err
	}
	g.open = true
	g.ticketID = jti
	return signed, nil
}

// Cancel closes the gate. Refused while generating.
func (g *Gate) Cancel() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy() {
		return export.ErrBusy
	}
	g.closeLocked()
	return nil
}

func (g *Gate) closeLocked() {
	g.open = false
	g.ticketID = ""
}

// Confirm checks the ticket and calls run. Success closes the gate,
// failure leaves it open so the operator can retry or cancel.
func (g *Gate) Confirm(ctx context.Context, ticket string, run func(context.Context) error) error {
	g.mu.Lock()
	if err := g.checkLocked(ticket); err != nil {
		g.mu.Unlock()
		return err
	}
	g.mu.Unlock()

	if err := run(ctx); err != nil {
		return err
	}

	g.mu.Lock()
	g.closeLocked()
	g.mu.Unlock()
	return nil
}

func (g *Gate) checkLocked(ticket string) error {
	if g.busy() {
		return export.ErrBusy
	}
	if !g.open {
		return ErrNotOpen
	}
	claims, err := sec.ParseHS256Ticket(g.tickets.Key, TicketIssuer, ticket, g.tickets.now())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTicket, err)
	}
	if claims.Subject != g.owner || claims.ID != g.ticketID {
		return ErrTicket
	}
	return nil
}
