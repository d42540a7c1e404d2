package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Scope groups requests where only the newest one matters.
type Scope string

// Request scopes used by the UI.
const (
	ScopeInitial Scope = "initial"
	ScopeUsage   Scope = "usage"
	ScopeKeys    Scope = "keys"
	ScopeCatalog Scope = "catalog"
	ScopeProfile Scope = "profile"
)

// Ticket identifies one in-flight request within a scope.
type Ticket struct {
	Scope Scope
	ID    uuid.UUID
}

type trackedRequest struct {
	cancel context.CancelFunc
	id     uuid.UUID
}

// Tracker hands out tickets and cancels superseded requests.
type Tracker struct {
	active map[Scope]trackedRequest
	mu     sync.Mutex
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{active: make(map[Scope]trackedRequest)}
}

// Begin starts a request in scope, canceling the previous one.
func (t *Tracker) Begin(scope Scope) (Ticket, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())
	ticket := Ticket{Scope: scope, ID: uuid.New()}

	t.mu.Lock()
	if prev, ok := t.active[scope]; ok {
		prev.cancel()
	}
	t.active[scope] = trackedRequest{id: ticket.ID, cancel: cancel}
	t.mu.Unlock()

	return ticket, ctx
}

// Current reports whether ticket is still the newest in its scope.
func (t *Tracker) Current(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	req, ok := t.active[ticket.Scope]
	return ok && req.id == ticket.ID
}

// Finish releases the ticket's context if it is still current.
func (t *Tracker) Finish(ticket Ticket) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if req, ok := t.active[ticket.Scope]; ok && req.id == ticket.ID {
		req.cancel()
		delete(t.active, ticket.Scope)
	}
}

// Cancel cancels the request in scope, if any.
func (t *Tracker) Cancel(scope Scope) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if req, ok := t.active[scope]; ok {
		req.cancel()
		delete(t.active, scope)
	}
}

// CancelAll cancels every scope.
func (t *Tracker) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for scope, req := range t.active {
		req.cancel()
		delete(t.active, scope)
	}
}
