// Package actor identifies the user or system performing an action.
//
// Every mutating call into the attendance core carries a resolved operator
// identity; this package is how that identity travels through context and
// lands in ledger records and audit entries.
package actor

import (
	"context"
)

// SystemID is the operator identity used for scheduled and automatic
// mutations (absence check, auto checkout).
const SystemID = "SYSTEM"

// Actor represents the entity performing an action in the system.
type Actor struct {
	// ID is the unique identifier of the actor (user ID or SystemID)
	ID string `json:"id"`

	// Name is the actor's display name
	Name string `json:"name"`

	// Role is the actor's role (employee, manager, hr, admin, terminal)
	Role string `json:"role,omitempty"`

	// DepartmentID is the actor's department, when known
	DepartmentID string `json:"department_id,omitempty"`
}

// Recorder returns the identity string written into ledger and audit rows.
func (a *Actor) Recorder() string {
	if a == nil {
		return SystemID
	}
	return a.ID
}

// String returns a string representation of the actor for logging
func (a *Actor) String() string {
	if a == nil {
		return "system"
	}
	if a.Name == "" {
		return a.ID
	}
	return a.Name + " (" + a.ID + ")"
}

// IsSystem returns true if the actor represents the system.
func (a *Actor) IsSystem() bool {
	return a == nil || a.ID == SystemID
}

// contextKey is the type for context keys to avoid collisions
type contextKey string

const actorContextKey contextKey = "actor"

// FromContext retrieves the Actor from the context.
// Returns nil if no actor is present (e.g., system operations).
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	a, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok {
		return nil
	}
	return a
}

// WithActor returns a new context with the Actor attached.
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey, a)
}

// System returns an Actor representing the system itself.
// Use this for scheduled triggers and other system-initiated operations.
func System() *Actor {
	return &Actor{
		ID:   SystemID,
		Name: "System",
	}
}
