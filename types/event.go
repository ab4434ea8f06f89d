package types

import "time"

// Enrollment event actions recorded by the gateway.
const (
	EventActionCreate = "create"
	EventActionUpdate = "update"
	EventActionDelete = "delete"
)

// EnrollmentEvent is an audit record of a write operation the gateway
// relayed to the terminal backend. Events are append-only; the roster
// itself is never persisted because the terminal stays the source of
// truth.
type EnrollmentEvent struct {
	// ID is the unique identifier of the event (UUID).
	ID string `json:"id" db:"id"`

	// Action is one of the EventAction constants.
	Action string `json:"action" db:"action"`

	// UID is the terminal-assigned identifier of the affected user.
	// Empty for create attempts that never reached the backend.
	UID string `json:"uid" db:"uid"`

	// UserID is the device-facing employee code of the affected user.
	UserID string `json:"user_id" db:"user_id"`

	// Succeeded reports whether the terminal backend accepted the
	// operation.
	Succeeded bool `json:"succeeded" db:"succeeded"`

	// Message is the backend-reported message or error, if any.
	Message string `json:"message,omitempty" db:"message"`

	// NextStep carries the backend's signal that further device-side
	// enrollment is still required, if present.
	NextStep string `json:"next_step,omitempty" db:"next_step"`

	// Actor identifies the operator who triggered the operation.
	Actor string `json:"actor" db:"actor"`

	// CreatedAt is the timestamp at which the gateway recorded the event.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
