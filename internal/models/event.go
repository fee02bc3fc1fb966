package models

import (
	"time"

	"github.com/google/uuid"
)

// TransitionEvent describes a successful status change, published
// fire-and-forget to the notification collaborators. OldStatus is empty for
// visit creation.
type TransitionEvent struct {
	VisitID    uuid.UUID   `json:"visit_id"`
	PropertyID string      `json:"property_id"`
	VisitorID  string      `json:"visitor_id"`
	OwnerID    string      `json:"owner_id"`
	OldStatus  VisitStatus `json:"old_status,omitempty"`
	NewStatus  VisitStatus `json:"new_status"`
	ActorID    string      `json:"actor_id"`
	OccurredAt time.Time   `json:"occurred_at"`
}
