package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ReviewEvent is published after a form leaves the pending state.
type ReviewEvent struct {
	FormID         uuid.UUID `json:"form_id"`
	VehicleID      uuid.UUID `json:"vehicle_id"`
	InspectionDate string    `json:"inspection_date"`
	Status         string    `json:"status"`
	ActorRole      string    `json:"actor_role"`
	Reason         *string   `json:"reason,omitempty"`
	DecidedAt      time.Time `json:"decided_at"`
}

func (e ReviewEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier delivers review decisions to downstream consumers (dispatch boards).
type Notifier interface {
	PublishReview(ctx context.Context, event ReviewEvent) error
	Close(ctx context.Context)
}

type noop struct{}

// Noop is used when no broker is configured.
func Noop() Notifier { return noop{} }

func (noop) PublishReview(context.Context, ReviewEvent) error { return nil }
func (noop) Close(context.Context)                            {}
