package notifier

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"p2h.app/configs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVehicleTopic(t *testing.T) {
	id := uuid.MustParse("7b0f3c52-6a2e-4a44-9a65-2f9a3c1d0e11")
	assert.Equal(t, "p2h/vehicles/7b0f3c52-6a2e-4a44-9a65-2f9a3c1d0e11/inspection", VehicleTopic("p2h", id))
	assert.Equal(t, "site/a/vehicles/7b0f3c52-6a2e-4a44-9a65-2f9a3c1d0e11/inspection", VehicleTopic("site/a/", id))
}

func TestReviewEventPayload(t *testing.T) {
	reason := "lampu mati"
	ev := ReviewEvent{
		FormID:         uuid.New(),
		VehicleID:      uuid.New(),
		InspectionDate: "2024-05-01",
		Status:         "rejected",
		ActorRole:      "pengawas",
		Reason:         &reason,
		DecidedAt:      time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC),
	}
	raw, err := ev.Payload()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "rejected", decoded["status"])
	assert.Equal(t, "lampu mati", decoded["reason"])
	assert.Equal(t, ev.VehicleID.String(), decoded["vehicle_id"])
}

func TestNoopAndDisabledBroker(t *testing.T) {
	n := Noop()
	assert.NoError(t, n.PublishReview(context.Background(), ReviewEvent{}))
	n.Close(context.Background())

	_, err := NewMQTTNotifier(context.Background(), configs.MQTTConfig{})
	assert.Error(t, err)
}
