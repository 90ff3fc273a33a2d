package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActionKind enumerates the mutations that can wait in the offline
// queue. Replay dispatch switches over this set exhaustively.
type ActionKind string

// Queued mutation kinds.
const (
	ActionCreateUser       ActionKind = "create_user"
	ActionUpdateUser       ActionKind = "update_user"
	ActionDeleteUser       ActionKind = "delete_user"
	ActionCreateRace       ActionKind = "create_race"
	ActionUpdateRace       ActionKind = "update_race"
	ActionDeleteRace       ActionKind = "delete_race"
	ActionUpsertPrediction ActionKind = "upsert_prediction"
	ActionDeletePrediction ActionKind = "delete_prediction"
)

// QueuedAction is one pending mutation recorded while the remote store
// was unreachable. Payload is the JSON encoding of the kind-specific
// payload struct below.
type QueuedAction struct {
	ID         string     `json:"id"`
	Kind       ActionKind `json:"kind"`
	Payload    []byte     `json:"payload"`
	EnqueuedAt time.Time  `json:"enqueuedAt"`
}

// UserPayload carries a full user record for create/update actions.
type UserPayload struct {
	User User `json:"user"`
}

// UserRefPayload identifies a user for delete actions.
type UserRefPayload struct {
	UserID string `json:"userId"`
}

// RacePayload carries a full race record for create/update actions.
type RacePayload struct {
	Race Race `json:"race"`
}

// RaceRefPayload identifies a race for delete actions.
type RaceRefPayload struct {
	RaceID string `json:"raceId"`
}

// PredictionPayload carries a prediction keyed by its owning
// (user, race) pair.
type PredictionPayload struct {
	RaceID     string     `json:"raceId"`
	UserID     string     `json:"userId"`
	Prediction Prediction `json:"prediction"`
}

// PredictionRefPayload identifies a prediction for delete actions.
type PredictionRefPayload struct {
	RaceID string `json:"raceId"`
	UserID string `json:"userId"`
}

// NewAction builds a QueuedAction for the given kind and payload
// struct. The payload must be one of the *Payload types matching kind.
func NewAction(kind ActionKind, payload any) (QueuedAction, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return QueuedAction{}, fmt.Errorf("encoding %s payload: %w", kind, err)
	}
	return QueuedAction{
		ID:         uuid.NewString(),
		Kind:       kind,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// DecodePayload unmarshals the action payload into dst, which must be
// a pointer to the payload struct matching the action kind.
func (a QueuedAction) DecodePayload(dst any) error {
	if err := json.Unmarshal(a.Payload, dst); err != nil {
		return fmt.Errorf("decoding %s payload: %w", a.Kind, err)
	}
	return nil
}

// KnownKind reports whether k is one of the enumerated action kinds.
func KnownKind(k ActionKind) bool {
	switch k {
	case ActionCreateUser, ActionUpdateUser, ActionDeleteUser,
		ActionCreateRace, ActionUpdateRace, ActionDeleteRace,
		ActionUpsertPrediction, ActionDeletePrediction:
		return true
	}
	return false
}
