package match

import (
	"context"
	"encoding/json"
	"time"
)

// Session captures a match-in-progress between two twins. Plan and SimLog
// are filled in by later plan/simulate calls and overwrite prior values;
// the match analysis itself is intentionally never persisted here.
type Session struct {
	ID        string          `json:"id"`
	TwinA     string          `json:"twin_a"`
	TwinB     string          `json:"twin_b"`
	Plan      json.RawMessage `json:"plan,omitempty"`
	SimLog    json.RawMessage `json:"sim_log,omitempty"`
	Score     *float64        `json:"score,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store exposes session persistence. Deleting a twin referenced by a
// session is allowed; the dangling reference surfaces as a not-found on
// the session's next twin lookup.
type Store interface {
	CreateSession(ctx context.Context, twinA, twinB string) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	UpdateSessionPlan(ctx context.Context, id string, plan json.RawMessage) error
	UpdateSessionSimulation(ctx context.Context, id string, simLog json.RawMessage, score *float64) error
}
