package twin

import (
	"context"
	"time"
)

// Twin captures one stored social profile used on both sides of a match.
type Twin struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Personality        string    `json:"personality"`
	Interests          string    `json:"interests"`
	CommunicationStyle string    `json:"communication_style"`
	CreatedAt          time.Time `json:"created_at"`
}

// CreateInput holds the caller-supplied fields for a new twin.
type CreateInput struct {
	Name               string `json:"name"`
	Personality        string `json:"personality"`
	Interests          string `json:"interests"`
	CommunicationStyle string `json:"communication_style"`
}

// Valid reports whether every required field is present.
func (in CreateInput) Valid() bool {
	return in.Name != "" && in.Personality != "" && in.Interests != "" && in.CommunicationStyle != ""
}

// Store exposes twin persistence for services and HTTP handlers.
type Store interface {
	List(ctx context.Context) ([]Twin, error)
	Create(ctx context.Context, in CreateInput) (Twin, error)
	Get(ctx context.Context, id string) (Twin, error)
	Delete(ctx context.Context, id string) error
}
