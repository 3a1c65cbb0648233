// Package fixture implements the fixture domain service: CRUD, status
// views and search, with opportunistic caching of list and search results.
package fixture

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status of a fixture.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Score is the current result of a fixture.
type Score struct {
	Home int `bson:"home" json:"home" validate:"gte=0"`
	Away int `bson:"away" json:"away" validate:"gte=0"`
}

// Fixture is a scheduled match between two teams.
type Fixture struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HomeTeam   string             `bson:"homeTeam" json:"homeTeam"`
	AwayTeam   string             `bson:"awayTeam" json:"awayTeam"`
	Date       time.Time          `bson:"date" json:"date"`
	Status     Status             `bson:"status" json:"status"`
	Score      Score              `bson:"score" json:"score"`
	UniqueLink string             `bson:"uniqueLink" json:"uniqueLink"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CreateRequest is the payload for creating a fixture.
type CreateRequest struct {
	HomeTeam string    `json:"homeTeam" validate:"required,min=2,max=50"`
	AwayTeam string    `json:"awayTeam" validate:"required,min=2,max=50"`
	Date     time.Time `json:"date" validate:"required"`
	Status   Status    `json:"status" validate:"omitempty,oneof=pending completed"`
	Score    Score     `json:"score"`
}

// UpdateRequest is the payload for a partial fixture update. Nil fields are
// left untouched.
type UpdateRequest struct {
	HomeTeam *string    `json:"homeTeam,omitempty" validate:"omitempty,min=2,max=50"`
	AwayTeam *string    `json:"awayTeam,omitempty" validate:"omitempty,min=2,max=50"`
	Date     *time.Time `json:"date,omitempty"`
	Status   *Status    `json:"status,omitempty" validate:"omitempty,oneof=pending completed"`
	Score    *Score     `json:"score,omitempty"`
}

func (r UpdateRequest) empty() bool {
	return r.HomeTeam == nil && r.AwayTeam == nil && r.Date == nil && r.Status == nil && r.Score == nil
}

// Repository is the document store boundary for fixtures. FindByID returns
// (nil, nil) when no fixture matches, including malformed ids.
type Repository interface {
	Insert(ctx context.Context, fixture *Fixture) (*Fixture, error)
	FindByID(ctx context.Context, id string) (*Fixture, error)
	List(ctx context.Context, skip, limit int64) ([]Fixture, error)
	Count(ctx context.Context) (int64, error)

	// FindByStatus returns fixtures matching the status; an empty status
	// matches everything.
	FindByStatus(ctx context.Context, status Status) ([]Fixture, error)

	// Search matches the term case-insensitively as a substring of the
	// home team, away team or status.
	Search(ctx context.Context, term string) ([]Fixture, error)

	Update(ctx context.Context, id string, req UpdateRequest) (*Fixture, error)
	Delete(ctx context.Context, id string) error
}
