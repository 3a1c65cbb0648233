package team

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team is a club record. CreatedBy and ModifiedBy carry the acting user's
// id as supplied by the client.
type Team struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TeamName   string             `bson:"teamName" json:"teamName"`
	Stadium    string             `bson:"stadium" json:"stadium"`
	CreatedBy  string             `bson:"createdBy" json:"createdBy"`
	CreatedOn  time.Time          `bson:"createdOn" json:"createdOn"`
	ModifiedBy string             `bson:"modifiedBy,omitempty" json:"modifiedBy,omitempty"`
	ModifiedOn time.Time          `bson:"modifiedOn,omitempty" json:"modifiedOn,omitempty"`
}

// CreateRequest is the payload for registering a team.
type CreateRequest struct {
	TeamName  string `json:"teamName" validate:"required,min=2,max=50"`
	Stadium   string `json:"stadium" validate:"required,min=2,max=100"`
	CreatedBy string `json:"createdBy" validate:"required"`
}

// UpdateRequest is a partial team update. Nil fields are left unchanged.
type UpdateRequest struct {
	TeamName   *string `json:"teamName,omitempty" validate:"omitempty,min=2,max=50"`
	Stadium    *string `json:"stadium,omitempty" validate:"omitempty,min=2,max=100"`
	ModifiedBy *string `json:"modifiedBy,omitempty"`
}

func (r UpdateRequest) empty() bool {
	return r.TeamName == nil && r.Stadium == nil
}

// Repository is the persistence surface for teams.
type Repository interface {
	Insert(ctx context.Context, team *Team) (*Team, error)
	FindByID(ctx context.Context, id string) (*Team, error)
	List(ctx context.Context, skip, limit int64) ([]Team, error)
	Count(ctx context.Context) (int64, error)
	// Search matches term case-insensitively against team name and
	// stadium.
	Search(ctx context.Context, term string) ([]Team, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Team, error)
	Delete(ctx context.Context, id string) error
}
