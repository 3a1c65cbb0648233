package team

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/matchday/matchday-api/internal/api"
	"github.com/matchday/matchday-api/internal/cache"
)

// cacheTTL matches the fixture service: list and search results expire
// after an hour and mutations never purge them.
const cacheTTL = time.Hour

const (
	keyViewAll      = "view-teams"
	keySearchPrefix = "search-teams:"
)

// Service implements team operations over the document store, consulting
// the cache for list and search reads.
type Service struct {
	repo     Repository
	cache    cache.Store
	validate *validator.Validate
}

func NewService(repo Repository, cacheStore cache.Store) *Service {
	return &Service{
		repo:     repo,
		cache:    cacheStore,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// PageResult is a paginated team listing. FromCache reports whether the
// underlying set was served from the cache.
type PageResult struct {
	CurrentPage int
	TotalPages  int
	Total       int64
	Teams       []Team
	FromCache   bool
}

type listPayload struct {
	TotalTeams int64  `json:"totalTeams"`
	Teams      []Team `json:"teams"`
}

// Create validates and persists a new team.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Team, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, api.Unprocessable(validationMessage(err))
	}

	created, err := s.repo.Insert(ctx, &Team{
		TeamName:  req.TeamName,
		Stadium:   req.Stadium,
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		log.Error().Err(err).Msg("team insert failed")
		return nil, api.Internal("Failed to create team")
	}

	return created, nil
}

// ViewAll returns one page of teams plus pagination totals. The whole set
// is cached under a single key.
func (s *Service) ViewAll(ctx context.Context, page, limit int) (PageResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	if raw, ok := s.cacheGet(ctx, keyViewAll); ok {
		var payload listPayload
		if err := json.Unmarshal([]byte(raw), &payload); err == nil {
			return PageResult{
				CurrentPage: page,
				TotalPages:  totalPages(payload.TotalTeams, limit),
				Total:       payload.TotalTeams,
				Teams:       payload.Teams,
				FromCache:   true,
			}, nil
		}
		log.Warn().Str("key", keyViewAll).Msg("discarding undecodable cache entry")
	}

	skip := int64((page - 1) * limit)
	teams, err := s.repo.List(ctx, skip, int64(limit))
	if err != nil {
		log.Error().Err(err).Msg("team list failed")
		return PageResult{}, api.Internal("Failed to fetch teams")
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		log.Error().Err(err).Msg("team count failed")
		return PageResult{}, api.Internal("Failed to fetch teams")
	}

	s.cacheSet(ctx, keyViewAll, listPayload{TotalTeams: total, Teams: teams})

	return PageResult{
		CurrentPage: page,
		TotalPages:  totalPages(total, limit),
		Total:       total,
		Teams:       teams,
		FromCache:   false,
	}, nil
}

// Search returns teams matching the term. The boolean reports a cache hit.
func (s *Service) Search(ctx context.Context, term string) ([]Team, bool, error) {
	key := keySearchPrefix + term

	if raw, ok := s.cacheGet(ctx, key); ok {
		var teams []Team
		if err := json.Unmarshal([]byte(raw), &teams); err == nil {
			return teams, true, nil
		}
		log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	}

	teams, err := s.repo.Search(ctx, term)
	if err != nil {
		log.Error().Err(err).Msg("team search failed")
		return nil, false, api.Internal("Failed to retrieve teams")
	}

	s.cacheSet(ctx, key, teams)
	return teams, false, nil
}

// Update applies a partial update. Cached lists are deliberately left
// untouched.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Team, error) {
	if req.empty() {
		return nil, api.Unprocessable("At least one field is required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, api.Unprocessable(validationMessage(err))
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("team lookup failed")
		return nil, api.Internal("Failed to update team")
	}
	if existing == nil {
		return nil, api.NotFound("Team not found")
	}

	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		log.Error().Err(err).Msg("team update failed")
		return nil, api.Internal("Failed to update team")
	}

	return updated, nil
}

// Delete removes a team and returns the deleted record.
func (s *Service) Delete(ctx context.Context, id string) (*Team, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("team lookup failed")
		return nil, api.Internal("Failed to delete team")
	}
	if existing == nil {
		return nil, api.NotFound("Team not found. Hence it can't be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.Error().Err(err).Msg("team delete failed")
		return nil, api.Internal("Failed to delete team")
	}

	return existing, nil
}

func (s *Service) cacheGet(ctx context.Context, key string) (string, bool) {
	value, found, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return "", false
	}
	return value, found
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache payload marshal failed")
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), cacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func totalPages(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}

func validationMessage(err error) string {
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) || len(violations) == 0 {
		return "Invalid request body"
	}

	v := violations[0]
	switch v.Field() {
	case "TeamName":
		switch v.Tag() {
		case "min":
			return "Team name must be at least 2 characters long"
		case "max":
			return "Team name cannot exceed 50 characters"
		}
		return "Team name is required"
	case "Stadium":
		switch v.Tag() {
		case "min":
			return "Stadium name must be at least 2 characters long"
		case "max":
			return "Stadium name cannot exceed 100 characters"
		}
		return "Stadium is required"
	case "CreatedBy":
		return "Created by is required"
	}
	return "Invalid request body"
}
