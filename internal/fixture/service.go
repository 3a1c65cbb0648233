package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/matchday/matchday-api/internal/api"
	"github.com/matchday/matchday-api/internal/cache"
)

// cacheTTL is the fixed expiry for fixture query results. Mutations never
// purge these entries: readers may observe pre-mutation data for up to
// this window.
const cacheTTL = time.Hour

const (
	keyViewAll      = "view-fixtures"
	keyStatusPrefix = "view-fixtures:"
	keySearchPrefix = "search-fixtures:"
)

// Service implements fixture operations over the document store, consulting
// the cache for list and search reads.
type Service struct {
	repo     Repository
	cache    cache.Store
	linkBase string
	validate *validator.Validate
}

// NewService creates a fixture service. linkBase is the prefix for
// generated share links.
func NewService(repo Repository, cacheStore cache.Store, linkBase string) *Service {
	return &Service{
		repo:     repo,
		cache:    cacheStore,
		linkBase: linkBase,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// PageResult is a paginated fixture listing. FromCache reports whether the
// underlying page set was served from the cache.
type PageResult struct {
	CurrentPage int
	TotalPages  int
	Total       int64
	Fixtures    []Fixture
	FromCache   bool
}

// listPayload is the cached representation of the full page set.
type listPayload struct {
	TotalFixtures int64     `json:"totalFixtures"`
	Fixtures      []Fixture `json:"fixtures"`
}

// Create validates and persists a new fixture, generating its share link.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Fixture, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, api.Unprocessable(validationMessage(err))
	}
	if !req.Date.After(time.Now()) {
		return nil, api.Unprocessable("The date must be in the future")
	}

	status := req.Status
	if status == "" {
		status = StatusPending
	}

	created, err := s.repo.Insert(ctx, &Fixture{
		HomeTeam:   req.HomeTeam,
		AwayTeam:   req.AwayTeam,
		Date:       req.Date,
		Status:     status,
		Score:      req.Score,
		UniqueLink: s.newUniqueLink(),
	})
	if err != nil {
		log.Error().Err(err).Msg("fixture insert failed")
		return nil, api.Internal("Failed to create fixture")
	}

	return created, nil
}

// ViewAll returns one page of fixtures plus pagination totals. The whole
// page set is cached under a single key; page arithmetic happens per
// request against the cached totals.
func (s *Service) ViewAll(ctx context.Context, page, limit int) (PageResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	if raw, ok := s.cacheGet(ctx, keyViewAll); ok {
		var payload listPayload
		if err := json.Unmarshal([]byte(raw), &payload); err == nil {
			return PageResult{
				CurrentPage: page,
				TotalPages:  totalPages(payload.TotalFixtures, limit),
				Total:       payload.TotalFixtures,
				Fixtures:    payload.Fixtures,
				FromCache:   true,
			}, nil
		}
		log.Warn().Str("key", keyViewAll).Msg("discarding undecodable cache entry")
	}

	skip := int64((page - 1) * limit)
	fixtures, err := s.repo.List(ctx, skip, int64(limit))
	if err != nil {
		log.Error().Err(err).Msg("fixture list failed")
		return PageResult{}, api.Internal("Failed to fetch fixtures")
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		log.Error().Err(err).Msg("fixture count failed")
		return PageResult{}, api.Internal("Failed to fetch fixtures")
	}

	s.cacheSet(ctx, keyViewAll, listPayload{TotalFixtures: total, Fixtures: fixtures})

	return PageResult{
		CurrentPage: page,
		TotalPages:  totalPages(total, limit),
		Total:       total,
		Fixtures:    fixtures,
		FromCache:   false,
	}, nil
}

// ViewByStatus returns fixtures filtered by status (all when empty). The
// boolean reports a cache hit.
func (s *Service) ViewByStatus(ctx context.Context, status Status) ([]Fixture, bool, error) {
	key := keyStatusPrefix + "all"
	if status != "" {
		key = keyStatusPrefix + string(status)
	}

	if raw, ok := s.cacheGet(ctx, key); ok {
		var fixtures []Fixture
		if err := json.Unmarshal([]byte(raw), &fixtures); err == nil {
			return fixtures, true, nil
		}
		log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	}

	fixtures, err := s.repo.FindByStatus(ctx, status)
	if err != nil {
		log.Error().Err(err).Msg("fixture status view failed")
		return nil, false, api.Internal("Failed to retrieve fixtures")
	}

	s.cacheSet(ctx, key, fixtures)
	return fixtures, false, nil
}

// Search returns fixtures matching the term. The boolean reports a cache hit.
func (s *Service) Search(ctx context.Context, term string) ([]Fixture, bool, error) {
	key := keySearchPrefix + term

	if raw, ok := s.cacheGet(ctx, key); ok {
		var fixtures []Fixture
		if err := json.Unmarshal([]byte(raw), &fixtures); err == nil {
			return fixtures, true, nil
		}
		log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	}

	fixtures, err := s.repo.Search(ctx, term)
	if err != nil {
		log.Error().Err(err).Msg("fixture search failed")
		return nil, false, api.Internal("Failed to retrieve fixtures")
	}

	s.cacheSet(ctx, key, fixtures)
	return fixtures, false, nil
}

// Update applies a partial update. Cached lists are deliberately left
// untouched.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Fixture, error) {
	if req.empty() {
		return nil, api.Unprocessable("At least one field is required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, api.Unprocessable(validationMessage(err))
	}
	if req.Date != nil && !req.Date.After(time.Now()) {
		return nil, api.Unprocessable("The date must be in the future")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("fixture lookup failed")
		return nil, api.Internal("Failed to update fixture")
	}
	if existing == nil {
		return nil, api.NotFound("Fixture not found")
	}

	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		log.Error().Err(err).Msg("fixture update failed")
		return nil, api.Internal("Failed to update fixture")
	}

	return updated, nil
}

// Delete removes a fixture and returns the deleted record.
func (s *Service) Delete(ctx context.Context, id string) (*Fixture, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("fixture lookup failed")
		return nil, api.Internal("Failed to delete fixture")
	}
	if existing == nil {
		return nil, api.NotFound("Fixture not found. Hence it can't be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.Error().Err(err).Msg("fixture delete failed")
		return nil, api.Internal("Failed to delete fixture")
	}

	return existing, nil
}

// cacheGet treats any cache failure as a miss.
func (s *Service) cacheGet(ctx context.Context, key string) (string, bool) {
	value, found, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return "", false
	}
	return value, found
}

// cacheSet is best-effort: failures are logged and swallowed.
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

func (s *Service) newUniqueLink() string {
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return s.linkBase + "-" + short
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
	case "HomeTeam":
		switch v.Tag() {
		case "min":
			return "Home team name must be at least 2 characters long"
		case "max":
			return "Home team name cannot exceed 50 characters"
		}
		return "Home team is required"
	case "AwayTeam":
		switch v.Tag() {
		case "min":
			return "Away team name must be at least 2 characters long"
		case "max":
			return "Away team name cannot exceed 50 characters"
		}
		return "Away team is required"
	case "Date":
		return "Date is required"
	case "Status":
		return `status must be either "pending" or "completed"`
	case "Home":
		return "Home score cannot be less than 0"
	case "Away":
		return "Away score cannot be less than 0"
	}
	return "Invalid request body"
}
