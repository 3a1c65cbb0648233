package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/justinas/alice"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/matchday/matchday-api/internal/audit"
	"github.com/matchday/matchday-api/internal/auth"
	"github.com/matchday/matchday-api/internal/cache"
	"github.com/matchday/matchday-api/internal/config"
	"github.com/matchday/matchday-api/internal/fixture"
	"github.com/matchday/matchday-api/internal/httpcache"
	"github.com/matchday/matchday-api/internal/mongodb"
	"github.com/matchday/matchday-api/internal/server"
	"github.com/matchday/matchday-api/internal/team"
)

// pageCacheTTL is the expiry for cached list responses, matching the
// service-level cache window.
const pageCacheTTL = time.Hour

type services struct {
	issuer   *auth.Issuer
	auth     *auth.Service
	fixtures *fixture.Service
	teams    *team.Service
	cache    cache.Store
}

func configureServerRoutes(cfg config.Config, svc services) http.Handler {
	mux := http.NewServeMux()

	// The request body size is fairly limited to prevent accidental or
	// deliberate abuse. Given the current API shape, this is not
	// configurable.
	requestLimiter := maxRequestSize(20 << 10) // 20 KB

	auditor := audit.Middleware()
	withCORS := cors.Default().Handler
	generalLimiter := rateLimit(cfg.Server.RateLimitPerMinute, "Too many requests, please try again later.")
	authLimiter := rateLimit(cfg.Server.AuthRateLimitPerMinute, "Too many login attempts, please try again later.")

	public := alice.New(requestLimiter, withCORS, auditor, generalLimiter)
	authRoutes := alice.New(requestLimiter, withCORS, auditor, authLimiter)
	admin := public.Append(auth.RequireRole(svc.issuer, auth.RoleAdmin))
	member := public.Append(auth.RequireRole(svc.issuer, auth.RoleAdmin, auth.RoleUser))

	// cached list routes: replay on hit, capture and store on miss
	fixturePage := alice.New(
		httpcache.Page(svc.cache, "fixtures"),
		httpcache.Capture(svc.cache, pageCacheTTL),
	)
	teamPage := alice.New(
		httpcache.Page(svc.cache, "teams"),
		httpcache.Capture(svc.cache, pageCacheTTL),
	)

	mux.Handle("POST /api/v1/auth/create-user", authRoutes.Then(handleSignUp(svc.auth)))
	mux.Handle("POST /api/v1/auth/login", authRoutes.Then(handleLogin(svc.auth)))

	mux.Handle("POST /api/v1/fixtures/create-fixtures", admin.Then(handleCreateFixture(svc.fixtures)))
	mux.Handle("GET /api/v1/fixtures/fixtures", member.Extend(fixturePage).Then(handleListFixtures(svc.fixtures)))
	mux.Handle("GET /api/v1/fixtures/view-fixtures", member.Extend(fixturePage).Then(handleViewFixtures(svc.fixtures)))
	mux.Handle("GET /api/v1/fixtures/search/fixtures", public.Then(handleSearchFixtures(svc.fixtures)))
	mux.Handle("PUT /api/v1/fixtures/{id}", admin.Then(handleUpdateFixture(svc.fixtures)))
	mux.Handle("DELETE /api/v1/fixtures/{id}", admin.Then(handleDeleteFixture(svc.fixtures)))

	mux.Handle("POST /api/v1/teams/create-teams", admin.Then(handleCreateTeam(svc.teams)))
	mux.Handle("GET /api/v1/teams/views", member.Extend(teamPage).Then(handleViewTeams(svc.teams)))
	mux.Handle("GET /api/v1/teams/search/teams", public.Then(handleSearchTeams(svc.teams)))
	mux.Handle("PUT /api/v1/teams/{id}", admin.Then(handleUpdateTeam(svc.teams)))
	mux.Handle("DELETE /api/v1/teams/{id}", admin.Then(handleDeleteTeam(svc.teams)))

	// healthchecks skip auth, rate limiting and caching
	mux.Handle("GET /healthcheck", alice.New(requestLimiter).Then(handleHealthCheck()))

	return mux
}

func main() {
	configureLogging()

	logBuildInfo()

	err := launchServer()
	if err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}

func launchServer() error {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("configuration load failed: %w", err)
	}

	var teardowns server.Teardowns

	db, disconnect, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("mongodb connection failed: %w", err)
	}
	teardowns.AddContext("mongodb", disconnect)

	store, err := cache.NewFromConfig(cfg.Cache)
	if err != nil {
		teardowns.Execute(ctx)
		return fmt.Errorf("cache configuration failed: %w", err)
	}
	teardowns.Add("cache", store.Close)

	users := mongodb.NewUsers(db)

	issuer, err := auth.NewIssuer(
		cfg.Auth.Secret,
		time.Duration(cfg.Auth.TokenExpirySeconds)*time.Second,
		users,
		store,
	)
	if err != nil {
		teardowns.Execute(ctx)
		return fmt.Errorf("token issuer configuration failed: %w", err)
	}

	svc := services{
		issuer:   issuer,
		auth:     auth.NewService(users, issuer),
		fixtures: fixture.NewService(mongodb.NewFixtures(db), store, cfg.Fixture.LinkBase),
		teams:    team.NewService(mongodb.NewTeams(db), store),
		cache:    store,
	}

	handler := configureServerRoutes(cfg, svc)

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	serveErr := server.Run(ctx, handler, cfg.Server.Port, shutdownTimeout)

	teardownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	teardowns.Execute(teardownCtx)

	if serveErr != nil {
		return fmt.Errorf("server failed: %w", serveErr)
	}
	return nil
}

func configureLogging() {
	zerolog.SetGlobalLevel(zerolog.Level(-128))

	// default level is Info
	log.Logger = log.Level(zerolog.InfoLevel)

	if os.Getenv("ENV") == "development" {
		log.Logger = log.
			Output(zerolog.ConsoleWriter{Out: os.Stdout}).
			Level(zerolog.DebugLevel)
	}

	zerolog.DefaultContextLogger = &log.Logger
}

func logBuildInfo() {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	ev := log.Info()
	for _, v := range buildInfo.Settings {
		if strings.HasPrefix(v.Key, "vcs.") ||
			strings.HasPrefix(v.Key, "GO") ||
			v.Key == "CGO_ENABLED" {
			ev = ev.Str(v.Key, v.Value)
		}
	}

	ev.Msg("build information")
}
