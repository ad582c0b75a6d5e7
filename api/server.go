// Package api provides the HTTP server for pdlmetrix.
//
// It serves the league index and player pages, the rendered dashboard
// surfaces, a JSON API over the league service and a WebSocket feed of
// league changes. Changes to the league require HTTP basic auth.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/pdlmetrix/pdlmetrix/internal/canvas"
	"github.com/pdlmetrix/pdlmetrix/internal/common/clock"
	"github.com/pdlmetrix/pdlmetrix/internal/common/uuid"
	"github.com/pdlmetrix/pdlmetrix/internal/config"
	"github.com/pdlmetrix/pdlmetrix/internal/infra"
	"github.com/pdlmetrix/pdlmetrix/internal/render"
	"github.com/pdlmetrix/pdlmetrix/internal/report"
	leagueRepo "github.com/pdlmetrix/pdlmetrix/internal/repositories/league"
	"github.com/pdlmetrix/pdlmetrix/internal/services/league"
	"github.com/pdlmetrix/pdlmetrix/pkg/models"
)

// Render throttling: a burst of renderBurst dashboards, then one every
// renderRefill.
const (
	renderBurst  = 20
	renderRefill = 50 * time.Millisecond
)

// maxBackupSize caps uploaded backups.
const maxBackupSize = 10 << 20

// Deps are the collaborators a server runs on.
type Deps struct {
	Repository    leagueRepo.Repository
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
	Logger        *logrus.Entry
	Version       string
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	league   league.Service
	renderer *report.Renderer
	pages    *report.Pages
	cache    *infra.Cache[*report.Output]
	gen      atomic.Uint64 // league generation, bumped on every change
	limiter  *infra.RateLimiter
	wsHub    *WSHub
	clock    clock.Clock
	location *time.Location
	log      *logrus.Entry
	version  string
}

// NewServer creates a configured server with all routes and middleware.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("league.timezone: %w", err)
	}
	log := deps.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	renderer, err := report.NewRenderer(report.Config{
		Kind:        canvas.Kind(cfg.Render.Format),
		Backend:     cfg.Render.Backend,
		Surfaces:    cfg.Render.Surfaces,
		Concurrency: cfg.Render.Concurrency,
		Logger:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer setup failed: %w", err)
	}
	pages, err := report.NewPages(nil)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		cfg:      cfg,
		renderer: renderer,
		pages:    pages,
		cache:    infra.NewCache[*report.Output](cfg.CacheTTL()),
		limiter:  infra.NewRateLimiter(renderBurst, renderRefill),
		wsHub:    NewWSHub(log),
		clock:    deps.Clock,
		location: loc,
		log:      log.WithField("component", "api"),
		version:  version,
	}

	svc, err := league.NewService(&league.Config{
		Repository:    deps.Repository,
		Clock:         deps.Clock,
		UUIDGenerator: deps.UUIDGenerator,
		Notifier:      srv,
		Location:      loc,
		Logger:        log,
	})
	if err != nil {
		return nil, fmt.Errorf("league setup failed: %w", err)
	}
	srv.league = svc

	srv.router = srv.buildRouter()
	return srv, nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// League returns the league service the server writes through. Changes made
// with it reach the cache and the WebSocket clients.
func (s *Server) League() league.Service {
	return s.league
}

// Notify drops every rendered dashboard and forwards the event to the
// WebSocket clients.
func (s *Server) Notify(e league.Event) {
	s.gen.Add(1)
	s.cache.Flush()
	s.wsHub.Broadcast(WSMessage{Type: string(e.Type), Data: e})
}

// ListenAndServe starts the HTTP server and blocks until SIGINT or SIGTERM,
// then shuts down gracefully.
func (s *Server) ListenAndServe(addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx, addr)
}

// Serve runs the HTTP server until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.wsHub.Run(hubCtx)
	go s.cache.RunCleanup(hubCtx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	s.log.Info("shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log.WithField("component", "http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	// Pages
	r.Get("/", s.handleIndexPage)
	r.Get("/players/{name}", s.handlePlayerPage)
	r.Get("/players/{name}/surfaces/{file}", s.handleSurface)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/players", s.handleListPlayers)
		r.Get("/players/{name}/profile", s.handleProfile)
		r.Get("/players/{name}/chart-config", s.handleChartConfig)
		r.Get("/games", s.handleListGames)

		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Post("/players", s.handleAddPlayer)
			r.Post("/games", s.handleRecordGame)
			r.Delete("/games/{id}", s.handleRemoveGame)
			r.Get("/backup", s.handleExportBackup)
			r.Post("/backup", s.handleImportBackup)
			r.Delete("/data", s.handleClearData)

			r.Get("/config", s.handleGetConfig)
		})
	})

	return r
}

// requireAdmin guards league changes with HTTP basic auth. Without a
// configured password the admin routes are closed.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	if s.cfg.Admin.Password == "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusForbidden, "admin access is disabled: no admin password configured")
		})
	}
	return middleware.BasicAuth(s.title(), map[string]string{
		s.cfg.Admin.Username: s.cfg.Admin.Password,
	})(next)
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AddPlayerRequest is the body for POST /api/v1/players.
type AddPlayerRequest struct {
	Name string `json:"name"`
}

// RecordGameRequest is the body for POST /api/v1/games. Teams list player
// names; score holds the rounds won by team 1 and team 2.
type RecordGameRequest struct {
	Team1    [2]string  `json:"team1"`
	Team2    [2]string  `json:"team2"`
	Score    [2]int     `json:"score"`
	PlayedAt *time.Time `json:"played_at,omitempty"` // default now
}

// HealthInfo is the payload of GET /health.
type HealthInfo struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Players int    `json:"players"`
	Games   int    `json:"games"`
	Clients int    `json:"ws_clients"`
	Time    string `json:"time"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sum, err := s.league.Summary(r.Context())
	if err != nil {
		s.log.WithError(err).Warn("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, APIResponse{
			Success: false,
			Data:    HealthInfo{Status: "unavailable", Version: s.version},
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: HealthInfo{
			Status:  "ok",
			Version: s.version,
			Players: sum.Players,
			Games:   sum.Games,
			Clients: s.wsHub.ClientCount(),
			Time:    s.clock.Now().In(s.location).Format(time.RFC3339),
		},
	})
}

func (s *Server) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	players, err := s.league.Leaderboard(r.Context())
	if err != nil {
		s.writeLeagueError(w, err)
		return
	}
	games, err := s.league.GamesTable(r.Context(), &league.GamesTableInput{})
	if err != nil {
		s.writeLeagueError(w, err)
		return
	}

	var buf bytes.Buffer
	err = s.pages.Index(&buf, report.IndexData{
		Title:       s.title(),
		Players:     players,
		Games:       games,
		GeneratedAt: report.Timestamp(s.clock.Now().In(s.location)),
	})
	if err != nil {
		s.log.WithError(err).Error("index page failed")
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	writeHTML(w, buf.Bytes())
}

func (s *Server) handlePlayerPage(w http.ResponseWriter, r *http.Request) {
	gen := s.gen.Load()
	profile, err := s.league.GetProfile(r.Context(), &league.GetProfileInput{Name: playerParam(r)})
	if err != nil {
		s.writeLeagueError(w, err)
		return
	}
	out, err := s.dashboard(r.Context(), gen, profile)
	if err != nil {
		s.log.WithError(err).WithField("player", profile.Player.Name).Error("dashboard render failed")
		writeError(w, http.StatusInternalServerError, "failed to render dashboard")
		return
	}

	name := profile.Player.Name
	images := report.SurfaceImages(out, s.renderer.SurfaceIDs(), func(id string) string {
		return report.SurfaceURL(name, report.SurfaceFilename(id, out.Kind))
	})

	var buf bytes.Buffer
	err = s.pages.Player(&buf, report.PlayerPageData{
		Title:    name + " · " + s.title(),
		Profile:  profile,
		Chart:    out.Chart,
		Surfaces: images,
	})
	if err != nil {
		s.log.WithError(err).Error("player page failed")
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	writeHTML(w, buf.Bytes())
}

func (s *Server) handleSurface(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	id := ""
	for _, candidate := range s.renderer.SurfaceIDs().All() {
		if report.SurfaceFilename(candidate, s.renderer.Kind()) == file {
			id = candidate
			break
		}
	}
	if id == "" {
		writeError(w, http.StatusNotFound, "unknown surface: "+file)
		return
	}

	gen := s.gen.Load()
	profile, err := s.league.GetProfile(r.Context(), &league.GetProfileInput{Name: playerParam(r)})
	if err != nil {
		s.writeLeagueError(w, err)
		return
	}
	out, err := s.dashboard(r.Context(), gen, profile)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			writeError(w, http.StatusServiceUnavailable, "render queue busy, retry later")
			return
		}
		s.log.WithError(err).WithField("player", profile.Player.Name).Error("dashboard render failed")
		writeError(w, http.StatusInternalServerError, "failed to render dashboard")
		return
	}

	w.Header().Set("Content-Type", out.Kind.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(out.Surfaces[id]) //nolint:errcheck
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	rows, err := s.league.Leaderboard(r.Context())
	if err != nil {
		s.writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rows})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.league.GetProfile(r.Context(), &league.GetProfileInput{Name: playerParam(r)})
	if err != nil {
		s.writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: profile})
}

func (s *Server) handleChartConfig(w http.ResponseWriter, r *http.Request) {
	profile, err := s.league.GetProfile(r.Context(), &league.GetProfileInput{Name: playerParam(r)})
	if err != nil {
		s.writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: render.BuildChartConfig(&profile.Data)})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	input := &league.GamesTableInput{PlayerName: r.URL.Query().Get("player")}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		input.Limit = limit
	}

	rows, err := s.league.GamesTable(r.Context(), input)
	if err != nil {
		s.writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rows})
}

func (s *Server) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	var req AddPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	out, err := s.league.AddPlayer(r.Context(), &league.AddPlayerInput{Name: req.Name})
	if err != nil {
		s.writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: out})
}

func (s *Server) handleRecordGame(w http.ResponseWriter, r *http.Request) {
	var req RecordGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	input := &league.RecordGameInput{Team1: req.Team1, Team2: req.Team2, Score: req.Score}
	if req.PlayedAt != nil {
		input.PlayedAt = *req.PlayedAt
	}
	out, err := s.league.RecordGame(r.Context(), input)
	if err != nil {
		s.writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: out})
}

func (s *Server) handleRemoveGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.league.RemoveGame(r.Context(), &league.RemoveGameInput{GameID: id}); err != nil {
		s.writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]string{"id": id}})
}

func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := s.league.ExportBackup(r.Context(), &buf); err != nil {
		s.writeLeagueError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="backup.txt"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

func (s *Server) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBackupSize)
	out, err := s.league.ImportBackup(r.Context(), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "backup too large")
			return
		}
		s.writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: out})
}

func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	if err := s.league.Clear(r.Context()); err != nil {
		s.writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true})
}

// dashboard renders the profile's surfaces once per league state. gen must be
// read before the profile was loaded: a profile that predates a change then
// lands under a stale generation and is never served after it. Concurrent
// requests for the same player share one render.
func (s *Server) dashboard(ctx context.Context, gen uint64, profile *models.PlayerProfile) (*report.Output, error) {
	ctx = context.WithoutCancel(ctx)
	key := strconv.FormatUint(gen, 10) + "/" + profile.Player.Name
	return s.cache.GetOrLoad(key, func() (*report.Output, error) {
		waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := s.limiter.Wait(waitCtx); err != nil {
			return nil, err
		}
		return s.renderer.Render(ctx, profile)
	})
}

// writeLeagueError maps league and store errors to HTTP statuses.
func (s *Server) writeLeagueError(w http.ResponseWriter, err error) {
	var leagueErr league.LeagueError
	switch {
	case errors.Is(err, leagueRepo.ErrPlayerNotFound), errors.Is(err, leagueRepo.ErrGameNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, leagueRepo.ErrPlayerNameTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &leagueErr):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.WithError(err).Error("league request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// playerParam returns the decoded {name} path segment.
func playerParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

func (s *Server) title() string {
	if s.cfg.League.Title == "" {
		return report.DefaultTitle
	}
	return s.cfg.League.Title
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
