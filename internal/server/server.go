package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwhitfield/atelier/internal/action"
	"github.com/jwhitfield/atelier/internal/auth"
	"github.com/jwhitfield/atelier/internal/blob"
	"github.com/jwhitfield/atelier/internal/events"
	"github.com/jwhitfield/atelier/internal/handler"
	"github.com/jwhitfield/atelier/internal/media"
	"github.com/jwhitfield/atelier/internal/middleware"
	"github.com/jwhitfield/atelier/internal/sessioncache"
	"github.com/jwhitfield/atelier/internal/store"
	"github.com/jwhitfield/atelier/internal/token"
)

type Server struct {
	db           *sql.DB
	hub          *events.Hub
	authService  *auth.Service
	sessionCache *sessioncache.Cache
	rateLimiter  *middleware.RateLimiter
	authH        *handler.AuthHandler
	albumH       *handler.AlbumHandler
	projectH     *handler.ProjectHandler
	postH        *handler.PostHandler
	mediaH       *handler.MediaHandler
	logger       *slog.Logger
}

func New(db *sql.DB, blobClient *blob.Client, tokenSecret string, logger *slog.Logger) *Server {
	hub := events.NewHub(logger.With("component", "events"))

	operatorStore := store.NewOperatorStore(db)
	albumStore := store.NewAlbumStore(db)
	projectStore := store.NewProjectStore(db)
	postStore := store.NewPostStore(db)
	itemStore := store.NewMediaItemStore(db)

	sessionCache := sessioncache.New()
	signer := token.NewSigner(tokenSecret)
	authSvc := auth.NewService(operatorStore, sessionCache, signer, logger.With("component", "auth"))
	mediaMgr := media.NewManager(itemStore, blobClient, logger.With("component", "media"))
	facade := action.NewFacade(authSvc, mediaMgr, logger.With("component", "action"))

	return &Server{
		db:           db,
		hub:          hub,
		authService:  authSvc,
		sessionCache: sessionCache,
		rateLimiter:  middleware.NewRateLimiter(),
		authH:        handler.NewAuthHandler(facade, logger.With("component", "auth_handler")),
		albumH:       handler.NewAlbumHandler(albumStore, mediaMgr, hub, logger.With("component", "album")),
		projectH:     handler.NewProjectHandler(projectStore, mediaMgr, hub, logger.With("component", "project")),
		postH:        handler.NewPostHandler(postStore, hub, logger.With("component", "post")),
		mediaH:       handler.NewMediaHandler(facade, hub, logger.With("component", "media_handler")),
		logger:       logger,
	}
}

// SessionCache returns the session cache for cleanup tasks.
func (s *Server) SessionCache() *sessioncache.Cache {
	return s.sessionCache
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /api/albums", s.albumH.List)
	outerMux.HandleFunc("GET /api/albums/{slug}", s.albumH.GetBySlug)
	outerMux.HandleFunc("GET /api/projects", s.projectH.List)
	outerMux.HandleFunc("GET /api/projects/{slug}", s.projectH.GetBySlug)
	outerMux.HandleFunc("GET /api/posts", s.postH.List)
	outerMux.HandleFunc("GET /api/posts/{slug}", s.postH.GetBySlug)
	outerMux.HandleFunc("POST /admin/login", s.rateLimitedHandler(s.authH.Login))
	// Logout is a no-op without a live session, so it stays outside the
	// auth wall: a second logout must succeed, not 401.
	outerMux.HandleFunc("POST /admin/logout", s.authH.Logout)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.authService)
	outerMux.Handle("/admin/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Album routes
	mux.HandleFunc("GET /admin/api/albums", s.albumH.List)
	mux.HandleFunc("POST /admin/api/albums", s.albumH.Create)
	mux.HandleFunc("PUT /admin/api/albums/{id}", s.albumH.Update)
	mux.HandleFunc("PUT /admin/api/albums/{id}/cover", s.albumH.SetCover)
	mux.HandleFunc("DELETE /admin/api/albums/{id}", s.albumH.Delete)

	// Project routes
	mux.HandleFunc("GET /admin/api/projects", s.projectH.ListAll)
	mux.HandleFunc("POST /admin/api/projects", s.projectH.Create)
	mux.HandleFunc("PUT /admin/api/projects/{id}", s.projectH.Update)
	mux.HandleFunc("PUT /admin/api/projects/{id}/publish", s.projectH.SetPublished)
	mux.HandleFunc("DELETE /admin/api/projects/{id}", s.projectH.Delete)

	// Post routes
	mux.HandleFunc("GET /admin/api/posts", s.postH.ListAll)
	mux.HandleFunc("POST /admin/api/posts", s.postH.Create)
	mux.HandleFunc("PUT /admin/api/posts/{id}", s.postH.Update)
	mux.HandleFunc("DELETE /admin/api/posts/{id}", s.postH.Delete)

	// Media routes. {kind} is "album" or "project".
	mux.HandleFunc("POST /admin/api/media/{kind}/{id}/upload", s.mediaH.Upload)
	mux.HandleFunc("POST /admin/api/media/{kind}/{id}/items", s.mediaH.AddItem)
	mux.HandleFunc("PUT /admin/api/media/{kind}/{id}/order", s.mediaH.Reorder)
	mux.HandleFunc("DELETE /admin/api/media/items/{id}", s.mediaH.Delete)

	// WebSocket change feed
	mux.HandleFunc("GET /admin/ws", events.Handler(s.hub, s.logger.With("component", "ws")))
}
