package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/larder/internal/auth"
	"github.com/dukerupert/larder/internal/email"
	"github.com/dukerupert/larder/internal/handler"
	"github.com/dukerupert/larder/internal/middleware"
	"github.com/dukerupert/larder/internal/push"
	"github.com/dukerupert/larder/internal/service"
	"github.com/dukerupert/larder/internal/store"
	ws "github.com/dukerupert/larder/internal/websocket"
)

// Config holds server wiring options from the environment.
type Config struct {
	SecureCookie bool
	Push         push.Config
}

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	householdStore *store.HouseholdStore
	authH          *handler.AuthHandler
	householdH     *handler.HouseholdHandler
	invitationH    *handler.InvitationHandler
	pantryH        *handler.PantryHandler
	shoppingH      *handler.ShoppingHandler
	recipeH        *handler.RecipeHandler
	pushH          *handler.PushHandler
	sessionStore   *store.SessionStore
	userStore      *store.UserStore
	loginCodeStore *store.LoginCodeStore
	rateLimiter    *middleware.RateLimiter
	logger         *slog.Logger
}

func New(db *sql.DB, emailClient *email.Client, generator service.RecipeGenerator, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	loginCodeStore := store.NewLoginCodeStore(db)
	householdStore := store.NewHouseholdStore(db)
	invitationStore := store.NewInvitationStore(db)
	pantryStore := store.NewPantryStore(db)
	shoppingStore := store.NewShoppingStore(db)
	recipeStore := store.NewRecipeStore(db)
	pushStore := store.NewPushStore(db)

	invitationSvc := service.NewInvitationService(invitationStore, householdStore, userStore, emailClient, logger.With("component", "invitation"))
	householdSvc := service.NewHouseholdService(householdStore, invitationSvc, userStore, logger.With("component", "household"))
	pantrySvc := service.NewPantryService(pantryStore, householdStore, logger.With("component", "pantry"))
	shoppingSvc := service.NewShoppingListService(shoppingStore, pantryStore, householdStore, logger.With("component", "shopping"))
	recipeSvc := service.NewRecipeService(recipeStore, householdStore, pantrySvc, generator, logger.With("component", "recipe"))

	var pushSvc *push.Service
	var pushH *handler.PushHandler
	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.Push)
		pushH = handler.NewPushHandler(pushStore, householdStore, pushSvc, logger.With("component", "push_handler"))
	}

	return &Server{
		db:             db,
		hub:            hub,
		householdStore: householdStore,
		authH:          handler.NewAuthHandler(userStore, sessionStore, loginCodeStore, emailClient, cfg.SecureCookie, logger.With("component", "auth")),
		householdH:     handler.NewHouseholdHandler(householdSvc, hub, logger.With("component", "household")),
		invitationH:    handler.NewInvitationHandler(invitationSvc, hub, logger.With("component", "invitation")),
		pantryH:        handler.NewPantryHandler(pantrySvc, hub, logger.With("component", "pantry")),
		shoppingH:      handler.NewShoppingHandler(shoppingSvc, hub, pushStore, pushSvc, logger.With("component", "shopping")),
		recipeH:        handler.NewRecipeHandler(recipeSvc, hub, logger.With("component", "recipe")),
		pushH:          pushH,
		sessionStore:   sessionStore,
		userStore:      userStore,
		loginCodeStore: loginCodeStore,
		rateLimiter:    middleware.NewRateLimiter(),
		logger:         logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// LoginCodeStore returns the login code store for cleanup tasks.
func (s *Server) LoginCodeStore() *store.LoginCodeStore {
	return s.loginCodeStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /auth/verify", s.rateLimitedHandler(s.authH.Verify))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

// resolveHousehold looks up the connecting user's household for the
// WebSocket change feed.
func (s *Server) resolveHousehold(r *http.Request) (int64, error) {
	member, err := s.householdStore.GetMembershipForUser(auth.UserID(r.Context()))
	if err != nil {
		return 0, err
	}
	if member == nil {
		return 0, errors.New("no household membership")
	}
	return member.HouseholdID, nil
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
	mux.HandleFunc("POST /auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /auth/me", s.authH.Me)

	// Household routes
	mux.HandleFunc("GET /api/households/current", s.householdH.GetCurrent)
	mux.HandleFunc("POST /api/households", s.householdH.Create)
	mux.HandleFunc("GET /api/households/{id}", s.householdH.Get)
	mux.HandleFunc("PATCH /api/households/{id}", s.householdH.Update)
	mux.HandleFunc("DELETE /api/households/{id}", s.householdH.Delete)
	mux.HandleFunc("GET /api/households/{id}/members", s.householdH.ListMembers)
	mux.HandleFunc("POST /api/households/{id}/invite", s.householdH.Invite)

	// Invitation routes
	mux.HandleFunc("GET /api/households/{id}/invitations", s.invitationH.List)
	mux.HandleFunc("POST /api/households/{id}/invitations", s.invitationH.Create)
	mux.HandleFunc("DELETE /api/households/{id}/invitations/{invitationId}", s.invitationH.Cancel)
	mux.HandleFunc("GET /api/invitations/current", s.invitationH.Inbox)
	mux.HandleFunc("PATCH /api/invitations/accept", s.invitationH.Accept)

	// Pantry routes
	mux.HandleFunc("GET /api/households/{id}/pantry", s.pantryH.Get)
	mux.HandleFunc("POST /api/households/{id}/pantry/items", s.pantryH.AddItems)
	mux.HandleFunc("PATCH /api/households/{id}/pantry/items/{itemId}", s.pantryH.UpdateItem)
	mux.HandleFunc("DELETE /api/households/{id}/pantry/items/{itemId}", s.pantryH.DeleteItem)

	// Shopping list routes
	mux.HandleFunc("GET /api/households/{id}/shopping-list", s.shoppingH.Get)
	mux.HandleFunc("POST /api/households/{id}/shopping-list/items", s.shoppingH.AddItems)
	mux.HandleFunc("PATCH /api/households/{id}/shopping-list/items/{itemId}", s.shoppingH.UpdateItem)
	mux.HandleFunc("DELETE /api/households/{id}/shopping-list/items/{itemId}", s.shoppingH.DeleteItem)
	mux.HandleFunc("POST /api/households/{id}/shopping-list/bulk-purchase", s.shoppingH.BulkPurchase)
	mux.HandleFunc("POST /api/households/{id}/shopping-list/bulk-delete", s.shoppingH.BulkDelete)

	// Recipe routes
	mux.HandleFunc("GET /api/households/{id}/recipes", s.recipeH.List)
	mux.HandleFunc("POST /api/households/{id}/recipes", s.recipeH.Create)
	mux.HandleFunc("POST /api/households/{id}/recipes/generate", s.recipeH.Generate)
	mux.HandleFunc("GET /api/households/{id}/recipes/{recipeId}", s.recipeH.Get)
	mux.HandleFunc("PUT /api/households/{id}/recipes/{recipeId}", s.recipeH.Update)
	mux.HandleFunc("DELETE /api/households/{id}/recipes/{recipeId}", s.recipeH.Delete)

	// Push notification routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}

	// WebSocket change feed, scoped to the connecting user's household
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.resolveHousehold))
}
