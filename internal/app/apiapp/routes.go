package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/The-Hieusss/jobless-demo/internal/config"
	authsvc "github.com/The-Hieusss/jobless-demo/internal/services/auth"
	chatsvc "github.com/The-Hieusss/jobless-demo/internal/services/chat"
	decisionssvc "github.com/The-Hieusss/jobless-demo/internal/services/decisions"
	matchessvc "github.com/The-Hieusss/jobless-demo/internal/services/matches"
	profilessvc "github.com/The-Hieusss/jobless-demo/internal/services/profiles"
	"github.com/The-Hieusss/jobless-demo/internal/transport/http/handlers"
)

type Dependencies struct {
	JWTManager      *authsvc.JWTManager
	DecisionService *decisionssvc.Service
	MatchService    *matchessvc.Service
	ChatService     *chatsvc.Service
	ProfileService  *profilessvc.Service
	Logger          *zap.Logger
	Config          config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	decisionsHandler := handlers.NewDecisionsHandler(deps.DecisionService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	chatHandler := handlers.NewChatHandler(deps.ChatService)
	chatWSHandler := handlers.NewChatWSHandler(deps.ChatService, deps.Logger)
	profilesHandler := handlers.NewProfilesHandler(deps.ProfileService)
	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.With(authMW).Post("/decisions", decisionsHandler.Record)
		r.With(authMW).Get("/deck", profilesHandler.Deck)
		r.With(authMW).Get("/profiles/{participantID}", profilesHandler.Get)
		r.With(authMW).Get("/matches", matchesHandler.List)
		r.With(authMW).Get("/matches/{matchID}/messages", chatHandler.History)
		r.With(authMW).Post("/matches/{matchID}/messages", chatHandler.Send)
		r.With(authMW).Get("/matches/{matchID}/ws", chatWSHandler.Serve)
	})
}
