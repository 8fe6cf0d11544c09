package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/The-Hieusss/jobless-demo/internal/config"
	pgrepo "github.com/The-Hieusss/jobless-demo/internal/repo/postgres"
	redrepo "github.com/The-Hieusss/jobless-demo/internal/repo/redis"
	authsvc "github.com/The-Hieusss/jobless-demo/internal/services/auth"
	chatsvc "github.com/The-Hieusss/jobless-demo/internal/services/chat"
	decisionssvc "github.com/The-Hieusss/jobless-demo/internal/services/decisions"
	matchessvc "github.com/The-Hieusss/jobless-demo/internal/services/matches"
	profilessvc "github.com/The-Hieusss/jobless-demo/internal/services/profiles"
	ratesvc "github.com/The-Hieusss/jobless-demo/internal/services/rate"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	pubSubRepo := redrepo.NewPubSubRepo(redisClient)
	decisionRepo := pgrepo.NewDecisionRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	rateLimiter := ratesvc.NewLimiter(
		rateRepo,
		ratesvc.Limits{PerMinute: cfg.Limits.DecisionsPerMinute, PerBurst: cfg.Limits.DecisionsPer10Sec},
		ratesvc.Limits{PerMinute: cfg.Limits.MessagesPerMinute, PerBurst: cfg.Limits.MessagesPer10Sec},
	)

	decisionService := decisionssvc.NewService(decisionssvc.Dependencies{
		Pool:          pool,
		DecisionStore: decisionRepo,
		MatchStore:    matchRepo,
		ProfileStore:  profileRepo,
		RateLimiter:   rateLimiter,
	})
	matchService := matchessvc.NewService(matchessvc.Dependencies{
		FeedStore: matchRepo,
	})
	chatBroker := chatsvc.NewBroker(pubSubRepo, log)
	chatService := chatsvc.NewService(chatsvc.Dependencies{
		MessageStore: messageRepo,
		MatchGetter:  matchRepo,
		Publisher:    pubSubRepo,
		Streams:      chatBroker,
		RateLimiter:  rateLimiter,
		Logger:       log,
	})
	profileService := profilessvc.NewService(profilessvc.Dependencies{
		Store: profileRepo,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		JWTManager:      jwtManager,
		DecisionService: decisionService,
		MatchService:    matchService,
		ChatService:     chatService,
		ProfileService:  profileService,
		Logger:          log,
		Config:          cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
