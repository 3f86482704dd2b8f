package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipebox/auth"
	"recipebox/config"
	"recipebox/contact"
	"recipebox/db"
	"recipebox/db/memdb"
	"recipebox/likes"
	"recipebox/logging"
	"recipebox/middleware"
	"recipebox/mq"
	"recipebox/profile"
	"recipebox/ratelim"
	"recipebox/rdx"
	"recipebox/recipes"
	"recipebox/routes"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs each request method, path, status, remote address and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// backends holds what main opens and must close on shutdown.
type backends struct {
	stores  db.Stores
	mongo   *db.Database
	redis   *rdx.Client
	revoker auth.Revoker
	locker  likes.Locker
	emitter mq.Emitter
}

func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	b := &backends{emitter: mq.Nop{}}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		logging.Warn("using in-memory store; data is lost on restart")
		b.stores = memdb.New().Stores()
	default:
		database, err := db.Connect(ctx, cfg.MongoURL, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureIndexes(ctx); err != nil {
			database.Close(context.Background())
			return nil, err
		}
		b.mongo = database
		b.stores = database.Stores(cfg.MongoTransactions)
	}

	if cfg.RedisAddr != "" {
		rc := rdx.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			logging.Warn("redis unreachable at startup; lock and revocation fail open", zap.Error(err))
		}
		b.redis = rc
		b.revoker = rc
		b.locker = rc
		b.emitter = mq.NewRedisEmitter(rc.Conn)
	}
	return b, nil
}

func (b *backends) Close(ctx context.Context) {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			logging.Warn("close redis", zap.Error(err))
		}
	}
	if b.mongo != nil {
		if err := b.mongo.Close(ctx); err != nil {
			logging.Warn("close mongo", zap.Error(err))
		}
	}
}

func setupRouter(cfg *config.Config, b *backends, rateLimiter *ratelim.RateLimiter) *httprouter.Router {
	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)
	s := b.stores

	router := httprouter.New()
	routes.RoutesWrapper(router, routes.Deps{
		Guard:       middleware.NewGuard(codec, auth.NewResolver(s.Users), b.revoker),
		RateLimiter: rateLimiter,
		Auth:        auth.NewHandler(s.Users, codec, b.revoker),
		Recipes: recipes.NewHandler(s.Recipes, s.Users, recipes.Options{
			PublicURL: cfg.PublicURL,
			UploadDir: cfg.UploadDir,
			Emitter:   b.emitter,
		}),
		Likes:     likes.NewHandler(likes.NewGuard(s.Users, s.Recipes, s.Likes, b.locker, b.emitter)),
		Profile:   profile.NewHandler(s.Users, s.Recipes),
		Contact:   contact.NewHandler(s.Contacts),
		UploadDir: cfg.UploadDir,
	})
	return router
}

func newHandler(cfg *config.Config, router http.Handler) http.Handler {
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
	}).Handler(router)

	return loggingMiddleware(securityHeaders(corsHandler))
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	defer logging.Sync()

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	b, err := openBackends(startCtx, cfg)
	cancel()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return err
	}

	rateLimiter := ratelim.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	stopCleanup := make(chan struct{})
	go rateLimiter.Run(time.Minute, stopCleanup)

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           newHandler(cfg, setupRouter(cfg, b, rateLimiter)),
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		close(stopCleanup)
	})

	errCh := make(chan error, 1)
	go func() {
		logging.Info("server listening", zap.String("addr", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		b.Close(context.Background())
		return err
	case <-sigCh:
	}

	logging.Info("shutdown signal received; shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	b.Close(ctx)
	logging.Info("server stopped cleanly")
	return nil
}

func main() {
	if err := run(); err != nil {
		logging.Error("server failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "recipebox: %v\n", err)
		os.Exit(1)
	}
}
