// Package courseplatform собирает основное HTTP-приложение платформы:
// хранилище, кеш, очереди, сервисы и маршруты.
package courseplatform

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/course-platform/internal/cache"
	"github.com/magabrotheeeer/course-platform/internal/config"
	"github.com/magabrotheeeer/course-platform/internal/content"
	"github.com/magabrotheeeer/course-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/course-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/course-platform/internal/migrations"
	authservice "github.com/magabrotheeeer/course-platform/internal/services/auth"
	blogservice "github.com/magabrotheeeer/course-platform/internal/services/blog"
	daystateservice "github.com/magabrotheeeer/course-platform/internal/services/daystate"
	enrollmentservice "github.com/magabrotheeeer/course-platform/internal/services/enrollment"
	newsletterservice "github.com/magabrotheeeer/course-platform/internal/services/newsletter"
	programservice "github.com/magabrotheeeer/course-platform/internal/services/program"
	userservice "github.com/magabrotheeeer/course-platform/internal/services/user"
	"github.com/magabrotheeeer/course-platform/internal/storage"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.Db, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNewsletterQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	schemas := content.NewLoader(cfg.ContentDir)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, jwtMaker)
	userService := userservice.NewUserService(db, logger)
	programService := programservice.NewProgramService(db, cacheRedis, schemas, logger)
	enrollmentService := enrollmentservice.NewEnrollmentService(db, db, db, logger)
	dayStateService := daystateservice.NewDayStateService(db, cacheRedis, schemas, logger)
	blogService := blogservice.NewBlogService(db, logger)
	newsletterService := newsletterservice.NewNewsletterService(db, rabbitmq.NewConfirmPublisher(ch), logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger,
		authService,
		userService,
		programService,
		enrollmentService,
		dayStateService,
		blogService,
		newsletterService,
	)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if chErr := a.ch.Close(); chErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", chErr))
		}
		if connErr := a.conn.Close(); connErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", connErr))
		}
		a.db.Db.Close()
		return err
	}
}
