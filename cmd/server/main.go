package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/portfolio-backend/internal/config"
	"github.com/ignatzorin/portfolio-backend/internal/db"
	"github.com/ignatzorin/portfolio-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/portfolio-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/portfolio-backend/internal/http/router"
	"github.com/ignatzorin/portfolio-backend/internal/logger"
	"github.com/ignatzorin/portfolio-backend/internal/portfolio"
	"github.com/ignatzorin/portfolio-backend/internal/repository"
	"github.com/ignatzorin/portfolio-backend/internal/service"
	"github.com/ignatzorin/portfolio-backend/internal/storage"
	"github.com/ignatzorin/portfolio-backend/internal/store"
	"github.com/ignatzorin/portfolio-backend/internal/upload"
	"github.com/ignatzorin/portfolio-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.Env)

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn); err != nil {
		logger.Log.Fatalf("main: ошибка миграций: %v", err)
	}

	blobs, err := storage.NewBlobStorage(cfg.MediaStoragePath, cfg.PublicBaseURL, upload.MaxBytes, store.BucketImages, store.BucketDocuments)
	if err != nil {
		logger.Log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Вебсокеты.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, "ws hub", hub.Run)
	notifier := ws.NewNotifier(hub)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	tables := repository.NewTables(dbConn)

	// Разделы портфолио делят один кэш чтения.
	cache := portfolio.NewReadCache(cfg.ReadCacheTTL)
	inbox := portfolio.NewEntity(portfolio.ContactSchema(), tables.Submissions, cache, notifier)
	controllers := []portfolio.Controller{
		portfolio.NewEntity(portfolio.ProfileSchema(), tables.Profiles, cache, notifier),
		portfolio.NewEntity(portfolio.SkillSchema(), tables.Skills, cache, notifier),
		portfolio.NewEntity(portfolio.ProjectSchema(), tables.Projects, cache, notifier),
		portfolio.NewEntity(portfolio.ExperienceSchema(), tables.Experience, cache, notifier),
		portfolio.NewEntity(portfolio.EducationSchema(), tables.Education, cache, notifier),
		inbox,
	}

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	portfolioService := portfolio.NewService(blobs, notifier, controllers)
	authService := service.NewAuthService(userRepo, tokenManager, portfolioService, cfg.AllowSignup)
	contactService := service.NewContactService(userRepo, tables.Submissions, inbox, notifier)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, httpRouter.Handlers{
		Auth:   httpHandlers.NewAuthHandler(authService),
		Public: httpHandlers.NewPublicHandler(portfolioService, contactService),
		Admin:  httpHandlers.NewAdminHandler(portfolioService),
		WS:     httpHandlers.NewWSHandler(hub, cfg.AllowedOrigins),
		Health: httpHandlers.NewHealthHandler(dbConn, blobs.Root()),
		Owners: authService,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpRouter.WithCORS(cfg, engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo("http shutdown", func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorf("main: ошибка остановки http сервера: %v", err)
		}
	})

	logger.Log.Infof("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.Errorf("main: ошибка закрытия базы: %v", err)
	}
}
