package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/sugvoyage-backend/internal/config"
	"github.com/ignatzorin/sugvoyage-backend/internal/db"
	"github.com/ignatzorin/sugvoyage-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/sugvoyage-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/sugvoyage-backend/internal/http/router"
	"github.com/ignatzorin/sugvoyage-backend/internal/logger"
	"github.com/ignatzorin/sugvoyage-backend/internal/mail"
	"github.com/ignatzorin/sugvoyage-backend/internal/repository"
	"github.com/ignatzorin/sugvoyage-backend/internal/service"
	"github.com/ignatzorin/sugvoyage-backend/internal/storage"
	"github.com/ignatzorin/sugvoyage-backend/internal/ws"
)

const (
	mediaBaseURL              = "/media"
	verificationPurgeInterval = time.Hour
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.Env)
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	postRepo := repository.NewPostRepository(dbConn)
	commentRepo := repository.NewCommentRepository(dbConn)
	spotRepo := repository.NewSpotRepository(dbConn)

	cache := service.NewCacheService()
	defer cache.Close()

	var codes service.VerificationStore
	switch cfg.VerificationStore {
	case config.VerificationStoreMemory:
		codes = service.NewMemoryVerificationStore(cache)
	default:
		verificationRepo := repository.NewVerificationRepository(dbConn)
		codes = verificationRepo
		goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
			purgeVerificationCodes(ctx, verificationRepo)
		})
	}

	var mailer service.Mailer
	if cfg.SMTP.Enabled() {
		mailer = mail.NewSMTPMailer(cfg.SMTP, cfg.VerificationCodeTTL)
	} else {
		logger.L().Warn("main: SMTP не настроен, коды подтверждения пишутся в лог")
		mailer = mail.NewLogMailer(logger.L())
	}

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	authService := service.NewAuthService(userRepo, codes, mailer, tokenManager, cfg.VerificationCodeTTL)
	postService := service.NewPostService(postRepo, userRepo, photoStorage, mediaBaseURL)
	commentService := service.NewCommentService(commentRepo, userRepo)
	spotService := service.NewSpotService(spotRepo, cache, cfg.SpotDefaultRadius)

	// Вебсокеты.
	hub := ws.NewHub(cfg.SpotScanInterval)
	goroutine.SafeGoWithContext(ctx, hub.Run)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, httpRouter.Handlers{
		Auth:    httpHandlers.NewAuthHandler(authService),
		Profile: httpHandlers.NewProfileHandler(authService),
		Post:    httpHandlers.NewPostHandler(postService, cfg.MaxPostImages),
		Comment: httpHandlers.NewCommentHandler(commentService),
		Spot:    httpHandlers.NewSpotHandler(spotService),
		WS:      httpHandlers.NewWSHandler(hub, spotService, tokenManager, cfg.SpotNotifyInterval, cfg.AllowedOrigins),
		Health:  httpHandlers.NewHealthHandler(dbConn),
	}, tokenManager)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.L().WithError(err).Error("main: ошибка остановки http сервера")
		}
	})

	logger.L().WithField("port", cfg.HTTPPort).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// purgeVerificationCodes периодически удаляет коды, истёкшие дольше
// models.VerificationRetention назад.
func purgeVerificationCodes(ctx context.Context, repo *repository.VerificationRepository) {
	ticker := time.NewTicker(verificationPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := repo.PurgeExpired(ctx, time.Now())
			if err != nil {
				logger.L().WithError(err).Warn("main: не удалось удалить просроченные коды")
				continue
			}
			if removed > 0 {
				logger.L().WithField("removed", removed).Debug("main: просроченные коды удалены")
			}
		}
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
