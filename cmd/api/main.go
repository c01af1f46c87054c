package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/config"
	appointmenth "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/appointment"
	assisth "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/assist"
	audith "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/audit"
	authh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/auth"
	billingh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/billing"
	chath "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/chat"
	doctorh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/doctor"
	healthh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/health"
	patienth "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/patient"
	permissionh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/permission"
	presenceh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/presence"
	settingsh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/settings"
	userh "github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler/user"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/email"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/middleware"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository/postgres"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/router"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/appointment"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/assist"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/audit"
	authsvc "github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/auth"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/billing"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/chat"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/doctor"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/patient"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/permission"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/presence"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/settings"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/user"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/auth"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
	redisbroker "github.com/saaabeeer7719-creator/sehatech-full-system/pkg/messaging/redis"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/metrics"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/security"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	appLogger := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Logging.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.ZL.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		appLogger.ZL.Fatal().Err(err).Msg("failed to parse Redis URL")
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	broker, err := redisbroker.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &appLogger.ZL)
	if err != nil {
		appLogger.ZL.Fatal().Err(err).Msg("failed to connect to Redis broker")
	}
	defer broker.Close()

	m := metrics.New("sehatech")

	// Repositories
	baseRepo := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	permissionRepo := postgres.NewPermissionRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	messageRepo := postgres.NewMessageRepository(db)

	// Services
	auditSvc := audit.NewService(auditRepo, userRepo, appLogger)

	permissionSvc := permission.NewService(permissionRepo, auditSvc, appLogger)
	if err := permissionSvc.Load(context.Background()); err != nil {
		appLogger.ZL.Fatal().Err(err).Msg("failed to load permission overrides")
	}

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        cfg.JWT.Expiry(),
		RefreshExpiry: cfg.JWT.RefreshExpiry(),
	})
	hasher := security.NewBcryptHasher(12)
	emailSvc := email.NewService(cfg.Email, appLogger)

	authSvc := authsvc.NewService(userRepo, jwtSvc, hasher, rdb, emailSvc, appLogger)
	userSvc := user.NewService(userRepo, hasher, emailSvc, auditSvc, appLogger)
	patientSvc := patient.NewService(patientRepo, auditSvc, appLogger)
	doctorSvc := doctor.NewService(doctorRepo, auditSvc, appLogger)
	appointmentSvc := appointment.NewService(&baseRepo, appointmentRepo, m, appLogger)
	billingSvc := billing.NewService(transactionRepo, patientRepo, auditSvc, m, appLogger)
	presenceSvc := presence.NewService(rdb, broker, cfg.Presence, appLogger)
	chatSvc := chat.NewService(messageRepo, userRepo, broker, appLogger)
	settingsSvc := settings.NewService(settingsRepo, auditSvc, appLogger)
	assistSvc := assist.NewService(assist.NewClient(cfg.Assist), patientRepo, doctorRepo, appointmentRepo, transactionRepo, appLogger)

	// Middleware and router
	authMw := middleware.NewAuthMiddleware(jwtSvc)
	authzMw := middleware.NewAuthzMiddleware(permissionSvc)

	routerCfg := router.DefaultConfig()
	routerCfg.RequestTimeout = time.Duration(cfg.Server.TimeoutSeconds) * time.Second

	r := router.New(authMw, authzMw, router.Handlers{
		Health:      healthh.NewHandler(db, rdb),
		Auth:        authh.NewHandler(authSvc),
		User:        userh.NewHandler(userSvc, presenceSvc),
		Patient:     patienth.NewHandler(patientSvc),
		Doctor:      doctorh.NewHandler(doctorSvc),
		Appointment: appointmenth.NewHandler(appointmentSvc, billingSvc),
		Billing:     billingh.NewHandler(billingSvc),
		Audit:       audith.NewHandler(auditSvc),
		Permission:  permissionh.NewHandler(permissionSvc),
		Presence:    presenceh.NewHandler(presenceSvc),
		Chat:        chath.NewHandler(chatSvc),
		Settings:    settingsh.NewHandler(settingsSvc),
		Assist:      assisth.NewHandler(assistSvc),
	}, &appLogger.ZL, routerCfg)
	r.Setup()

	// Outbox processor drains the events written alongside domain
	// transactions and publishes them to the broker.
	processor := worker.NewOutboxProcessor(outboxRepo, broker, cfg.Outbox.ToProcessorConfig(), appLogger, m)
	processorCtx, stopProcessor := context.WithCancel(context.Background())
	defer stopProcessor()
	go processor.Start(processorCtx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.ZL.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.ZL.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.ZL.Info().Msg("shutting down server...")

	stopProcessor()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.ZL.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.ZL.Info().Msg("server exited properly")
}
