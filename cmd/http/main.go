package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labtrace-service/cmd/migration"
	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/delivery/http/controllers"
	"labtrace-service/internal/app/delivery/http/middlewares"
	"labtrace-service/internal/app/delivery/http/routers"
	"labtrace-service/internal/app/drivers/database"
	"labtrace-service/internal/app/drivers/logger"
	"labtrace-service/internal/app/drivers/storage"
	"labtrace-service/internal/app/services/core/auth"
	"labtrace-service/internal/app/services/core/authz"
	"labtrace-service/internal/app/services/core/orders"
	"labtrace-service/internal/app/services/core/results"
	"labtrace-service/internal/app/services/core/users"
	"labtrace-service/internal/app/services/shared/locker"
	"labtrace-service/internal/app/services/shared/ratelimiter"
	redisrepo "labtrace-service/internal/app/services/shared/redis"
	"labtrace-service/internal/app/services/shared/session"
	storagesvc "labtrace-service/internal/app/services/shared/storage"

	"github.com/go-chi/chi/v5"
	"github.com/minio/minio-go/v7"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log := logger.NewLogrusLogger(internalConfig)
	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)
	defer zapLogger.Sync()

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		log.Fatalf("Error loading location: %v", err)
	}
	time.Local = location

	postgresDB := database.NewPostgresDB(driverConfig)
	migration.Run(postgresDB)

	mongoDB := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	minioClient := storage.NewMinio(driverConfig)
	chiRouter := chi.NewRouter()

	bootstrap := config.Bootstrap{
		Router:         chiRouter,
		PostgresDB:     postgresDB,
		MongoDB:        mongoDB,
		Redis:          redisClient,
		Logger:         log,
		ZapLogger:      zapLogger,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}
	bootstrapTheApp(bootstrap, minioClient)

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Println("Waiting for pending requests to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeout),
	)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func bootstrapTheApp(bootstrap config.Bootstrap, minioClient *minio.Client) {
	// Shared services
	redisRepository := redisrepo.NewRedisRepository(bootstrap.Redis)
	lockerService := locker.NewLockService(redisRepository, bootstrap.ZapLogger)
	sessionService := session.NewSessionService(redisRepository, bootstrap.InternalConfig)
	resourceLimiter := ratelimiter.NewResourceLimiter(redisRepository, bootstrap.ZapLogger)
	payloadArchive := storagesvc.NewMinioPayloadArchive(minioClient, bootstrap.DriverConfig.Minio.BucketName)

	// Middlewares
	httpMiddlewares := middlewares.NewMiddlewares(sessionService, resourceLimiter, bootstrap.InternalConfig, bootstrap.ZapLogger)

	// Repositories
	userRepository := users.NewUserMongoRepository(bootstrap.MongoDB, bootstrap.DriverConfig.MongoDB.DbName)
	orderRepository := orders.NewOrderPostgresRepository(bootstrap.PostgresDB)
	resultRepository := results.NewResultPostgresRepository(bootstrap.PostgresDB)

	// Core services
	authzEngine := authz.NewEngine()
	authUsecase := auth.NewAuthUsecase(userRepository, sessionService, bootstrap.ZapLogger)
	orderUsecase := orders.NewOrderUsecase(orderRepository, lockerService, authzEngine, bootstrap.ZapLogger)
	resultUsecase := results.NewResultUsecase(
		resultRepository,
		orderRepository,
		orderUsecase,
		lockerService,
		payloadArchive,
		authzEngine,
		bootstrap.InternalConfig,
		bootstrap.ZapLogger,
	)

	// Controllers
	authController := controllers.NewAuthController(bootstrap.ZapLogger, bootstrap.InternalConfig, authUsecase)
	orderController := controllers.NewOrderController(bootstrap.ZapLogger, bootstrap.InternalConfig, orderUsecase)
	resultController := controllers.NewResultController(bootstrap.ZapLogger, bootstrap.InternalConfig, resultUsecase)
	webhookController := controllers.NewWebhookController(bootstrap.ZapLogger, bootstrap.InternalConfig, resultUsecase)

	routers.SetupRoutes(
		bootstrap.Router,
		bootstrap.InternalConfig,
		httpMiddlewares,
		authController,
		orderController,
		resultController,
		webhookController,
	)
}
