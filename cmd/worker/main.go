package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/drivers/database"
	"labtrace-service/internal/app/drivers/logger"
	mailerdriver "labtrace-service/internal/app/drivers/mailer"
	"labtrace-service/internal/app/drivers/messaging"
	"labtrace-service/internal/app/services/core/notifications"
	"labtrace-service/internal/app/services/core/orders"
	"labtrace-service/internal/app/services/core/results"
	"labtrace-service/internal/app/services/core/users"
	"labtrace-service/internal/app/services/shared/locker"
	"labtrace-service/internal/app/services/shared/mailer"
	"labtrace-service/internal/app/services/shared/notifqueue"
	redisrepo "labtrace-service/internal/app/services/shared/redis"
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
	mongoDB := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig)
	smtpClient := mailerdriver.NewSMTPClient(driverConfig)

	redisRepository := redisrepo.NewRedisRepository(redisClient)
	lockerService := locker.NewLockService(redisRepository, zapLogger)

	queue, err := notifqueue.NewService(rabbitMQ, zapLogger, internalConfig.Notification.QueuePrefetch)
	if err != nil {
		log.Fatalf("Failed to initialize notification queue: %v", err)
	}

	mailerService, err := mailer.NewMailerService(smtpClient, rabbitMQ, notifqueue.DeliveryQueueName)
	if err != nil {
		log.Fatalf("Failed to initialize mailer service: %v", err)
	}

	userRepository := users.NewUserMongoRepository(mongoDB, driverConfig.MongoDB.DbName)
	orderRepository := orders.NewOrderPostgresRepository(postgresDB)
	resultRepository := results.NewResultPostgresRepository(postgresDB)
	outboxRepository := notifications.NewOutboxPostgresRepository(postgresDB)

	dispatcher := notifications.NewDispatcher(orderRepository, resultRepository, userRepository, mailerService, zapLogger)
	dispatcherWorker := notifications.NewDispatcherWorker(zapLogger, internalConfig, lockerService, outboxRepository, dispatcher)
	deliveryWorker := notifications.NewDeliveryWorker(zapLogger, internalConfig, lockerService, queue, mailerService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopDispatcher := dispatcherWorker.Start(ctx)
	stopDelivery := deliveryWorker.Start(ctx)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Println("Stopping workers..")
	stopDispatcher()
	stopDelivery()
	cancel()

	log.Println("Worker exiting")
}
