package config

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type (
	Bootstrap struct {
		Router         *chi.Mux
		PostgresDB     *sql.DB
		MongoDB        *mongo.Client
		Redis          *redis.Client
		RabbitMQ       *amqp.Connection
		Logger         *logrus.Logger
		ZapLogger      *zap.Logger
		DriverConfig   *DriverConfig
		InternalConfig *InternalConfig
	}

	InternalConfig struct {
		App          App
		JWT          JWT
		Lab          Lab
		Notification Notification
	}

	DriverConfig struct {
		PostgresDB PostgresDB
		MongoDB    MongoDB
		Redis      Redis
		RabbitMQ   RabbitMQ
		Minio      Minio
		SMTP       SMTP
		Logger     Logger
	}

	App struct {
		Env                     string
		Port                    string
		Version                 string
		Timezone                string
		EndpointPrefix          string
		MaxRequests             int
		ShutdownTimeout         int
		RequestTimeoutInSeconds int
	}

	JWT struct {
		Secret        string
		ExpTimeInHour int
	}

	// Lab configures inbound webhook handling.
	Lab struct {
		WebhookSecret          string
		IngestTimeoutInSeconds int
		IngestLockTTLInSeconds int
		PartnerWindowSeconds   int
		PartnerMaxPerWindow    int
	}

	// Notification configures the outbox dispatcher and delivery worker.
	Notification struct {
		MaxDeliveryAttempts   int
		DispatchBatchSize     int
		DispatchIntervalInSec int
		SendTimeoutInSeconds  int
		QueuePrefetch         int
	}

	PostgresDB struct {
		Host     string
		Port     string
		DBName   string
		Username string
		Password string
	}
	MongoDB struct {
		Port     string
		Host     string
		DbName   string
		Username string
		Password string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
	}
	RabbitMQ struct {
		Port     string
		Host     string
		Username string
		Password string
	}
	Minio struct {
		Port       string
		Host       string
		Username   string
		Password   string
		BucketName string
	}
	SMTP struct {
		Host        string
		Username    string
		Password    string
		EmailSender string
		Port        int
	}
	Logger struct {
		Level               string
		OutputFileName      string
		OutputErrorFileName string
	}
)
