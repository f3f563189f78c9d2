package config

import (
	"labtrace-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		PostgresDB: PostgresDB{
			Host:     utils.GetEnvString("POSTGRES_HOST", "localhost"),
			Port:     utils.GetEnvString("POSTGRES_PORT", "5432"),
			DBName:   utils.GetEnvString("POSTGRES_DB_NAME", "labtrace"),
			Username: utils.GetEnvString("POSTGRES_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("POSTGRES_PASSWORD", "defaultPassword"),
		},
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "labtrace"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "defaultPassword"),
		},
		Minio: Minio{
			Port:       utils.GetEnvString("MINIO_PORT", "9000"),
			Host:       utils.GetEnvString("MINIO_HOST", "localhost"),
			Username:   utils.GetEnvString("MINIO_USERNAME", "defaultUsername"),
			Password:   utils.GetEnvString("MINIO_PASSWORD", "defaultPassword"),
			BucketName: utils.GetEnvString("MINIO_BUCKET_NAME", "lab-payloads"),
		},
		SMTP: SMTP{
			Host:        utils.GetEnvString("SMTP_HOST", "localhost"),
			Username:    utils.GetEnvString("SMTP_USERNAME", ""),
			Password:    utils.GetEnvString("SMTP_PASSWORD", ""),
			EmailSender: utils.GetEnvString("SMTP_EMAIL_SENDER", "noreply@labtrace.local"),
			Port:        utils.GetEnvInt("SMTP_PORT", 2525),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                        utils.GetEnvString("APP_ENV", "development"),
			Port:                       utils.GetEnvString("APP_PORT", ":8080"),
			Version:                    utils.GetEnvString("APP_VERSION", "v1"),
			Timezone:                   utils.GetEnvString("APP_TIMEZONE", "UTC"),
			EndpointPrefix:             utils.GetEnvString("APP_ENDPOINT_PREFIX", "api"),
			MaxRequests:                utils.GetEnvInt("APP_MAX_REQUEST", 10),
			ShutdownTimeout:            utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
			RequestTimeoutInSeconds:    utils.GetEnvInt("APP_REQUEST_TIMEOUT_IN_SECONDS", 10),
		},
		JWT: JWT{
			Secret:        utils.GetEnvString("JWT_SECRET", "anyjwt"),
			ExpTimeInHour: utils.GetEnvInt("JWT_EXP_TIME_IN_HOUR", 1),
		},
		Lab: Lab{
			WebhookSecret:            utils.GetEnvString("LAB_WEBHOOK_SECRET", "labsecret"),
			IngestTimeoutInSeconds:   utils.GetEnvInt("LAB_INGEST_TIMEOUT_IN_SECONDS", 10),
			IngestLockTTLInSeconds:   utils.GetEnvInt("LAB_INGEST_LOCK_TTL_IN_SECONDS", 15),
			PartnerWindowSeconds:     utils.GetEnvInt("LAB_PARTNER_RATE_WINDOW_IN_SECONDS", 60),
			PartnerMaxPerWindow:      utils.GetEnvInt("LAB_PARTNER_RATE_MAX_PER_WINDOW", 120),
		},
		Notification: Notification{
			MaxDeliveryAttempts:   utils.GetEnvInt("NOTIFICATION_MAX_DELIVERY_ATTEMPTS", 3),
			DispatchBatchSize:     utils.GetEnvInt("NOTIFICATION_DISPATCH_BATCH_SIZE", 20),
			DispatchIntervalInSec: utils.GetEnvInt("NOTIFICATION_DISPATCH_INTERVAL_IN_SECONDS", 15),
			SendTimeoutInSeconds:  utils.GetEnvInt("NOTIFICATION_SEND_TIMEOUT_IN_SECONDS", 10),
			QueuePrefetch:         utils.GetEnvInt("NOTIFICATION_QUEUE_PREFETCH", 10),
		},
	}
}
