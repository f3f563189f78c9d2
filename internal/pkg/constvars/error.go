package constvars

// Validation messages, keyed by validator tag.
var CustomValidationErrorMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"alphanum": "must contain only alphanumeric characters",
	"min":      "must be at least %s characters long",
	"max":      "maximum at %s characters long",
	"oneof":    "must be one of: %s",
	"uuid":     "must be a valid identifier",
	"gt":       "must be greater than %s",
}

var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"oneof": true,
	"gt":    true,
}

// Error messages for clients. Authorization and gating denials share one
// non-specific message so a denied caller learns nothing about entity state.
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this resource"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
	ErrClientInvalidEmailOrPassword        = "invalid email or password"
	ErrClientOrderNotFound                 = "order not found"
	ErrClientResultNotFound                = "result not found"
	ErrClientOrderInvalidTransition        = "order cannot be moved to the requested status"
	ErrClientOrderPreconditionNotMet       = "order is not ready for this action"
	ErrClientWebhookSignatureInvalid       = "invalid signature"
	ErrClientWebhookMalformedPayload       = "payload could not be parsed"
	ErrClientTooManyRequests               = "too many requests"
)

// Error messages for developers.
const (
	ErrDevValidationFailed       = "validation failed"
	ErrDevCannotParseJSON        = "cannot parse JSON"
	ErrDevCannotMarshalJSON      = "cannot marshal JSON"
	ErrDevReadRequestBody        = "failed to read request body"
	ErrDevMissingRequestID       = "request id missing from context"
	ErrDevMissingActor           = "actor missing from context"
	ErrDevInvalidCredentials     = "invalid credentials"
	ErrDevFailedToHashPassword   = "failed to hash password"
	ErrDevUserNotExists          = "user does not exist"
	ErrDevServerDeadlineExceeded = "operation deadline exceeded"

	// Authentication
	ErrDevAuthSigningMethod         = "unexpected signing method"
	ErrDevAuthTokenMissing          = "token missing"
	ErrDevAuthTokenInvalidOrExpired = "token invalid or expired"
	ErrDevAuthGenerateToken         = "failed to generate token"
	ErrDevAuthInvalidSession        = "invalid session"

	// Authorization engine
	ErrDevAuthzDenied = "authorization engine denied the action"

	// Order lifecycle
	ErrDevOrderNotFound           = "order not found"
	ErrDevOrderInvalidTransition  = "transition edge not present in lifecycle graph"
	ErrDevOrderPreconditionNotMet = "lifecycle guard condition not met"
	ErrDevOrderConcurrentUpdate   = "order status changed concurrently"
	ErrDevOrderLockNotAcquired    = "order is locked by another writer"

	// Result ingestion
	ErrDevResultNotFound           = "result not found"
	ErrDevWebhookSignatureInvalid  = "webhook signature verification failed"
	ErrDevWebhookMalformedPayload  = "webhook payload failed schema validation"
	ErrDevIngestionOrderNotFound   = "no order matches the external order reference"
	ErrDevIngestionLockNotAcquired = "ingestion for this reference already in progress"

	// Notification
	ErrDevNotificationDeliveryFailed = "notification delivery failed"
	ErrDevNotificationPublishFailed  = "failed to publish notification message"

	// Postgres
	ErrDevDBFailedToFindData       = "failed to find data in postgres"
	ErrDevDBFailedToInsertData     = "failed to insert data into postgres"
	ErrDevDBFailedToUpdateData     = "failed to update data in postgres"
	ErrDevDBFailedToDeleteData     = "failed to delete data in postgres"
	ErrDevDBFailedToIterateDataset = "failed to iterate postgres dataset"
	ErrDevDBFailedToBeginTx        = "failed to begin postgres transaction"
	ErrDevDBFailedToCommitTx       = "failed to commit postgres transaction"

	// Mongo
	ErrDevMongoDBFailedToFindDocument   = "failed to find document in mongodb"
	ErrDevMongoDBFailedToInsertDocument = "failed to insert document into mongodb"
	ErrDevMongoDBFailedToUpdateDocument = "failed to update document in mongodb"

	// Redis
	ErrDevRedisSetValue    = "failed to set value in redis"
	ErrDevRedisGetValue    = "failed to get value from redis"
	ErrDevRedisDeleteValue = "failed to delete value from redis"
	ErrDevRedisUnlock      = "failed to release redis lock"

	// RabbitMQ
	ErrDevRabbitMQPublish      = "failed to publish message to rabbitmq"
	ErrDevRabbitMQNotConfirmed = "rabbitmq broker did not confirm publish"
	ErrDevRabbitMQFetch        = "failed to fetch message from rabbitmq"

	// Minio
	ErrDevMinioFailedToCreateObject = "failed to create object in bucket %s"

	// SMTP
	ErrDevSMTPSendEmail = "failed to send email via %s"
)
