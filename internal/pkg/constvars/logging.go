package constvars

const (
	LoggingRequestIDKey          = "request_id"
	LoggingEndpointKey           = "endpoint"
	LoggingMethodKey             = "method"
	LoggingRemoteAddrKey         = "remote_addr"
	LoggingUserAgentKey          = "user_agent"
	LoggingDurationKey           = "duration"
	LoggingErrorTypeKey          = "error_type"
	LoggingOrderIDKey            = "order_id"
	LoggingOrderNumberKey        = "order_number"
	LoggingOrderStatusKey        = "order_status"
	LoggingOrderActionKey        = "order_action"
	LoggingResultIDKey           = "result_id"
	LoggingExternalRefKey        = "external_ref"
	LoggingActorIDKey            = "actor_id"
	LoggingEventIDKey            = "event_id"
	LoggingEventTypeKey          = "event_type"
	LoggingAttemptsKey           = "attempts"
	LoggingRedisKey              = "redis_key"
	LoggingLockValueKey          = "lock_value"
	LoggingLockExpirationTimeKey = "lock_expiration_time"
	LoggingLockStoredValueKey    = "stored_value"
	LoggingLockExpectedValueKey  = "expected_value"
	LoggingQueueNameKey          = "queue_name"
	LoggingMessageIDKey          = "message_id"
	LoggingFailedCountKey        = "failed_count"
	LoggingBucketNameKey         = "bucket_name"
	LoggingObjectNameKey         = "object_name"
	LoggingEmailToKey            = "email_to"
	LoggingLabPartnerKey         = "lab_partner"
)
