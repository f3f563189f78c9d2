package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY ContextKey = "request_id"
	CONTEXT_ACTOR_KEY      ContextKey = "actor"
)

const (
	REQUEST_ID_PREFIX = "LBTRC_SVC_"
)

// Actor roles. A user may carry more than one role.
const (
	RoleTypePatient    = "patient"
	RoleTypeTechnician = "technician"
	RoleTypeReviewer   = "reviewer"
	RoleTypeAdmin      = "admin"
	RoleTypeSystem     = "system"
)

const (
	MongoCollectionUsers = "users"
)

const (
	RedisSessionKeyFormat    = "session:%s"
	RedisOrderLockKeyFormat  = "lock:order:%s"
	RedisIngestLockKeyFormat = "lock:ingest:%s"
	RedisResultLockKeyFormat = "lock:result:%s"

	DispatcherWorkerLockKey = "notification:dispatcher:lock"
	DeliveryWorkerLockKey   = "notification:delivery:lock"
)

const (
	AppPaginationUrlFormat = "%s?page=%d&page_size=%d"
)
