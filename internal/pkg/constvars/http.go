package constvars

const (
	MethodGet     = "GET"
	MethodHead    = "HEAD"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodPatch   = "PATCH"
	MethodDelete  = "DELETE"
	MethodOptions = "OPTIONS"
)

const (
	MIMETextPlain       = "text/plain"
	MIMEApplicationJSON = "application/json"
	MIMEApplicationHL7  = "x-application/hl7-v2+er7"
	MIMEOctetStream     = "application/octet-stream"

	MIMEApplicationJSONCharsetUTF8 = "application/json; charset=utf-8"
)

const (
	StatusOK        = 200
	StatusCreated   = 201
	StatusAccepted  = 202
	StatusNoContent = 204

	StatusBadRequest           = 400
	StatusUnauthorized         = 401
	StatusForbidden            = 403
	StatusNotFound             = 404
	StatusMethodNotAllowed     = 405
	StatusConflict             = 409
	StatusGone                 = 410
	StatusUnsupportedMediaType = 415
	StatusUnprocessableEntity  = 422
	StatusTooManyRequests      = 429

	StatusInternalServerError = 500
	StatusBadGateway          = 502
	StatusServiceUnavailable  = 503
	StatusGatewayTimeout      = 504
)

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderRetryAfter    = "Retry-After"
	HeaderRequestID     = "X-Request-Id"

	// HeaderLabSignature carries the hex HMAC-SHA256 of the raw webhook body.
	HeaderLabSignature = "X-Lab-Signature"
	// HeaderLabPartner identifies the sending lab partner for rate limiting.
	HeaderLabPartner = "X-Lab-Partner"
)
