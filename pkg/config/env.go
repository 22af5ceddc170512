package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvSiteFormSecret = "SITE_FORM_SECRET"

	EnvRateLimitRequests = "PHONE_RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "PHONE_RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvMetricsEnabled = "METRICS_ENABLED"

	EnvEventsEnabled    = "EVENTS_ENABLED"
	EnvCallbackTopic    = "CALLBACK_TOPIC"
	EnvCallbackDLQTopic = "CALLBACK_DLQ_TOPIC"
	EnvClientTopic      = "CLIENT_TOPIC"
	EnvOrderTopic       = "ORDER_TOPIC"
	EnvNotifierGroupID  = "NOTIFIER_GROUP_ID"

	EnvDefaultOrderCurrency = "DEFAULT_ORDER_CURRENCY"
)
