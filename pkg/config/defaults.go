package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "tunestudio"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 5
	DefaultRateLimitWindow   = 10 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultMetricsEnabled = true

	DefaultEventsEnabled    = false
	DefaultCallbackTopic    = "studio.callbacks"
	DefaultCallbackDLQTopic = "studio.callbacks.dlq"
	DefaultClientTopic      = "studio.clients"
	DefaultOrderTopic       = "studio.orders"
	DefaultNotifierGroupID  = "studio-notifier"

	DefaultOrderCurrency = "RUB"

	DefaultPageLimit       = 10
	DefaultPaginationLimit = 100
)
