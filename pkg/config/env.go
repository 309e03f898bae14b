package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"
	EnvStorageDriver     = "STORAGE_DRIVER"

	EnvLockMode = "LOCK_MODE"
	EnvLockTTL  = "LOCK_TTL"
	EnvLockWait = "LOCK_WAIT"
	EnvTimeZone = "TIMEZONE"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvJWTSecret          = "JWT_SECRET"
	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"

	EnvNotifier            = "NOTIFIER"
	EnvNotificationTimeout = "NOTIFICATION_TIMEOUT"
	EnvNotificationsTopic  = "NOTIFICATIONS_TOPIC"
	EnvSendGridAPIKey      = "SENDGRID_API_KEY"
	EnvSendGridFromEmail   = "SENDGRID_FROM_EMAIL"
	EnvSendGridFromName    = "SENDGRID_FROM_NAME"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvTrustProxy        = "TRUST_PROXY"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
