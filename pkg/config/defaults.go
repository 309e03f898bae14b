package config

import "time"

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"

	LockLocal = "local"
	LockMongo = "mongo"

	NotifierLog      = "log"
	NotifierSendGrid = "sendgrid"
	NotifierKafka    = "kafka"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "openspace"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultStorageDriver     = StorageMongo

	DefaultLockMode = LockLocal
	DefaultLockTTL  = 10 * time.Second
	DefaultLockWait = 3 * time.Second
	DefaultTimeZone = "Local"

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultCORSAllowedOrigins = "*"

	DefaultNotifier            = NotifierLog
	DefaultNotificationTimeout = 10 * time.Second
	DefaultNotificationsTopic  = "openspace.notifications"
	DefaultSendGridFromName    = "Open Space Booking"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute
	DefaultTrustProxy        = false

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
	minJWTSecretLength     = 16
)
