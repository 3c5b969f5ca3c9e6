package constants

import "time"

const (
	DefaultPollInterval = 30 * time.Second
	MinPollInterval     = 5 * time.Second
	DefaultSnapshotTTL  = 1 * time.Minute
	RefreshConcurrency  = 4
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	RefreshTimeout     = 2 * time.Minute
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	ActionLogLimit = 50
)
