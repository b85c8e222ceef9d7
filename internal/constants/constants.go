package constants

import "time"

const (
	QueueEntryTTL      = 5 * time.Minute
	QueueSweepInterval = 30 * time.Second
	DecayInterval      = 24 * time.Hour
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	SweepTimeout       = 1 * time.Minute
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// ratings within this distance (inclusive) are eligible opponents
	MatchmakingRatingBand = 100
	MatchmakingCandidates = 50
)

const (
	LeaderboardDefaultLimit = 100
	LeaderboardMaxLimit     = 500
	MatchHistoryLimit       = 20
	DefaultWordCount        = 50
)

const (
	ResultMaxAttempts = 5
	ResultRetryBase   = 10 * time.Millisecond
)
