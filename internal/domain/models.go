package domain

import (
	"time"
)

// DrawUID is stored in place of a winner and loser uid when a match is drawn.
const DrawUID = "draw"

type Player struct {
	ID          int64
	UID         string
	Rating      float64
	GamesPlayed int
	Wins        int
	Losses      int
	KFactor     float64
	LastMatchAt int64 // epoch millis, 0 if never played
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PlayerUpdate lists every field a match result may change on a player.
// ExpectedVersion must match the stored version for the write to land.
type PlayerUpdate struct {
	UID             string
	ExpectedVersion int64
	Rating          float64
	GamesPlayed     int
	Wins            int
	Losses          int
	KFactor         float64
	LastMatchAt     int64
}

type QueueEntry struct {
	UID        string    `json:"uid"`
	Rating     float64   `json:"rating"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Pairing is a formed match waiting to be picked up by its players.
type Pairing struct {
	MatchID   string
	Seed      string
	Players   [2]string
	CreatedAt time.Time
}

// Opponent returns the other player of the pairing.
func (p *Pairing) Opponent(uid string) string {
	if p.Players[0] == uid {
		return p.Players[1]
	}
	return p.Players[0]
}

type PlayerResult struct {
	WPM         float64  `json:"wpm" validate:"gt=0"`
	Accuracy    float64  `json:"accuracy" validate:"gt=0,lte=100"`
	RawWPM      float64  `json:"raw_wpm" validate:"gte=0"`
	Consistency float64  `json:"consistency" validate:"gte=0"`
	Duration    float64  `json:"duration" validate:"gte=0"`
	Wordlist    []string `json:"wordlist"`
}

type MatchRecord struct {
	MatchID             string
	Player1UID          string
	Player2UID          string
	Player1RatingBefore float64
	Player2RatingBefore float64
	Player1RatingAfter  float64
	Player2RatingAfter  float64
	WinnerUID           string // DrawUID on a draw
	LoserUID            string // DrawUID on a draw
	Player1Result       PlayerResult
	Player2Result       PlayerResult
	WordListSeed        string
	PlayedAt            int64 // epoch millis
	IsValid             bool
	RatingApplied       bool
	CreatedAt           time.Time
}

// IsDraw reports whether the record holds the draw sentinel.
func (m *MatchRecord) IsDraw() bool {
	return m.WinnerUID == DrawUID
}
