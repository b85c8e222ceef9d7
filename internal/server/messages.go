package server

import (
	"ranked-typing/internal/domain"
	"time"
)

type JoinQueueRequest struct {
	UID string `json:"uid"`
}

// MatchResponse answers JoinQueue and PollPairing. Only Status is set while
// the player is still waiting.
type MatchResponse struct {
	Status       string   `json:"status"`
	MatchID      string   `json:"match_id,omitempty"`
	WordListSeed string   `json:"word_list_seed,omitempty"`
	OpponentUID  string   `json:"opponent_uid,omitempty"`
	WordList     []string `json:"word_list,omitempty"`
}

type LeaveQueueRequest struct {
	UID string `json:"uid"`
}

type LeaveQueueResponse struct {
	OK bool `json:"ok"`
}

type QueueStatusRequest struct{}

type QueueStatusResponse struct {
	Entries []QueueEntry `json:"entries"`
}

type QueueEntry struct {
	UID        string    `json:"uid"`
	Rating     float64   `json:"rating"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type PollPairingRequest struct {
	UID string `json:"uid"`
}

type SubmitMatchResultRequest struct {
	MatchID        string              `json:"match_id"`
	PlayerUID      string              `json:"player_uid"`
	PlayerResult   domain.PlayerResult `json:"player_result"`
	OpponentUID    string              `json:"opponent_uid"`
	OpponentResult domain.PlayerResult `json:"opponent_result"`
	WordListSeed   string              `json:"word_list_seed"`
}

type SubmitMatchResultResponse struct {
	PlayerRatingChange   float64 `json:"player_rating_change"`
	OpponentRatingChange float64 `json:"opponent_rating_change"`
	NewPlayerRating      float64 `json:"new_player_rating"`
	NewOpponentRating    float64 `json:"new_opponent_rating"`
	WinnerUID            string  `json:"winner_uid"`
	IsValid              bool    `json:"is_valid"`
	RatingApplied        bool    `json:"rating_applied"`
}

type LeaderboardRequest struct {
	Limit int `json:"limit"`
}

type LeaderboardResponse struct {
	Players []PlayerProfile `json:"players"`
}

type PlayerProfile struct {
	UID         string  `json:"uid"`
	Rating      float64 `json:"rating"`
	RankTier    string  `json:"rank_tier"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	KFactor     float64 `json:"k_factor,omitempty"`
	LastMatchAt int64   `json:"last_match_at,omitempty"`
}

type PlayerStatsRequest struct {
	UID string `json:"uid"`
}

type PlayerStatsResponse struct {
	Profile      PlayerProfile  `json:"profile"`
	MatchHistory []HistoryEntry `json:"match_history"`
}

type HistoryEntry struct {
	MatchID        string              `json:"match_id"`
	OpponentUID    string              `json:"opponent_uid"`
	RatingBefore   float64             `json:"rating_before"`
	RatingAfter    float64             `json:"rating_after"`
	RatingChange   float64             `json:"rating_change"`
	Outcome        string              `json:"outcome"`
	PlayerResult   domain.PlayerResult `json:"player_result"`
	OpponentResult domain.PlayerResult `json:"opponent_result"`
	WordListSeed   string              `json:"word_list_seed"`
	PlayedAt       int64               `json:"played_at"`
	IsValid        bool                `json:"is_valid"`
	RatingApplied  bool                `json:"rating_applied"`
}

type WordListRequest struct {
	Seed string `json:"seed"`
}

type WordListResponse struct {
	Words []string `json:"words"`
}
