package service

import (
	"context"
	"fmt"
	"ranked-typing/internal/constants"
	"ranked-typing/internal/domain"
	"ranked-typing/internal/rating"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type ProfileStore interface {
	GetOrCreate(ctx context.Context, uid string) (*domain.Player, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.Player, error)
}

type HistoryStore interface {
	ListByPlayer(ctx context.Context, uid string, limit int) ([]domain.MatchRecord, error)
}

type RankedPlayer struct {
	domain.Player
	Tier string
}

type MatchOutcome string

const (
	OutcomeWin  MatchOutcome = "win"
	OutcomeLoss MatchOutcome = "loss"
	OutcomeDraw MatchOutcome = "draw"
)

// HistoryEntry is one past match seen from a single player's side.
type HistoryEntry struct {
	MatchID        string
	OpponentUID    string
	RatingBefore   float64
	RatingAfter    float64
	RatingChange   float64
	Outcome        MatchOutcome
	PlayerResult   domain.PlayerResult
	OpponentResult domain.PlayerResult
	WordListSeed   string
	PlayedAt       int64
	IsValid        bool
	RatingApplied  bool
}

type PlayerStats struct {
	Profile RankedPlayer
	History []HistoryEntry
}

type PlayerService struct {
	players ProfileStore
	matches HistoryStore
	logger  zerolog.Logger
}

func NewPlayerService(players ProfileStore, matches HistoryStore, logger zerolog.Logger) *PlayerService {
	return &PlayerService{players: players, matches: matches, logger: logger}
}

// Leaderboard returns the top players by rating. A non-positive limit means
// the default, anything above the maximum is capped.
func (s *PlayerService) Leaderboard(ctx context.Context, limit int) ([]RankedPlayer, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	switch {
	case limit <= 0:
		limit = constants.LeaderboardDefaultLimit
	case limit > constants.LeaderboardMaxLimit:
		limit = constants.LeaderboardMaxLimit
	}

	players, err := s.players.Leaderboard(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Msg("failed to load leaderboard")
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	ranked := make([]RankedPlayer, len(players))
	for i, p := range players {
		ranked[i] = withTier(p)
	}

	s.logger.Debug().Int("count", len(ranked)).Int("limit", limit).Msg("leaderboard loaded")
	return ranked, nil
}

// Stats returns the player's profile and recent matches, provisioning the
// player on first lookup.
func (s *PlayerService) Stats(ctx context.Context, uid string) (*PlayerStats, error) {
	if uid == "" {
		return nil, ErrMissingUID
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var (
		player  *domain.Player
		matches []domain.MatchRecord
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		player, err = s.players.GetOrCreate(gCtx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matches.ListByPlayer(gCtx, uid, constants.MatchHistoryLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("uid", uid).Msg("failed to load player stats")
		return nil, fmt.Errorf("failed to load stats for %s: %w", uid, err)
	}

	history := make([]HistoryEntry, 0, len(matches))
	for i := range matches {
		history = append(history, historyEntry(uid, &matches[i]))
	}

	return &PlayerStats{Profile: withTier(*player), History: history}, nil
}

func withTier(p domain.Player) RankedPlayer {
	return RankedPlayer{Player: p, Tier: rating.TierFor(p.Rating)}
}

func historyEntry(uid string, m *domain.MatchRecord) HistoryEntry {
	e := HistoryEntry{
		MatchID:       m.MatchID,
		WordListSeed:  m.WordListSeed,
		PlayedAt:      m.PlayedAt,
		IsValid:       m.IsValid,
		RatingApplied: m.RatingApplied,
	}

	if m.Player1UID == uid {
		e.OpponentUID = m.Player2UID
		e.RatingBefore, e.RatingAfter = m.Player1RatingBefore, m.Player1RatingAfter
		e.PlayerResult, e.OpponentResult = m.Player1Result, m.Player2Result
	} else {
		e.OpponentUID = m.Player1UID
		e.RatingBefore, e.RatingAfter = m.Player2RatingBefore, m.Player2RatingAfter
		e.PlayerResult, e.OpponentResult = m.Player2Result, m.Player1Result
	}
	e.RatingChange = e.RatingAfter - e.RatingBefore

	switch {
	case m.IsDraw():
		e.Outcome = OutcomeDraw
	case m.WinnerUID == uid:
		e.Outcome = OutcomeWin
	default:
		e.Outcome = OutcomeLoss
	}
	return e
}
