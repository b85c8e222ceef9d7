package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ranked-typing/internal/db"
	"ranked-typing/internal/domain"
	"ranked-typing/internal/rating"
	"time"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
	now     func() time.Time
}

func NewPlayerRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
		now:     time.Now,
	}
}

func (r *PlayerRepository) Get(ctx context.Context, uid string) (*domain.Player, error) {
	player, err := r.queries.GetPlayerByUID(ctx, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainPlayer(player), nil
}

// GetOrCreate returns the player, provisioning it with the default rating and
// the new-player K-factor on first reference. Concurrent first references
// converge on the same row.
func (r *PlayerRepository) GetOrCreate(ctx context.Context, uid string) (*domain.Player, error) {
	player, err := r.Get(ctx, uid)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, ErrNotFound) {
		r.logger.Error().Err(err).Str("uid", uid).Msg("failed to get player")
		return nil, err
	}

	now := r.now()
	err = r.queries.InsertPlayerIfAbsent(ctx, db.InsertPlayerIfAbsentParams{
		Uid:       uid,
		Rating:    rating.DefaultRating,
		KFactor:   rating.KFactorNew,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("uid", uid).Msg("failed to create player")
		return nil, fmt.Errorf("failed to create player %s: %w", uid, err)
	}

	r.logger.Info().Str("uid", uid).Msg("provisioned ranked player")
	return r.Get(ctx, uid)
}

// FindCandidates returns up to limit players other than excludeUID whose
// rating lies in [center-band, center+band], in insertion order.
func (r *PlayerRepository) FindCandidates(ctx context.Context, center, band float64, excludeUID string, limit int) ([]domain.Player, error) {
	players, err := r.queries.FindPlayersInRatingRange(ctx, db.FindPlayersInRatingRangeParams{
		ExcludeUid: excludeUID,
		MinRating:  center - band,
		MaxRating:  center + band,
		Limit:      int64(limit),
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.Player, len(players))
	for i, p := range players {
		result[i] = *toDomainPlayer(p)
	}
	return result, nil
}

func (r *PlayerRepository) Leaderboard(ctx context.Context, limit int) ([]domain.Player, error) {
	players, err := r.queries.ListLeaderboard(ctx, int64(limit))
	if err != nil {
		return nil, err
	}

	result := make([]domain.Player, len(players))
	for i, p := range players {
		result[i] = *toDomainPlayer(p)
	}
	return result, nil
}

// ApplyDecay lowers every player inactive since cutoff (epoch millis) by
// amount, never below zero. A player who never finished a match has
// last_match_at 0 and counts as inactive.
func (r *PlayerRepository) ApplyDecay(ctx context.Context, cutoff int64, amount float64) (int64, error) {
	affected, err := r.queries.DecayInactivePlayers(ctx, db.DecayInactivePlayersParams{
		Amount:    amount,
		UpdatedAt: r.now(),
		Cutoff:    cutoff,
	})
	if err != nil {
		r.logger.Error().Err(err).Int64("cutoff", cutoff).Msg("failed to apply rating decay")
		return 0, fmt.Errorf("failed to apply rating decay: %w", err)
	}
	return affected, nil
}

func toDomainPlayer(p db.Player) *domain.Player {
	return &domain.Player{
		ID:          p.ID,
		UID:         p.Uid,
		Rating:      p.Rating,
		GamesPlayed: int(p.GamesPlayed),
		Wins:        int(p.Wins),
		Losses:      int(p.Losses),
		KFactor:     p.KFactor,
		LastMatchAt: p.LastMatchAt,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
