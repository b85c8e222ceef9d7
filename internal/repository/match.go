package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"ranked-typing/internal/db"
	"ranked-typing/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

type MatchRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
	now     func() time.Time
}

func NewMatchRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
		now:     time.Now,
	}
}

func (r *MatchRepository) Exists(ctx context.Context, matchID string) (bool, error) {
	count, err := r.queries.CountRankedMatchesByMatchID(ctx, matchID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MatchRepository) Get(ctx context.Context, matchID string) (*domain.MatchRecord, error) {
	row, err := r.queries.GetRankedMatchByMatchID(ctx, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainMatch(row)
}

// ApplyResult appends the match record and writes every player update in one
// transaction. Nothing is written if the match id is already recorded
// (ErrDuplicateMatch) or if any player's version moved (ErrVersionConflict).
func (r *MatchRepository) ApplyResult(ctx context.Context, record *domain.MatchRecord, updates ...domain.PlayerUpdate) error {
	params, err := toInsertParams(record, r.now())
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	if err := qtx.InsertRankedMatch(ctx, params); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateMatch
		}
		return fmt.Errorf("failed to insert match %s: %w", record.MatchID, err)
	}

	for _, u := range updates {
		affected, err := qtx.UpdatePlayerResult(ctx, db.UpdatePlayerResultParams{
			Rating:          u.Rating,
			GamesPlayed:     int64(u.GamesPlayed),
			Wins:            int64(u.Wins),
			Losses:          int64(u.Losses),
			KFactor:         u.KFactor,
			LastMatchAt:     u.LastMatchAt,
			UpdatedAt:       params.CreatedAt,
			Uid:             u.UID,
			ExpectedVersion: u.ExpectedVersion,
		})
		if err != nil {
			return fmt.Errorf("failed to update player %s: %w", u.UID, err)
		}
		if affected == 0 {
			r.logger.Debug().
				Str("match_id", record.MatchID).
				Str("uid", u.UID).
				Int64("expected_version", u.ExpectedVersion).
				Msg("player version moved, rolling back")
			return ErrVersionConflict
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match %s: %w", record.MatchID, err)
	}
	return nil
}

// ListByPlayer returns the most recent matches the player took part in.
func (r *MatchRepository) ListByPlayer(ctx context.Context, uid string, limit int) ([]domain.MatchRecord, error) {
	rows, err := r.queries.ListRankedMatchesByPlayer(ctx, db.ListRankedMatchesByPlayerParams{
		Uid:   uid,
		Limit: int64(limit),
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.MatchRecord, 0, len(rows))
	for _, row := range rows {
		m, err := toDomainMatch(row)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	return result, nil
}

func toInsertParams(m *domain.MatchRecord, now time.Time) (db.InsertRankedMatchParams, error) {
	p1, err := json.Marshal(m.Player1Result)
	if err != nil {
		return db.InsertRankedMatchParams{}, fmt.Errorf("failed to encode player1 result: %w", err)
	}
	p2, err := json.Marshal(m.Player2Result)
	if err != nil {
		return db.InsertRankedMatchParams{}, fmt.Errorf("failed to encode player2 result: %w", err)
	}

	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	return db.InsertRankedMatchParams{
		MatchID:             m.MatchID,
		Player1Uid:          m.Player1UID,
		Player2Uid:          m.Player2UID,
		Player1RatingBefore: m.Player1RatingBefore,
		Player2RatingBefore: m.Player2RatingBefore,
		Player1RatingAfter:  m.Player1RatingAfter,
		Player2RatingAfter:  m.Player2RatingAfter,
		WinnerUid:           m.WinnerUID,
		LoserUid:            m.LoserUID,
		Player1Result:       string(p1),
		Player2Result:       string(p2),
		WordListSeed:        m.WordListSeed,
		PlayedAt:            m.PlayedAt,
		IsValid:             m.IsValid,
		RatingApplied:       m.RatingApplied,
		CreatedAt:           createdAt,
	}, nil
}

func toDomainMatch(row db.RankedMatch) (*domain.MatchRecord, error) {
	m := &domain.MatchRecord{
		MatchID:             row.MatchID,
		Player1UID:          row.Player1Uid,
		Player2UID:          row.Player2Uid,
		Player1RatingBefore: row.Player1RatingBefore,
		Player2RatingBefore: row.Player2RatingBefore,
		Player1RatingAfter:  row.Player1RatingAfter,
		Player2RatingAfter:  row.Player2RatingAfter,
		WinnerUID:           row.WinnerUid,
		LoserUID:            row.LoserUid,
		WordListSeed:        row.WordListSeed,
		PlayedAt:            row.PlayedAt,
		IsValid:             row.IsValid,
		RatingApplied:       row.RatingApplied,
		CreatedAt:           row.CreatedAt,
	}
	if err := json.Unmarshal([]byte(row.Player1Result), &m.Player1Result); err != nil {
		return nil, fmt.Errorf("failed to decode player1 result of %s: %w", row.MatchID, err)
	}
	if err := json.Unmarshal([]byte(row.Player2Result), &m.Player2Result); err != nil {
		return nil, fmt.Errorf("failed to decode player2 result of %s: %w", row.MatchID, err)
	}
	return m, nil
}
