package service

import (
	"context"
	"fmt"
	"ranked-typing/internal/rating"
	"time"

	"github.com/rs/zerolog"
)

type DecayStore interface {
	ApplyDecay(ctx context.Context, cutoff int64, amount float64) (int64, error)
}

type DecayRecorder interface {
	PlayersDecayed(n int64)
}

type DecayService struct {
	players  DecayStore
	recorder DecayRecorder
	logger   zerolog.Logger
}

func NewDecayService(players DecayStore, recorder DecayRecorder, logger zerolog.Logger) *DecayService {
	return &DecayService{players: players, recorder: recorder, logger: logger}
}

// Apply lowers the rating of every player whose last match is older than the
// inactivity window at now.
func (s *DecayService) Apply(ctx context.Context, now time.Time) (int64, error) {
	cutoff := rating.DecayCutoff(now)

	affected, err := s.players.ApplyDecay(ctx, cutoff, rating.DecayAmount)
	if err != nil {
		s.logger.Error().Err(err).Int64("cutoff", cutoff).Msg("decay sweep failed")
		return 0, fmt.Errorf("failed to decay inactive players: %w", err)
	}

	s.recorder.PlayersDecayed(affected)
	s.logger.Info().Int64("affected", affected).Int64("cutoff", cutoff).Msg("rating decay applied")
	return affected, nil
}
