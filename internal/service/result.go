package service

import (
	"context"
	"errors"
	"fmt"
	"ranked-typing/internal/anticheat"
	"ranked-typing/internal/config"
	"ranked-typing/internal/constants"
	"ranked-typing/internal/domain"
	"ranked-typing/internal/rating"
	"ranked-typing/internal/repository"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

type PlayerStore interface {
	GetOrCreate(ctx context.Context, uid string) (*domain.Player, error)
}

type MatchStore interface {
	Exists(ctx context.Context, matchID string) (bool, error)
	ApplyResult(ctx context.Context, record *domain.MatchRecord, updates ...domain.PlayerUpdate) error
}

type ResultRecorder interface {
	MatchRecorded(outcome string, valid, ratingApplied bool)
	ResultFlagged(reason string)
}

// SubmitInput is one match's pair of results, submitted together.
type SubmitInput struct {
	MatchID        string `validate:"required"`
	PlayerUID      string `validate:"required"`
	PlayerResult   domain.PlayerResult
	OpponentUID    string `validate:"required,nefield=PlayerUID"`
	OpponentResult domain.PlayerResult
	WordListSeed   string `validate:"required"`
}

type SubmitOutcome struct {
	MatchID           string
	PlayerDelta       float64
	OpponentDelta     float64
	NewPlayerRating   float64
	NewOpponentRating float64
	WinnerUID         string // domain.DrawUID on a draw
	IsValid           bool
	RatingApplied     bool
}

type ResultService struct {
	players  PlayerStore
	matches  MatchStore
	recorder ResultRecorder
	validate *validator.Validate
	policy   config.FlaggedMatchPolicy
	logger   zerolog.Logger
	now      func() time.Time
	backoff  func() retry.Backoff
}

func NewResultService(players PlayerStore, matches MatchStore, recorder ResultRecorder, cfg *config.Config, logger zerolog.Logger) *ResultService {
	return &ResultService{
		players:  players,
		matches:  matches,
		recorder: recorder,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		policy:   cfg.FlaggedMatchPolicy,
		logger:   logger,
		now:      time.Now,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(constants.ResultMaxAttempts-1, retry.NewExponential(constants.ResultRetryBase))
		},
	}
}

// SubmitResult adjudicates a finished match and applies the rating change to
// both players in one transaction. A match id is applied at most once.
func (s *ResultService) SubmitResult(ctx context.Context, in SubmitInput) (*SubmitOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if err := s.validate.Struct(in); err != nil {
		s.logger.Warn().Err(err).Str("match_id", in.MatchID).Msg("rejected match result")
		return nil, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}

	exists, err := s.matches.Exists(ctx, in.MatchID)
	if err != nil {
		s.logger.Error().Err(err).Str("match_id", in.MatchID).Msg("failed to check match id")
		return nil, fmt.Errorf("failed to check match %s: %w", in.MatchID, err)
	}
	if exists {
		s.logger.Info().Str("match_id", in.MatchID).Msg("duplicate match submission")
		return nil, ErrDuplicateMatch
	}

	verdictA := anticheat.Validate(in.PlayerResult)
	verdictB := anticheat.Validate(in.OpponentResult)
	valid := anticheat.MatchValid(verdictA, verdictB)
	for uid, v := range map[string]anticheat.Verdict{in.PlayerUID: verdictA, in.OpponentUID: verdictB} {
		if !v.Valid {
			s.recorder.ResultFlagged(string(v.Reason))
			s.logger.Warn().
				Str("match_id", in.MatchID).
				Str("uid", uid).
				Str("reason", string(v.Reason)).
				Msg("result flagged by anti-cheat")
		}
	}

	apply := valid || s.policy == config.PolicyAdvisory
	outcome := DecideOutcome(in.PlayerResult, in.OpponentResult)

	var result *SubmitOutcome
	err = retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		var err error
		result, err = s.applyOnce(ctx, in, outcome, valid, apply)
		if errors.Is(err, repository.ErrVersionConflict) {
			s.logger.Debug().Str("match_id", in.MatchID).Msg("player changed concurrently, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
	if errors.Is(err, repository.ErrDuplicateMatch) {
		s.logger.Info().Str("match_id", in.MatchID).Msg("duplicate match submission")
		return nil, ErrDuplicateMatch
	}
	if err != nil {
		s.logger.Error().Err(err).Str("match_id", in.MatchID).Msg("failed to apply match result")
		return nil, fmt.Errorf("failed to apply match %s: %w", in.MatchID, err)
	}

	s.recorder.MatchRecorded(outcomeLabel(outcome), valid, apply)
	s.logger.Info().
		Str("match_id", in.MatchID).
		Str("winner", result.WinnerUID).
		Float64("player_delta", result.PlayerDelta).
		Float64("opponent_delta", result.OpponentDelta).
		Bool("valid", valid).
		Bool("rating_applied", apply).
		Msg("match result recorded")
	return result, nil
}

// applyOnce reads both players, computes the change and writes it. A
// concurrent write to either player surfaces as repository.ErrVersionConflict.
func (s *ResultService) applyOnce(ctx context.Context, in SubmitInput, outcome rating.Outcome, valid, apply bool) (*SubmitOutcome, error) {
	var a, b *domain.Player
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = s.players.GetOrCreate(gCtx, in.PlayerUID)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = s.players.GetOrCreate(gCtx, in.OpponentUID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}

	change := rating.Change{NewA: a.Rating, NewB: b.Rating}
	if apply {
		change = rating.Apply(a.Rating, a.KFactor, b.Rating, b.KFactor, outcome)
	}

	winner, loser := domain.DrawUID, domain.DrawUID
	switch outcome.ScoreA {
	case rating.Win:
		winner, loser = in.PlayerUID, in.OpponentUID
	case rating.Loss:
		winner, loser = in.OpponentUID, in.PlayerUID
	}

	playedAt := s.now().UnixMilli()
	record := &domain.MatchRecord{
		MatchID:             in.MatchID,
		Player1UID:          in.PlayerUID,
		Player2UID:          in.OpponentUID,
		Player1RatingBefore: a.Rating,
		Player2RatingBefore: b.Rating,
		Player1RatingAfter:  change.NewA,
		Player2RatingAfter:  change.NewB,
		WinnerUID:           winner,
		LoserUID:            loser,
		Player1Result:       in.PlayerResult,
		Player2Result:       in.OpponentResult,
		WordListSeed:        in.WordListSeed,
		PlayedAt:            playedAt,
		IsValid:             valid,
		RatingApplied:       apply,
	}

	var updates []domain.PlayerUpdate
	if apply {
		updates = []domain.PlayerUpdate{
			playerUpdate(a, change.NewA, outcome.ScoreA, playedAt),
			playerUpdate(b, change.NewB, outcome.ScoreB, playedAt),
		}
	}

	if err := s.matches.ApplyResult(ctx, record, updates...); err != nil {
		return nil, err
	}

	return &SubmitOutcome{
		MatchID:           in.MatchID,
		PlayerDelta:       change.DeltaA,
		OpponentDelta:     change.DeltaB,
		NewPlayerRating:   change.NewA,
		NewOpponentRating: change.NewB,
		WinnerUID:         winner,
		IsValid:           valid,
		RatingApplied:     apply,
	}, nil
}

func playerUpdate(p *domain.Player, newRating float64, score rating.Score, playedAt int64) domain.PlayerUpdate {
	u := domain.PlayerUpdate{
		UID:             p.UID,
		ExpectedVersion: p.Version,
		Rating:          newRating,
		GamesPlayed:     p.GamesPlayed + 1,
		Wins:            p.Wins,
		Losses:          p.Losses,
		LastMatchAt:     playedAt,
	}
	switch score {
	case rating.Win:
		u.Wins++
	case rating.Loss:
		u.Losses++
	}
	u.KFactor = rating.NextKFactor(p.KFactor, u.GamesPlayed)
	return u
}

func outcomeLabel(o rating.Outcome) string {
	if o.IsDraw() {
		return "draw"
	}
	return "decisive"
}
