// Package matchmaking pairs queued players of comparable rating.
//
// The queue is a single object guarding its entries and pending pairings with
// one mutex. Candidate lookups against the player store run outside the lock;
// claiming two entries and removing them happens in one locked step, so two
// concurrent searches can never claim the same opponent.
package matchmaking

import (
	"context"
	"fmt"
	"ranked-typing/internal/constants"
	"ranked-typing/internal/domain"
	"sort"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// PlayerSource is the slice of the player store the queue needs.
type PlayerSource interface {
	GetOrCreate(ctx context.Context, uid string) (*domain.Player, error)
	FindCandidates(ctx context.Context, center, band float64, excludeUID string, limit int) ([]domain.Player, error)
}

// Recorder receives queue events; metrics.Metrics implements it.
type Recorder interface {
	QueueSize(n int)
	PairingFormed()
	EntriesExpired(n int)
}

type Status string

const (
	StatusWaiting Status = "waiting"
	StatusMatched Status = "matched"
)

type JoinResult struct {
	Status  Status
	Pairing *domain.Pairing
}

type Queue struct {
	players  PlayerSource
	recorder Recorder
	logger   zerolog.Logger
	ttl      time.Duration
	now      func() time.Time
	newID    func() (string, error)

	mu       sync.Mutex
	entries  map[string]domain.QueueEntry
	pairings map[string]*domain.Pairing // keyed by the uid that has not seen it yet
}

func NewQueue(players PlayerSource, recorder Recorder, ttl time.Duration, logger zerolog.Logger) *Queue {
	return &Queue{
		players:  players,
		recorder: recorder,
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
		newID:    func() (string, error) { return gonanoid.New() },
		entries:  make(map[string]domain.QueueEntry),
		pairings: make(map[string]*domain.Pairing),
	}
}

// Join replaces any previous entry of uid with a fresh one and immediately
// looks for an opponent.
func (q *Queue) Join(ctx context.Context, uid string) (*JoinResult, error) {
	player, err := q.players.GetOrCreate(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", uid, err)
	}

	q.mu.Lock()
	// an opponent may already have paired with uid; hand that out instead
	if pending, ok := q.pairings[uid]; ok {
		delete(q.pairings, uid)
		q.mu.Unlock()
		return &JoinResult{Status: StatusMatched, Pairing: pending}, nil
	}
	q.entries[uid] = domain.QueueEntry{UID: uid, Rating: player.Rating, EnqueuedAt: q.now()}
	size := len(q.entries)
	q.mu.Unlock()

	q.recorder.QueueSize(size)
	q.logger.Info().Str("uid", uid).Float64("rating", player.Rating).Int("queue_size", size).Msg("player joined queue")

	pairing, err := q.FindMatch(ctx, uid)
	if err != nil {
		return nil, err
	}
	if pairing == nil {
		// a concurrent search may have claimed uid in the meantime
		if pending := q.Pairing(uid); pending != nil {
			return &JoinResult{Status: StatusMatched, Pairing: pending}, nil
		}
		return &JoinResult{Status: StatusWaiting}, nil
	}
	return &JoinResult{Status: StatusMatched, Pairing: pairing}, nil
}

// Leave removes uid from the queue. Leaving twice is a no-op.
func (q *Queue) Leave(uid string) {
	q.mu.Lock()
	_, ok := q.entries[uid]
	delete(q.entries, uid)
	size := len(q.entries)
	q.mu.Unlock()

	if ok {
		q.recorder.QueueSize(size)
		q.logger.Info().Str("uid", uid).Int("queue_size", size).Msg("player left queue")
	}
}

// FindMatch pairs uid with the first store candidate, within the rating band,
// that is queued too. It returns nil without error when uid is not queued or
// no candidate is waiting; uid then stays queued.
func (q *Queue) FindMatch(ctx context.Context, uid string) (*domain.Pairing, error) {
	if !q.queued(uid) {
		return nil, nil
	}

	player, err := q.players.GetOrCreate(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", uid, err)
	}

	candidates, err := q.players.FindCandidates(ctx, player.Rating, constants.MatchmakingRatingBand, uid, constants.MatchmakingCandidates)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates for %s: %w", uid, err)
	}

	pairing, err := q.claim(uid, candidates)
	if err != nil {
		return nil, err
	}
	if pairing == nil {
		q.logger.Debug().Str("uid", uid).Int("candidates", len(candidates)).Msg("no queued opponent in range")
		return nil, nil
	}

	q.recorder.PairingFormed()
	q.logger.Info().
		Str("match_id", pairing.MatchID).
		Str("player1", pairing.Players[0]).
		Str("player2", pairing.Players[1]).
		Msg("match found")
	return pairing, nil
}

// claim is the only place entries leave the queue because of a pairing.
// Ids are only generated once an opponent is found.
func (q *Queue) claim(uid string, candidates []domain.Player) (*domain.Pairing, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.entries[uid]; !ok {
		return nil, nil
	}

	for _, c := range candidates {
		if c.UID == uid {
			continue
		}
		if _, ok := q.entries[c.UID]; !ok {
			continue
		}

		matchID, err := q.newID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate match id: %w", err)
		}
		seed, err := q.newID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate word list seed: %w", err)
		}

		delete(q.entries, uid)
		delete(q.entries, c.UID)

		pairing := &domain.Pairing{
			MatchID:   matchID,
			Seed:      seed,
			Players:   [2]string{uid, c.UID},
			CreatedAt: q.now(),
		}
		q.pairings[c.UID] = pairing
		q.recorder.QueueSize(len(q.entries))
		return pairing, nil
	}
	return nil, nil
}

// Pairing hands out, once, the pairing formed on behalf of uid by its
// opponent's search.
func (q *Queue) Pairing(uid string) *domain.Pairing {
	q.mu.Lock()
	defer q.mu.Unlock()

	p, ok := q.pairings[uid]
	if !ok {
		return nil
	}
	delete(q.pairings, uid)
	return p
}

// Status returns a copy of every entry, oldest first.
func (q *Queue) Status() []domain.QueueEntry {
	q.mu.Lock()
	entries := lo.Values(q.entries)
	q.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].EnqueuedAt.Equal(entries[j].EnqueuedAt) {
			return entries[i].UID < entries[j].UID
		}
		return entries[i].EnqueuedAt.Before(entries[j].EnqueuedAt)
	})
	return entries
}

// SweepExpired drops entries and unclaimed pairings older than the ttl.
func (q *Queue) SweepExpired() int {
	cutoff := q.now().Add(-q.ttl)

	q.mu.Lock()
	expired := lo.Filter(lo.Values(q.entries), func(e domain.QueueEntry, _ int) bool {
		return e.EnqueuedAt.Before(cutoff)
	})
	for _, e := range expired {
		delete(q.entries, e.UID)
	}
	for uid, p := range q.pairings {
		if p.CreatedAt.Before(cutoff) {
			delete(q.pairings, uid)
		}
	}
	size := len(q.entries)
	q.mu.Unlock()

	if len(expired) > 0 {
		q.recorder.EntriesExpired(len(expired))
		q.recorder.QueueSize(size)
		q.logger.Info().
			Strs("uids", lo.Map(expired, func(e domain.QueueEntry, _ int) string { return e.UID })).
			Int("queue_size", size).
			Msg("expired stale queue entries")
	}
	return len(expired)
}

// Close empties the queue on shutdown.
func (q *Queue) Close() {
	q.mu.Lock()
	n := len(q.entries)
	q.entries = make(map[string]domain.QueueEntry)
	q.pairings = make(map[string]*domain.Pairing)
	q.mu.Unlock()

	q.recorder.QueueSize(0)
	q.logger.Info().Int("dropped", n).Msg("matchmaking queue closed")
}

func (q *Queue) queued(uid string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.entries[uid]
	return ok
}
