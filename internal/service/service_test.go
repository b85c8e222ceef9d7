package service

import (
	"context"
	"errors"
	"fmt"
	"ranked-typing/internal/config"
	"ranked-typing/internal/domain"
	"ranked-typing/internal/rating"
	"ranked-typing/internal/repository"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory PlayerStore and MatchStore with the same
// version and match id rules as the SQLite repositories.
type memStore struct {
	mu        sync.Mutex
	players   map[string]*domain.Player
	matches   []domain.MatchRecord
	conflicts int // ApplyResult calls to fail with a version conflict
	applies   int
	decayed   int64
}

func newMemStore() *memStore {
	return &memStore{players: make(map[string]*domain.Player)}
}

func (m *memStore) put(p domain.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[p.UID] = &p
}

func (m *memStore) player(uid string) domain.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.players[uid]
}

func (m *memStore) GetOrCreate(_ context.Context, uid string) (*domain.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[uid]
	if !ok {
		p = &domain.Player{UID: uid, Rating: rating.DefaultRating, KFactor: rating.KFactorNew}
		m.players[uid] = p
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) Leaderboard(_ context.Context, limit int) ([]domain.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Player
	for _, p := range m.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Exists(_ context.Context, matchID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.matches {
		if r.MatchID == matchID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ApplyResult(_ context.Context, record *domain.MatchRecord, updates ...domain.PlayerUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applies++
	for _, r := range m.matches {
		if r.MatchID == record.MatchID {
			return repository.ErrDuplicateMatch
		}
	}
	if m.conflicts > 0 {
		m.conflicts--
		return repository.ErrVersionConflict
	}
	for _, u := range updates {
		if m.players[u.UID].Version != u.ExpectedVersion {
			return repository.ErrVersionConflict
		}
	}
	for _, u := range updates {
		p := m.players[u.UID]
		p.Rating, p.GamesPlayed, p.Wins, p.Losses = u.Rating, u.GamesPlayed, u.Wins, u.Losses
		p.KFactor, p.LastMatchAt = u.KFactor, u.LastMatchAt
		p.Version++
	}
	m.matches = append(m.matches, *record)
	return nil
}

func (m *memStore) ListByPlayer(_ context.Context, uid string, limit int) ([]domain.MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.MatchRecord
	for i := len(m.matches) - 1; i >= 0 && len(out) < limit; i-- {
		r := m.matches[i]
		if r.Player1UID == uid || r.Player2UID == uid {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ApplyDecay(_ context.Context, cutoff int64, amount float64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.players {
		if p.LastMatchAt < cutoff && p.Rating > 0 {
			p.Rating = max(p.Rating-amount, 0)
			n++
		}
	}
	return n, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	recorded []string
	flagged  []string
	decayed  int64
}

func (r *fakeRecorder) MatchRecorded(outcome string, valid, applied bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded = append(r.recorded, fmt.Sprintf("%s/%t/%t", outcome, valid, applied))
}

func (r *fakeRecorder) ResultFlagged(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flagged = append(r.flagged, reason)
}

func (r *fakeRecorder) PlayersDecayed(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decayed += n
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newResultService(store *memStore, policy config.FlaggedMatchPolicy) (*ResultService, *fakeRecorder) {
	rec := &fakeRecorder{}
	s := NewResultService(store, store, rec, &config.Config{FlaggedMatchPolicy: policy}, zerolog.Nop())
	s.now = func() time.Time { return fixedNow }
	s.backoff = func() retry.Backoff {
		return retry.WithMaxRetries(4, retry.NewConstant(time.Millisecond))
	}
	return s, rec
}

func result(wpm, acc float64) domain.PlayerResult {
	return domain.PlayerResult{WPM: wpm, Accuracy: acc, RawWPM: wpm + 3, Consistency: 75, Duration: 30, Wordlist: []string{"alpha", "beta"}}
}

func input(matchID string, a, b domain.PlayerResult) SubmitInput {
	return SubmitInput{
		MatchID:        matchID,
		PlayerUID:      "a",
		PlayerResult:   a,
		OpponentUID:    "b",
		OpponentResult: b,
		WordListSeed:   "seed",
	}
}

func TestDecideOutcome(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.PlayerResult
		want rating.Outcome
	}{
		{"faster wins", result(90, 90), result(80, 99), rating.Outcome{ScoreA: rating.Win, ScoreB: rating.Loss}},
		{"slower loses", result(70, 99), result(80, 90), rating.Outcome{ScoreA: rating.Loss, ScoreB: rating.Win}},
		{"accuracy breaks wpm tie", result(80, 97), result(80, 96), rating.Outcome{ScoreA: rating.Win, ScoreB: rating.Loss}},
		{"accuracy tie break loses", result(80, 95), result(80, 96), rating.Outcome{ScoreA: rating.Loss, ScoreB: rating.Win}},
		{"full tie is a draw", result(80, 96), result(80, 96), rating.Outcome{ScoreA: rating.Draw, ScoreB: rating.Draw}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecideOutcome(tt.a, tt.b))
		})
	}
}

func TestSubmitResultEndToEnd(t *testing.T) {
	store := newMemStore()
	store.put(domain.Player{UID: "a", Rating: 1000, GamesPlayed: 5, Wins: 3, Losses: 2, KFactor: 32})
	store.put(domain.Player{UID: "b", Rating: 1050, GamesPlayed: 12, Wins: 6, Losses: 6, KFactor: 16})
	s, rec := newResultService(store, config.PolicyAdvisory)

	out, err := s.SubmitResult(context.Background(), input("m1", result(95, 97), result(88, 99)))
	require.NoError(t, err)

	assert.Equal(t, "a", out.WinnerUID)
	assert.InDelta(t, 18.28, out.PlayerDelta, 0.01)
	assert.InDelta(t, -9.14, out.OpponentDelta, 0.01)
	assert.InDelta(t, 1018.28, out.NewPlayerRating, 0.01)
	assert.InDelta(t, 1040.86, out.NewOpponentRating, 0.01)
	assert.True(t, out.IsValid)
	assert.True(t, out.RatingApplied)

	a := store.player("a")
	assert.Equal(t, 6, a.GamesPlayed)
	assert.Equal(t, 4, a.Wins)
	assert.Equal(t, 2, a.Losses)
	assert.Equal(t, 32.0, a.KFactor)
	assert.Equal(t, fixedNow.UnixMilli(), a.LastMatchAt)

	b := store.player("b")
	assert.Equal(t, 13, b.GamesPlayed)
	assert.Equal(t, 6, b.Wins)
	assert.Equal(t, 7, b.Losses)
	assert.Equal(t, 16.0, b.KFactor)

	require.Len(t, store.matches, 1)
	m := store.matches[0]
	assert.Equal(t, 1000.0, m.Player1RatingBefore)
	assert.Equal(t, out.NewOpponentRating, m.Player2RatingAfter)
	assert.Equal(t, "b", m.LoserUID)
	assert.Equal(t, "seed", m.WordListSeed)
	assert.Equal(t, []string{"decisive/true/true"}, rec.recorded)
}

func TestSubmitResultDraw(t *testing.T) {
	store := newMemStore()
	store.put(domain.Player{UID: "a", Rating: 1200, GamesPlayed: 20, Wins: 10, Losses: 9, KFactor: 16})
	store.put(domain.Player{UID: "b", Rating: 1000, GamesPlayed: 20, Wins: 10, Losses: 9, KFactor: 16})
	s, _ := newResultService(store, config.PolicyAdvisory)

	out, err := s.SubmitResult(context.Background(), input("draw-1", result(80, 96), result(80, 96)))
	require.NoError(t, err)

	assert.Equal(t, domain.DrawUID, out.WinnerUID)
	// the favourite loses rating on a draw, the underdog gains it
	assert.Less(t, out.PlayerDelta, 0.0)
	assert.Greater(t, out.OpponentDelta, 0.0)

	for _, uid := range []string{"a", "b"} {
		p := store.player(uid)
		assert.Equal(t, 21, p.GamesPlayed, uid)
		assert.Equal(t, 10, p.Wins, uid)
		assert.Equal(t, 9, p.Losses, uid)
	}
	assert.True(t, store.matches[0].IsDraw())
	assert.Equal(t, domain.DrawUID, store.matches[0].LoserUID)
}

func TestSubmitResultKFactorTransition(t *testing.T) {
	store := newMemStore()
	store.put(domain.Player{UID: "a", Rating: 1000, GamesPlayed: 9, KFactor: 32})
	store.put(domain.Player{UID: "b", Rating: 1000, GamesPlayed: 3, KFactor: 32})
	s, _ := newResultService(store, config.PolicyAdvisory)

	out, err := s.SubmitResult(context.Background(), input("k-1", result(60, 90), result(50, 90)))
	require.NoError(t, err)

	// the change of this match still uses the old factor
	assert.InDelta(t, 16.0, out.PlayerDelta, 1e-9)
	assert.Equal(t, 16.0, store.player("a").KFactor)
	assert.Equal(t, 32.0, store.player("b").KFactor)
}

func TestSubmitResultProvisionsUnknownPlayers(t *testing.T) {
	store := newMemStore()
	s, _ := newResultService(store, config.PolicyAdvisory)

	out, err := s.SubmitResult(context.Background(), input("new-1", result(60, 90), result(50, 90)))
	require.NoError(t, err)
	assert.InDelta(t, 16.0, out.PlayerDelta, 1e-9)
	assert.InDelta(t, -16.0, out.OpponentDelta, 1e-9)
}

func TestSubmitResultValidation(t *testing.T) {
	valid := input("v", result(60, 90), result(50, 90))
	tests := []struct {
		name   string
		mutate func(*SubmitInput)
	}{
		{"missing match id", func(in *SubmitInput) { in.MatchID = "" }},
		{"missing player uid", func(in *SubmitInput) { in.PlayerUID = "" }},
		{"missing opponent uid", func(in *SubmitInput) { in.OpponentUID = "" }},
		{"same player twice", func(in *SubmitInput) { in.OpponentUID = in.PlayerUID }},
		{"missing seed", func(in *SubmitInput) { in.WordListSeed = "" }},
		{"zero wpm", func(in *SubmitInput) { in.PlayerResult.WPM = 0 }},
		{"negative wpm", func(in *SubmitInput) { in.OpponentResult.WPM = -4 }},
		{"zero accuracy", func(in *SubmitInput) { in.OpponentResult.Accuracy = 0 }},
		{"accuracy above 100", func(in *SubmitInput) { in.PlayerResult.Accuracy = 100.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			s, rec := newResultService(store, config.PolicyAdvisory)

			in := valid
			tt.mutate(&in)
			_, err := s.SubmitResult(context.Background(), in)

			assert.ErrorIs(t, err, ErrInvalidResult)
			assert.Empty(t, store.players, "no player may be provisioned")
			assert.Empty(t, store.matches)
			assert.Empty(t, rec.recorded)
		})
	}
}

func TestSubmitResultRejectsDuplicateMatchID(t *testing.T) {
	store := newMemStore()
	s, _ := newResultService(store, config.PolicyAdvisory)
	ctx := context.Background()

	first, err := s.SubmitResult(ctx, input("dup", result(60, 90), result(50, 90)))
	require.NoError(t, err)
	before := []domain.Player{store.player("a"), store.player("b")}

	_, err = s.SubmitResult(ctx, input("dup", result(60, 90), result(50, 90)))
	assert.ErrorIs(t, err, ErrDuplicateMatch)

	after := []domain.Player{store.player("a"), store.player("b")}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("players changed on duplicate submission (-before +after):\n%s", diff)
	}
	assert.Len(t, store.matches, 1)
	assert.Equal(t, first.NewPlayerRating, store.player("a").Rating)
}

// racingStore reports the match as unseen, like a concurrent duplicate
// that passed the pre-check before the first one committed.
type racingStore struct{ *memStore }

func (racingStore) Exists(context.Context, string) (bool, error) { return false, nil }

func TestSubmitResultConcurrentDuplicateFailsInsideTransaction(t *testing.T) {
	store := newMemStore()
	s, _ := newResultService(store, config.PolicyAdvisory)
	s.matches = racingStore{store}
	ctx := context.Background()

	_, err := s.SubmitResult(ctx, input("race", result(60, 90), result(50, 90)))
	require.NoError(t, err)
	_, err = s.SubmitResult(ctx, input("race", result(60, 90), result(50, 90)))
	assert.ErrorIs(t, err, ErrDuplicateMatch)
	assert.Equal(t, 1, store.player("a").GamesPlayed)
}

func TestSubmitResultFlaggedMatchPolicy(t *testing.T) {
	cheat := result(310, 99)
	honest := result(80, 95)

	t.Run("advisory applies ratings", func(t *testing.T) {
		store := newMemStore()
		s, rec := newResultService(store, config.PolicyAdvisory)

		out, err := s.SubmitResult(context.Background(), input("adv", cheat, honest))
		require.NoError(t, err)
		assert.False(t, out.IsValid)
		assert.True(t, out.RatingApplied)
		assert.Equal(t, 1, store.player("a").GamesPlayed)
		assert.False(t, store.matches[0].IsValid)
		assert.Equal(t, []string{"inhuman_wpm"}, rec.flagged)
	})

	t.Run("withhold leaves players untouched", func(t *testing.T) {
		store := newMemStore()
		s, rec := newResultService(store, config.PolicyWithhold)

		out, err := s.SubmitResult(context.Background(), input("wh", honest, result(160, 100)))
		require.NoError(t, err)
		assert.False(t, out.IsValid)
		assert.False(t, out.RatingApplied)
		assert.Zero(t, out.PlayerDelta)
		assert.Zero(t, out.OpponentDelta)

		for _, uid := range []string{"a", "b"} {
			p := store.player(uid)
			assert.Equal(t, float64(rating.DefaultRating), p.Rating, uid)
			assert.Zero(t, p.GamesPlayed, uid)
			assert.Zero(t, p.Version, uid)
		}

		require.Len(t, store.matches, 1)
		m := store.matches[0]
		assert.False(t, m.RatingApplied)
		assert.Equal(t, m.Player1RatingBefore, m.Player1RatingAfter)
		assert.Equal(t, "b", m.WinnerUID)
		assert.Equal(t, []string{"perfect_accuracy_at_speed"}, rec.flagged)
		assert.Equal(t, []string{"decisive/false/false"}, rec.recorded)
	})

	t.Run("withhold still rates valid matches", func(t *testing.T) {
		store := newMemStore()
		s, _ := newResultService(store, config.PolicyWithhold)

		out, err := s.SubmitResult(context.Background(), input("ok", honest, result(70, 95)))
		require.NoError(t, err)
		assert.True(t, out.RatingApplied)
		assert.Equal(t, 1, store.player("b").Losses)
	})
}

func TestSubmitResultRetriesVersionConflicts(t *testing.T) {
	store := newMemStore()
	store.conflicts = 2
	s, _ := newResultService(store, config.PolicyAdvisory)

	_, err := s.SubmitResult(context.Background(), input("retry", result(60, 90), result(50, 90)))
	require.NoError(t, err)
	assert.Equal(t, 3, store.applies)
	assert.Equal(t, 1, store.player("a").GamesPlayed)
}

func TestSubmitResultGivesUpAfterRepeatedConflicts(t *testing.T) {
	store := newMemStore()
	store.conflicts = 100
	s, rec := newResultService(store, config.PolicyAdvisory)

	_, err := s.SubmitResult(context.Background(), input("stuck", result(60, 90), result(50, 90)))
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
	assert.Equal(t, 5, store.applies)
	assert.Empty(t, store.matches)
	assert.Empty(t, rec.recorded)
}

func TestConcurrentResultsForOnePlayerAllLand(t *testing.T) {
	store := newMemStore()
	s, _ := newResultService(store, config.PolicyAdvisory)
	s.backoff = func() retry.Backoff {
		return retry.WithMaxRetries(50, retry.NewConstant(time.Millisecond))
	}

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := input(fmt.Sprintf("c-%d", i), result(60, 90), result(50, 90))
			in.OpponentUID = fmt.Sprintf("opp-%d", i)
			_, err := s.SubmitResult(context.Background(), in)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	a := store.player("a")
	assert.Equal(t, n, a.GamesPlayed)
	assert.Equal(t, n, a.Wins)
	assert.Equal(t, int64(n), a.Version)
}

func TestSubmitResultStoreFailure(t *testing.T) {
	store := newMemStore()
	s, _ := newResultService(store, config.PolicyAdvisory)
	s.matches = failingMatches{}

	_, err := s.SubmitResult(context.Background(), input("x", result(60, 90), result(50, 90)))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidResult))
	assert.False(t, errors.Is(err, ErrDuplicateMatch))
}

type failingMatches struct{}

func (failingMatches) Exists(context.Context, string) (bool, error) {
	return false, errors.New("disk on fire")
}

func (failingMatches) ApplyResult(context.Context, *domain.MatchRecord, ...domain.PlayerUpdate) error {
	return errors.New("disk on fire")
}

func TestLeaderboardLimits(t *testing.T) {
	store := newMemStore()
	for i := 0; i < 600; i++ {
		store.put(domain.Player{UID: fmt.Sprintf("p%03d", i), Rating: float64(i * 5)})
	}
	s := NewPlayerService(store, store, zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		limit int
		want  int
	}{
		{0, 100},
		{-3, 100},
		{10, 10},
		{500, 500},
		{10_000, 500},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.limit), func(t *testing.T) {
			got, err := s.Leaderboard(ctx, tt.limit)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	top, err := s.Leaderboard(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "p599", top[0].UID)
	assert.Equal(t, rating.TierFor(2995), top[0].Tier)
}

func TestStatsAnnotatesHistoryPerPlayer(t *testing.T) {
	store := newMemStore()
	results, _ := newResultService(store, config.PolicyAdvisory)
	s := NewPlayerService(store, store, zerolog.Nop())
	ctx := context.Background()

	_, err := results.SubmitResult(ctx, input("first", result(60, 90), result(50, 90)))
	require.NoError(t, err)
	_, err = results.SubmitResult(ctx, input("second", result(70, 95), result(70, 95)))
	require.NoError(t, err)

	stats, err := s.Stats(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", stats.Profile.UID)
	assert.Equal(t, rating.TierFor(stats.Profile.Rating), stats.Profile.Tier)
	require.Len(t, stats.History, 2)

	latest := stats.History[0]
	assert.Equal(t, "second", latest.MatchID)
	assert.Equal(t, OutcomeDraw, latest.Outcome)

	first := stats.History[1]
	assert.Equal(t, "a", first.OpponentUID)
	assert.Equal(t, OutcomeLoss, first.Outcome)
	assert.Equal(t, 50.0, first.PlayerResult.WPM)
	assert.Equal(t, 60.0, first.OpponentResult.WPM)
	assert.InDelta(t, -16.0, first.RatingChange, 1e-9)
	assert.Equal(t, first.RatingAfter-first.RatingBefore, first.RatingChange)

	winner, err := s.Stats(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, OutcomeWin, winner.History[1].Outcome)
}

func TestStatsProvisionsUnknownPlayer(t *testing.T) {
	store := newMemStore()
	s := NewPlayerService(store, store, zerolog.Nop())

	stats, err := s.Stats(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, float64(rating.DefaultRating), stats.Profile.Rating)
	assert.Empty(t, stats.History)

	_, err = s.Stats(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingUID)
}

func TestDecayServiceApply(t *testing.T) {
	store := newMemStore()
	now := fixedNow
	old := now.Add(-15 * 24 * time.Hour).UnixMilli()
	store.put(domain.Player{UID: "idle", Rating: 1000, LastMatchAt: old})
	store.put(domain.Player{UID: "idle-low", Rating: 3, LastMatchAt: old})
	store.put(domain.Player{UID: "active", Rating: 1000, LastMatchAt: now.Add(-time.Hour).UnixMilli()})
	store.put(domain.Player{UID: "never", Rating: 1000})
	rec := &fakeRecorder{}
	s := NewDecayService(store, rec, zerolog.Nop())

	n, err := s.Apply(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, int64(3), rec.decayed)

	assert.Equal(t, 990.0, store.player("idle").Rating)
	assert.Equal(t, 0.0, store.player("idle-low").Rating)
	assert.Equal(t, 1000.0, store.player("active").Rating)
	assert.Equal(t, 990.0, store.player("never").Rating, "never-played players count as inactive")
}
