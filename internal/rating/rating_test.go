package rating

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func TestExpectedScoreIsSymmetric(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 10000; i++ {
		a := r.Float64() * 4000
		b := r.Float64() * 4000
		assert.InDelta(t, 1.0, ExpectedScore(a, b)+ExpectedScore(b, a), tolerance, "a=%v b=%v", a, b)
	}
	assert.InDelta(t, 0.5, ExpectedScore(1234, 1234), tolerance)
}

func TestEqualRatingsDecisiveWin(t *testing.T) {
	for _, k := range []float64{KFactorNew, KFactorEstablished} {
		c := Apply(1500, k, 1500, k, Outcome{ScoreA: Win, ScoreB: Loss})
		assert.InDelta(t, k/2, c.DeltaA, tolerance)
		assert.InDelta(t, -k/2, c.DeltaB, tolerance)
	}
}

func TestApplyMixedKFactors(t *testing.T) {
	c := Apply(1000, KFactorNew, 1050, KFactorEstablished, Outcome{ScoreA: Win, ScoreB: Loss})

	assert.InDelta(t, 0.4288, ExpectedScore(1000, 1050), 1e-4)
	assert.InDelta(t, 0.5712, ExpectedScore(1050, 1000), 1e-4)
	assert.InDelta(t, 18.28, c.DeltaA, 0.01)
	assert.InDelta(t, 1018.28, c.NewA, 0.01)
	assert.InDelta(t, -9.14, c.DeltaB, 0.01)
	assert.InDelta(t, 1040.86, c.NewB, 0.01)
}

func TestApplyDraw(t *testing.T) {
	c := Apply(1200, KFactorNew, 1000, KFactorNew, Outcome{ScoreA: Draw, ScoreB: Draw})

	assert.Less(t, c.DeltaA, 0.0, "higher rated side loses points on a draw")
	assert.Greater(t, c.DeltaB, 0.0)
	assert.InDelta(t, 0, c.DeltaA+c.DeltaB, tolerance, "equal k keeps the sum constant")
}

func TestNextKFactor(t *testing.T) {
	tests := []struct {
		name       string
		current    float64
		gamesAfter int
		want       float64
	}{
		{"first game", KFactorNew, 1, KFactorNew},
		{"one before threshold", KFactorNew, NewPlayerGamesThreshold - 1, KFactorNew},
		{"reaches threshold", KFactorNew, NewPlayerGamesThreshold, KFactorEstablished},
		{"past threshold", KFactorNew, 40, KFactorEstablished},
		{"established stays established", KFactorEstablished, 3, KFactorEstablished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextKFactor(tt.current, tt.gamesAfter))
		})
	}
}

func TestKFactorNeverReverts(t *testing.T) {
	k := float64(KFactorNew)
	established := false
	for games := 1; games <= 50; games++ {
		k = NextKFactor(k, games)
		if established {
			require.Equal(t, float64(KFactorEstablished), k, "reverted at game %d", games)
		}
		if k == KFactorEstablished {
			established = true
			require.GreaterOrEqual(t, games, NewPlayerGamesThreshold)
		}
	}
	assert.True(t, established)
}

func TestDecay(t *testing.T) {
	assert.Equal(t, 990.0, Decay(1000))
	assert.Equal(t, 0.0, Decay(10))
	assert.Equal(t, 0.0, Decay(4))
	assert.Equal(t, 0.0, Decay(0))
}

func TestDecayCutoff(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli(), DecayCutoff(now))
}

func TestTierForBoundaries(t *testing.T) {
	tests := []struct {
		rating float64
		want   string
	}{
		{-50, "Bronze V"},
		{0, "Bronze V"},
		{499, "Bronze V"},
		{499.5, "Bronze V"},
		{500, "Bronze IV"},
		{999.99, "Silver V"},
		{1000, "Silver IV"},
		{1018.28, "Silver IV"},
		{2899.999, "Diamond I"},
		{2900, "Master"},
		{1e9, "Master"},
		{math.Inf(1), "Master"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.rating), "rating %v", tt.rating)
	}
	assert.Equal(t, Unranked, TierFor(math.NaN()))
}

func TestTierPartitionIsTotal(t *testing.T) {
	require.Equal(t, 0.0, Tiers[0].Min, "partition must start at zero")
	for i := 1; i < len(Tiers); i++ {
		require.Less(t, Tiers[i-1].Min, Tiers[i].Min, "tiers must be strictly ordered")
	}

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 100000; i++ {
		v := r.Float64() * 5000
		name := TierFor(v)
		require.NotEqual(t, Unranked, name, "rating %v", v)

		matches := 0
		for j, tier := range Tiers {
			upper := math.Inf(1)
			if j+1 < len(Tiers) {
				upper = Tiers[j+1].Min
			}
			if v >= tier.Min && v < upper {
				matches++
				require.Equal(t, tier.Name, name)
			}
		}
		require.Equal(t, 1, matches, "rating %v must fall in exactly one tier", v)
	}
}
