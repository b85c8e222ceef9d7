// Package rating holds the ELO arithmetic, the K-factor policy, rank tiers
// and inactivity decay. Nothing here performs I/O.
package rating

import (
	"math"
	"time"
)

const (
	DefaultRating = 1000

	KFactorNew              = 32
	KFactorEstablished      = 16
	NewPlayerGamesThreshold = 10

	DecayAmount     = 10
	DecayInactivity = 2 * 7 * 24 * time.Hour
)

// Score is the actual result of one side of a match.
type Score float64

const (
	Loss Score = 0
	Draw Score = 0.5
	Win  Score = 1
)

// ExpectedScore is the probability that a player rated a beats one rated b.
func ExpectedScore(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}

func NewRating(old, k float64, actual Score, expected float64) float64 {
	return old + Delta(k, actual, expected)
}

func Delta(k float64, actual Score, expected float64) float64 {
	return k * (float64(actual) - expected)
}

// NextKFactor returns the K-factor a player carries after a match that brought
// their games played to gamesAfter. Once established it never goes back.
func NextKFactor(current float64, gamesAfter int) float64 {
	if current == KFactorEstablished || gamesAfter >= NewPlayerGamesThreshold {
		return KFactorEstablished
	}
	return current
}

// Decay returns the rating after one inactivity decay step, floored at zero.
func Decay(r float64) float64 {
	return math.Max(r-DecayAmount, 0)
}

// DecayCutoff is the last-match timestamp (epoch millis) before which a player
// counts as inactive at now.
func DecayCutoff(now time.Time) int64 {
	return now.Add(-DecayInactivity).UnixMilli()
}

// Outcome of a two-player match from the first player's point of view.
type Outcome struct {
	ScoreA Score
	ScoreB Score
}

func (o Outcome) IsDraw() bool {
	return o.ScoreA == Draw
}

// Change is the rating movement of both players for one match.
type Change struct {
	NewA   float64
	NewB   float64
	DeltaA float64
	DeltaB float64
}

// Apply computes both players' new ratings, each with its own K-factor.
func Apply(ratingA, kA, ratingB, kB float64, o Outcome) Change {
	expA := ExpectedScore(ratingA, ratingB)
	expB := ExpectedScore(ratingB, ratingA)

	c := Change{
		NewA: NewRating(ratingA, kA, o.ScoreA, expA),
		NewB: NewRating(ratingB, kB, o.ScoreB, expB),
	}
	c.DeltaA = c.NewA - ratingA
	c.DeltaB = c.NewB - ratingB
	return c
}
