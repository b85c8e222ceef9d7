package service

import (
	"ranked-typing/internal/domain"
	"ranked-typing/internal/rating"
)

// DecideOutcome ranks two results: higher wpm wins, then higher accuracy,
// anything else is a draw.
func DecideOutcome(a, b domain.PlayerResult) rating.Outcome {
	switch {
	case a.WPM > b.WPM:
		return rating.Outcome{ScoreA: rating.Win, ScoreB: rating.Loss}
	case a.WPM < b.WPM:
		return rating.Outcome{ScoreA: rating.Loss, ScoreB: rating.Win}
	case a.Accuracy > b.Accuracy:
		return rating.Outcome{ScoreA: rating.Win, ScoreB: rating.Loss}
	case a.Accuracy < b.Accuracy:
		return rating.Outcome{ScoreA: rating.Loss, ScoreB: rating.Win}
	default:
		return rating.Outcome{ScoreA: rating.Draw, ScoreB: rating.Draw}
	}
}
