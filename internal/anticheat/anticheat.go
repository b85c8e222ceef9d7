package anticheat

import "ranked-typing/internal/domain"

const (
	// InhumanWPM is the highest speed accepted from anyone.
	InhumanWPM = 300
	// PerfectAccuracyWPM is the highest speed accepted with a flawless run.
	PerfectAccuracyWPM = 150
)

type Reason string

const (
	ReasonNone            Reason = ""
	ReasonInhumanWPM      Reason = "inhuman_wpm"
	ReasonPerfectAccuracy Reason = "perfect_accuracy_at_speed"
)

type Verdict struct {
	Valid  bool
	Reason Reason
}

func Validate(r domain.PlayerResult) Verdict {
	if r.WPM > InhumanWPM {
		return Verdict{Reason: ReasonInhumanWPM}
	}
	if r.Accuracy == 100 && r.WPM > PerfectAccuracyWPM {
		return Verdict{Reason: ReasonPerfectAccuracy}
	}
	return Verdict{Valid: true}
}

// MatchValid is true only when both sides pass.
func MatchValid(a, b Verdict) bool {
	return a.Valid && b.Valid
}
