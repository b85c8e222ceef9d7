package anticheat

import (
	"testing"

	"ranked-typing/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		wpm      float64
		accuracy float64
		want     Verdict
	}{
		{"ordinary run", 85, 96.4, Verdict{Valid: true}},
		{"speed ceiling is inclusive", 300, 97, Verdict{Valid: true}},
		{"just over speed ceiling", 301, 97, Verdict{Reason: ReasonInhumanWPM}},
		{"perfect accuracy at ceiling", 150, 100, Verdict{Valid: true}},
		{"perfect accuracy just over ceiling", 151, 100, Verdict{Reason: ReasonPerfectAccuracy}},
		{"near perfect accuracy is never the second check", 299, 99.9, Verdict{Valid: true}},
		{"perfect accuracy over speed ceiling reports speed", 320, 100, Verdict{Reason: ReasonInhumanWPM}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(domain.PlayerResult{WPM: tt.wpm, Accuracy: tt.accuracy})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchValid(t *testing.T) {
	ok := Verdict{Valid: true}
	bad := Verdict{Reason: ReasonInhumanWPM}

	assert.True(t, MatchValid(ok, ok))
	assert.False(t, MatchValid(ok, bad))
	assert.False(t, MatchValid(bad, ok))
	assert.False(t, MatchValid(bad, bad))
}
