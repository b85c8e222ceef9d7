// Package wordlist turns an opaque match seed into the word sequence both
// players type. The same seed over the same bank always yields the same words.
package wordlist

import (
	"bufio"
	"context"
	_ "embed"
	"errors"
	"math/rand/v2"
	"ranked-typing/internal/config"
	"ranked-typing/internal/constants"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twmb/murmur3"
)

//go:embed words.txt
var defaultBank string

var ErrEmptyBank = errors.New("word bank is empty")

// BankSource is a remote word bank; api.WordBankClient implements it.
type BankSource interface {
	Configured() bool
	FetchWords(ctx context.Context) ([]string, error)
}

type Generator struct {
	words []string
	count int
}

func New(words []string, count int) (*Generator, error) {
	if len(words) == 0 {
		return nil, ErrEmptyBank
	}
	if count <= 0 {
		count = constants.DefaultWordCount
	}
	return &Generator{words: words, count: count}, nil
}

// Generate draws the generator's word count from the bank with a PCG source
// keyed by the seed's murmur3 hash.
func (g *Generator) Generate(seed string) []string {
	h1, h2 := murmur3.StringSum128(seed)
	r := rand.New(rand.NewPCG(h1, h2))

	out := make([]string, g.count)
	for i := range out {
		out[i] = g.words[r.IntN(len(g.words))]
	}
	return out
}

func (g *Generator) BankSize() int {
	return len(g.words)
}

// DefaultWords returns the embedded bank.
func DefaultWords() []string {
	var words []string
	sc := bufio.NewScanner(strings.NewReader(defaultBank))
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// NewFromConfig loads the remote bank when one is configured and falls back
// to the embedded bank if it cannot be fetched.
func NewFromConfig(cfg *config.Config, source BankSource, logger zerolog.Logger) (*Generator, error) {
	words := DefaultWords()

	if source.Configured() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.ExternalAPITimeout)
		defer cancel()

		remote, err := source.FetchWords(ctx)
		if err != nil {
			logger.Warn().Err(err).Str("url", cfg.WordBankURL).Msg("failed to fetch word bank, using embedded words")
		} else {
			words = remote
		}
	}

	g, err := New(words, cfg.WordCount)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("bank_size", g.BankSize()).Int("word_count", g.count).Msg("word list generator ready")
	return g, nil
}
