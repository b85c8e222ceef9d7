package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"ranked-typing/internal/config"
	"ranked-typing/internal/constants"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

var ErrEmptyWordBank = errors.New("word bank has no words")

// WordBankClient downloads a language word bank, in the
// {"name": ..., "words": [...]} layout typing sites publish.
type WordBankClient struct {
	url    string
	client *fasthttp.Client
}

type WordBankResponse struct {
	Name  string   `json:"name"`
	Words []string `json:"words"`
}

func NewWordBankClient(cfg *config.Config) *WordBankClient {
	return &WordBankClient{
		url: cfg.WordBankURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     4,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// Configured reports whether a remote word bank was set.
func (c *WordBankClient) Configured() bool {
	return c.url != ""
}

// FetchWords returns the bank's words, trimmed, with blanks dropped.
func (c *WordBankClient) FetchWords(ctx context.Context) ([]string, error) {
	bank, err := doRequest[WordBankResponse](ctx, c.client, c.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch word bank %s: %w", c.url, err)
	}

	words := make([]string, 0, len(bank.Words))
	for _, w := range bank.Words {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil, ErrEmptyWordBank
	}
	return words, nil
}

func doRequest[T any](ctx context.Context, client *fasthttp.Client, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
