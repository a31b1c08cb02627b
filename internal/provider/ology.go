package provider

import (
	"context"
	"sync/atomic"

	"ology/internal/model"
	"ology/internal/provider/ologyapi"
)

// OlogyProvider is a DataProvider implementation backed by the ology analytics API.
// It embeds *ologyapi.Client to expose token-aware calls to the crawl workers.
type OlogyProvider struct {
	*ologyapi.Client
	tokens []string
	next   atomic.Uint64
}

// NewOlogyProvider creates a new API-backed DataProvider. Calls made without an
// explicit token rotate over tokens; an empty list sends no Authorization header.
func NewOlogyProvider(baseURL string, tokens []string, rps float64) (*OlogyProvider, error) {
	client, err := ologyapi.NewClient(baseURL, rps)
	if err != nil {
		return nil, err
	}
	return &OlogyProvider{
		Client: client,
		tokens: tokens,
	}, nil
}

// GetName returns provider name
func (p *OlogyProvider) GetName() string {
	return "ology"
}

// Tokens returns the configured API tokens.
func (p *OlogyProvider) Tokens() []string {
	return p.tokens
}

func (p *OlogyProvider) token() string {
	if len(p.tokens) == 0 {
		return ""
	}
	i := p.next.Add(1) - 1
	return p.tokens[i%uint64(len(p.tokens))]
}

// FetchHistory fetches a domain history with the next token in round-robin order.
func (p *OlogyProvider) FetchHistory(ctx context.Context, q ologyapi.HistoryQuery) (model.Series, error) {
	return p.FetchHistoryWithToken(ctx, q, p.token())
}

// FetchTopDomains fetches a top-domains page with the next token in round-robin order.
func (p *OlogyProvider) FetchTopDomains(ctx context.Context, q ologyapi.TopDomainsQuery) ([]model.TopDomain, error) {
	return p.FetchTopDomainsWithToken(ctx, q, p.token())
}

// SetLogFunc sets fan-in logger. When set, the client sends logs here instead of slog.
func (p *OlogyProvider) SetLogFunc(fn ologyapi.LogFunc) {
	if p.Client != nil {
		p.Client.LogFunc = fn
	}
}
