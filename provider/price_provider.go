package provider

import (
	"context"
	"fmt"

	"github.com/Web3vDev/SolanaRacer/config"
	"github.com/Web3vDev/SolanaRacer/httpclient"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PriceProvider implements pricefeed.PriceSource against a
// CoinGecko-compatible market data API
type PriceProvider struct {
	client *httpclient.Client
	logger zerolog.Logger
}

// NewPriceProvider creates a new market price provider
func NewPriceProvider(cfg *config.Config, logger zerolog.Logger) *PriceProvider {
	svc := cfg.ExternalServices.PriceService
	client := httpclient.New(httpclient.Config{
		BaseURL: svc.BaseURL,
		Timeout: svc.Timeout,
		Logger:  logger,
	})
	if svc.APIKey != "" {
		client.SetHeader("x-cg-api-key", svc.APIKey)
	}

	return &PriceProvider{
		client: client,
		logger: logger.With().Str("component", "price_provider").Logger(),
	}
}

// FetchPrice fetches the current SOL/USD spot price
func (p *PriceProvider) FetchPrice(ctx context.Context) (decimal.Decimal, error) {
	path := "/simple/price" + httpclient.EncodeQuery(map[string]string{
		"ids":           "solana",
		"vs_currencies": "usd",
	})

	var payload map[string]map[string]decimal.Decimal
	if err := p.client.GetJSON(ctx, path, nil, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch SOL price: %w", err)
	}

	price, ok := payload["solana"]["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("price response missing solana/usd quote")
	}
	return price, nil
}
