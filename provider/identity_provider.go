package provider

import (
	"context"
	"fmt"

	"github.com/Web3vDev/SolanaRacer/config"
	apperrors "github.com/Web3vDev/SolanaRacer/errors"
	"github.com/Web3vDev/SolanaRacer/httpclient"
	"github.com/Web3vDev/SolanaRacer/pkg/providers"
	"github.com/rs/zerolog"
)

// IdentityProvider resolves the player identity from the host platform
// over HTTP
type IdentityProvider struct {
	client *httpclient.Client
	logger zerolog.Logger
}

// NewIdentityProvider creates a new identity provider
func NewIdentityProvider(cfg *config.Config, logger zerolog.Logger) *IdentityProvider {
	svc := cfg.ExternalServices.IdentityService
	client := httpclient.New(httpclient.Config{
		BaseURL: svc.BaseURL,
		Timeout: svc.Timeout,
		Logger:  logger,
	})
	if svc.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+svc.APIKey)
	}

	return &IdentityProvider{
		client: client,
		logger: logger.With().Str("component", "identity_provider").Logger(),
	}
}

// GetContext fetches the platform identity for the current session
func (p *IdentityProvider) GetContext(ctx context.Context) (*providers.IdentityContext, error) {
	var identity providers.IdentityContext
	if err := p.client.GetJSON(ctx, "/context", nil, &identity); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrIdentityError, "failed to resolve identity")
	}
	if identity.FID == 0 {
		return nil, apperrors.New(apperrors.ErrIdentityError, "identity service returned no fid")
	}
	return &identity, nil
}

// Ready reports whether the identity service is reachable
func (p *IdentityProvider) Ready(ctx context.Context) error {
	resp, err := p.client.Get(ctx, "/health", nil)
	if err != nil {
		return fmt.Errorf("identity service unreachable: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("identity service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
