package service

import (
	"context"
	"fmt"

	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/internal/errs"
)

type providerStore interface {
	GetActive(ctx context.Context, channel domain.Channel) (*domain.ProviderConfig, error)
}

type signatureStore interface {
	GetActive(ctx context.Context, channel domain.Channel) (*domain.SignatureConfig, error)
}

// Registry resolves the active provider and signature for a channel.
type Registry struct {
	providers  providerStore
	signatures signatureStore
}

func NewRegistry(providers providerStore, signatures signatureStore) *Registry {
	return &Registry{
		providers:  providers,
		signatures: signatures,
	}
}

// ActiveProvider returns errs.ErrNoActiveProvider when the channel has none.
func (r *Registry) ActiveProvider(ctx context.Context, channel domain.Channel) (*domain.ProviderConfig, error) {
	provider, err := r.providers.GetActive(ctx, channel)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("%w for %s", errs.ErrNoActiveProvider, channel)
	}
	return provider, nil
}

// Signature returns the active signature text for the channel, or "".
func (r *Registry) Signature(ctx context.Context, channel domain.Channel) (string, error) {
	sig, err := r.signatures.GetActive(ctx, channel)
	if err != nil {
		return "", err
	}
	if sig == nil {
		return "", nil
	}
	return sig.Signature, nil
}

// Sign appends a signature after a blank line.
func Sign(message, signature string) string {
	if signature == "" {
		return message
	}
	return message + "\n\n" + signature
}
