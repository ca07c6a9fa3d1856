package service

import (
	"context"
	"errors"
	"testing"

	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/internal/errs"
)

type stubProviderStore struct {
	active map[domain.Channel]*domain.ProviderConfig
}

func (s *stubProviderStore) GetActive(ctx context.Context, channel domain.Channel) (*domain.ProviderConfig, error) {
	return s.active[channel], nil
}

type stubSignatureStore struct {
	active map[domain.Channel]*domain.SignatureConfig
}

func (s *stubSignatureStore) GetActive(ctx context.Context, channel domain.Channel) (*domain.SignatureConfig, error) {
	return s.active[channel], nil
}

func TestRegistry_ActiveProvider(t *testing.T) {
	registry := NewRegistry(
		&stubProviderStore{active: map[domain.Channel]*domain.ProviderConfig{domain.ChannelSMS: smsProvider()}},
		&stubSignatureStore{},
	)

	provider, err := registry.ActiveProvider(context.Background(), domain.ChannelSMS)
	if err != nil {
		t.Fatalf("ActiveProvider returned error: %v", err)
	}
	if provider.ID != 1 {
		t.Fatalf("expected provider 1, got %d", provider.ID)
	}

	if _, err := registry.ActiveProvider(context.Background(), domain.ChannelWhatsApp); !errors.Is(err, errs.ErrNoActiveProvider) {
		t.Fatalf("expected ErrNoActiveProvider, got %v", err)
	}
}

func TestRegistry_SignatureAndSign(t *testing.T) {
	registry := NewRegistry(
		&stubProviderStore{},
		&stubSignatureStore{active: map[domain.Channel]*domain.SignatureConfig{
			domain.ChannelSMS: {ID: 1, SignatureType: domain.ChannelSMS, Signature: "- Team", Status: domain.StatusActive},
		}},
	)

	sig, err := registry.Signature(context.Background(), domain.ChannelSMS)
	if err != nil || sig != "- Team" {
		t.Fatalf("expected signature %q, got %q (err %v)", "- Team", sig, err)
	}

	none, err := registry.Signature(context.Background(), domain.ChannelEmail)
	if err != nil || none != "" {
		t.Fatalf("expected empty signature, got %q (err %v)", none, err)
	}

	if got := Sign("hello", sig); got != "hello\n\n- Team" {
		t.Fatalf("unexpected signed message %q", got)
	}
	if got := Sign("hello", ""); got != "hello" {
		t.Fatalf("expected unsigned message, got %q", got)
	}
}
