package service

import (
	"context"
	"strconv"

	"github.com/onurcolak/dispatch-service/internal/audit"
	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/pkg/logger"
)

type providerAdminStore interface {
	List(ctx context.Context) ([]domain.ProviderConfig, error)
	Create(ctx context.Context, p *domain.ProviderConfig) (*domain.ProviderConfig, error)
	SetStatus(ctx context.Context, id int64, status domain.Status) (*domain.ProviderConfig, error)
}

type signatureAdminStore interface {
	List(ctx context.Context) ([]domain.SignatureConfig, error)
	Upsert(ctx context.Context, channel domain.Channel, signature string, status domain.Status) (*domain.SignatureConfig, error)
}

// AdminService manages gateway providers and channel signatures.
type AdminService struct {
	providers  providerAdminStore
	signatures signatureAdminStore
	audit      auditRecorder
}

func NewAdminService(providers providerAdminStore, signatures signatureAdminStore, recorder auditRecorder) *AdminService {
	return &AdminService{
		providers:  providers,
		signatures: signatures,
		audit:      recorder,
	}
}

func (s *AdminService) ListProviders(ctx context.Context) ([]domain.ProviderConfig, error) {
	return s.providers.List(ctx)
}

func (s *AdminService) CreateProvider(ctx context.Context, p *domain.ProviderConfig) (*domain.ProviderConfig, error) {
	created, err := s.providers.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	logger.With(ctx).Infof("Created %s provider %d (%s %s)", created.APIType, created.ID, created.Method, created.BaseURL)
	s.record(ctx, audit.Entry{
		Table:  "msg_apis",
		RowID:  strconv.FormatInt(created.ID, 10),
		Action: "provider.created",
		Remark: string(created.APIType),
	})

	return created, nil
}

// SetProviderStatus activates or deactivates a provider. At most one provider
// per channel stays Active afterwards.
func (s *AdminService) SetProviderStatus(ctx context.Context, id int64, status domain.Status) (*domain.ProviderConfig, error) {
	updated, err := s.providers.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	logger.With(ctx).Infof("Provider %d (%s) is now %s", id, updated.APIType, status)
	s.record(ctx, audit.Entry{
		Table:  "msg_apis",
		RowID:  strconv.FormatInt(id, 10),
		Action: "provider.status",
		Remark: string(status),
	})

	return updated, nil
}

func (s *AdminService) ListSignatures(ctx context.Context) ([]domain.SignatureConfig, error) {
	return s.signatures.List(ctx)
}

func (s *AdminService) UpsertSignature(
	ctx context.Context,
	channel domain.Channel,
	signature string,
	status domain.Status,
) (*domain.SignatureConfig, error) {
	sig, err := s.signatures.Upsert(ctx, channel, signature, status)
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.Entry{
		Table:  "msg_signatures",
		RowID:  strconv.FormatInt(sig.ID, 10),
		Action: "signature.upserted",
		Remark: string(channel),
	})

	return sig, nil
}

func (s *AdminService) record(ctx context.Context, entry audit.Entry) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, entry)
}
