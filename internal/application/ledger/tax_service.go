package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/ledger"
	"github.com/openledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// TaxService manages tax definitions
type TaxService struct {
	taxes    ledger.TaxRepository
	accounts ledger.AccountRepository
}

// NewTaxService creates a new TaxService
func NewTaxService(taxes ledger.TaxRepository, accounts ledger.AccountRepository) *TaxService {
	return &TaxService{taxes: taxes, accounts: accounts}
}

// Create defines a tax collected on a CONTROL account
func (s *TaxService) Create(ctx context.Context, tenantID uuid.UUID, req CreateTaxRequest) (*TaxResponse, error) {
	account, err := s.accounts.FindByIDForTenant(ctx, tenantID, req.AccountID)
	if err != nil {
		return nil, missingEntity(err, "account", req.AccountID)
	}

	tax, err := ledger.NewTax(tenantID, req.Name, req.Code, req.Rate, account)
	if err != nil {
		return nil, err
	}
	if err := s.taxes.Save(ctx, tax); err != nil {
		return nil, fmt.Errorf("failed to save tax: %w", err)
	}

	logger.L(ctx).Info("Tax created",
		zap.String("tax_id", tax.ID.String()),
		zap.String("code", tax.Code),
		zap.String("rate", tax.Rate.String()),
	)
	resp := ToTaxResponse(tax)
	return &resp, nil
}

// List returns every tax of the tenant
func (s *TaxService) List(ctx context.Context, tenantID uuid.UUID) ([]TaxResponse, error) {
	taxes, err := s.taxes.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]TaxResponse, len(taxes))
	for i, t := range taxes {
		out[i] = ToTaxResponse(t)
	}
	return out, nil
}
